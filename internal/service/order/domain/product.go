// internal/service/order/domain/product.go
package domain

// Product 是商品目录中的只读条目，价格以印尼盾整数计
type Product struct {
	ID    int64
	Name  string
	Price int64
}

// CartItem 是调用方提交的购物车条目
type CartItem struct {
	ProductID int64
	Size      string
	Quantity  int64
}

// Customer 是结账时的客户与收货信息。
// CityID 是物流服务商的区域编码，Service 是选定的运输服务代码。
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	CityID    string
	Service   string
}

// LineItem 是交易请求中的一行计价条目，商品和运费共用同一结构
type LineItem struct {
	ID       string
	Quantity int64
	Name     string
	Price    int64
}

// ShippingAddress 是按物流服务商数据规范化后的收货地址
type ShippingAddress struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	City        string
	PostalCode  string
	CountryCode string
}

// TransactionRequest 是提交给支付网关的完整交易请求。
// 只在一次结账尝试中存在，本身不落库，落库的是由它派生的 Order。
type TransactionRequest struct {
	OrderID         string
	GrossAmount     int64
	Items           []LineItem
	Customer        Customer
	ShippingAddress ShippingAddress
}

// SumGross 计算所有条目的应付总额：Σ quantity * price
func SumGross(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Quantity * item.Price
	}
	return total
}

// City 是物流服务商返回的城市条目
type City struct {
	CityID     string
	ProvinceID string
	Province   string
	CityName   string
	PostalCode string
}

// ShippingRate 是物流服务商某一运输服务的报价
type ShippingRate struct {
	Service     string
	Description string
	Cost        int64
	ETD         string
}
