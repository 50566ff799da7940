// internal/service/order/domain/errors.go
package domain

import "errors"

var (
	// ErrCityRequired 缺少目的地城市ID，未发起任何上游调用
	ErrCityRequired = errors.New("destination city id is required")

	// ErrProductNotFound 购物车引用了目录中不存在的商品，整个交易装配中止
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrShippingOptionNotFound 报价结果中没有客户选择的运输服务
	ErrShippingOptionNotFound = errors.New("no shipping rate matches the requested service")

	// ErrOrderNotFound 按订单号找不到订单
	ErrOrderNotFound = errors.New("order not found")

	// ErrDuplicateOrderID 订单号撞上了已有记录的唯一索引
	ErrDuplicateOrderID = errors.New("order id already exists")

	// ErrStatusConflict 条件更新失败，说明有并发回调抢先改了状态
	ErrStatusConflict = errors.New("order status changed concurrently")

	// ErrUpstream 物流服务商调用失败或返回了无法解析的内容
	ErrUpstream = errors.New("shipping provider request failed")

	// ErrGateway 支付网关拒绝了请求
	ErrGateway = errors.New("payment gateway request failed")

	// ErrVerification 支付回调验证失败，其内容不可信
	ErrVerification = errors.New("payment notification could not be verified")
)
