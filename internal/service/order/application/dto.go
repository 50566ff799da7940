// internal/service/order/application/dto.go
package application

import (
	"time"

	"storefront/internal/service/order/domain"
)

// TokenRequest 是 POST /order/token 的请求体
type TokenRequest struct {
	Products []CartItemDTO `json:"products"`
	Customer CustomerDTO   `json:"customer"`
}

// CartItemDTO 是请求体中的单个购物车条目
type CartItemDTO struct {
	ID       int64  `json:"id"`
	Size     string `json:"size"`
	Quantity int64  `json:"quantity"`
}

// CustomerDTO 沿用支付网关的字段命名风格
type CustomerDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`    // 物流服务商的城市编码
	Service   string `json:"service"` // 选定的运输服务代码
}

// TokenResponse 返回支付网关签发的交易令牌
type TokenResponse struct {
	TransactionToken string `json:"transaction_token"`
}

// OrderView 是对外暴露的订单视图，只包含可公开字段
type OrderView struct {
	OrderID           string                   `json:"order_id"`
	GrossAmount       int64                    `json:"gross_amount"`
	TransactionStatus domain.TransactionStatus `json:"transaction_status"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

func (r *TokenRequest) cartItems() []domain.CartItem {
	items := make([]domain.CartItem, 0, len(r.Products))
	for _, p := range r.Products {
		items = append(items, domain.CartItem{
			ProductID: p.ID,
			Size:      p.Size,
			Quantity:  p.Quantity,
		})
	}
	return items
}

func (d CustomerDTO) toDomain() domain.Customer {
	return domain.Customer{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		CityID:    d.City,
		Service:   d.Service,
	}
}

func toOrderView(o *domain.Order) *OrderView {
	return &OrderView{
		OrderID:           o.OrderID,
		GrossAmount:       o.GrossAmount,
		TransactionStatus: o.TransactionStatus,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}
