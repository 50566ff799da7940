// internal/service/order/domain/order.go
package domain

import (
	"errors"
	"time"
)

// Order 是支付流程落库的订单聚合根。
// 由结账流程隐式创建，此后只有回调对账会推进其状态。
type Order struct {
	ID                uint
	OrderID           string
	GrossAmount       int64
	CustomerEmail     string
	TransactionStatus TransactionStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// 工厂函数: NewOrder 从装配好的交易请求派生一个待支付订单
func NewOrder(req *TransactionRequest) (*Order, error) {
	if req.OrderID == "" || len(req.Items) == 0 {
		return nil, errors.New("cannot create order with empty required fields")
	}

	return &Order{
		OrderID:           req.OrderID,
		GrossAmount:       req.GrossAmount,
		CustomerEmail:     req.Customer.Email,
		TransactionStatus: StatusPending, // 初始状态
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}, nil
}

// Reconcile 根据已验证的支付回调推进订单状态。
// 只接受 PaymentNotification 类型，未验证的原始报文进不来。
func (o *Order) Reconcile(n *PaymentNotification) {
	o.TransactionStatus = ResolveStatus(n.TransactionStatus, n.FraudStatus)
	o.UpdatedAt = time.Now()
}
