// internal/service/order/domain/events.go
package domain

import "time"

// OrderStatusChanged 是对账完成后发布的领域事件，
// 推送网关靠它把状态变化实时推给前端。
type OrderStatusChanged struct {
	TraceID        string            `json:"traceId,omitempty"`
	OrderID        string            `json:"orderId"`
	PreviousStatus TransactionStatus `json:"previousStatus"`
	Status         TransactionStatus `json:"status"`
	FraudStatus    string            `json:"fraudStatus,omitempty"`
	OccurredAt     time.Time         `json:"occurredAt"`
}
