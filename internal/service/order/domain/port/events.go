// internal/service/order/domain/port/events.go
package port

import (
	"context"

	"storefront/internal/service/order/domain"
)

// StatusEventPublisher 发布订单状态变更事件，供推送网关等下游消费
type StatusEventPublisher interface {
	PublishStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error
}
