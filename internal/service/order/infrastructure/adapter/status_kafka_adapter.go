// internal/service/order/infrastructure/adapter/status_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/mq"
	"storefront/internal/service/order/domain"
)

// StatusKafkaAdapter 实现了 port.StatusEventPublisher 接口。
type StatusKafkaAdapter struct {
	writer *kafka.Writer
}

// NewStatusKafkaAdapter 创建一个新的状态事件生产者适配器。
func NewStatusKafkaAdapter(writer *kafka.Writer) *StatusKafkaAdapter {
	return &StatusKafkaAdapter{writer: writer}
}

// PublishStatusChanged 把状态变更事件写入 Kafka。
// 以订单号为 Key，保证同一订单的事件落在同一分区、保持顺序。
func (a *StatusKafkaAdapter) PublishStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(event.OrderID), eventBytes)
}
