// internal/service/push/consumer.go
package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/order/domain"
)

// StatusConsumer 消费订单状态变更事件，并把原始事件体推给
// 订阅了对应订单的 WebSocket 连接。
type StatusConsumer struct {
	reader *kafka.Reader
	hub    *Hub
	tracer trace.Tracer
}

func NewStatusConsumer(reader *kafka.Reader, hub *Hub, tracer trace.Tracer) *StatusConsumer {
	return &StatusConsumer{reader: reader, hub: hub, tracer: tracer}
}

// Run 阻塞消费，直到 ctx 取消。
// 单条消息解析失败只记日志跳过，不能因为一条坏消息卡死整个推送通道。
func (c *StatusConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Ctx(ctx).Error().Err(err).Msg("failed to read status event, retrying")
			time.Sleep(5 * time.Second)
			continue
		}
		c.dispatch(ctx, msg)
	}
}

func (c *StatusConsumer) dispatch(ctx context.Context, msg kafka.Message) {
	var event domain.OrderStatusChanged
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("topic", msg.Topic).Msg("dropping malformed status event")
		return
	}

	// 重建追踪上下文，推送动作挂在回调处理的同一条链路上
	parentCtx := mq.ExtractContext(ctx, msg)
	spanCtx, span := c.tracer.Start(parentCtx, "push-gateway.DispatchStatusEvent",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.String("order.id", event.OrderID),
			attribute.String("order.status", string(event.Status)),
		),
	)
	defer span.End()

	c.hub.Push(event.OrderID, msg.Value)

	logger.Ctx(spanCtx).Info().
		Str("order_id", event.OrderID).
		Str("status", string(event.Status)).
		Msg("status event dispatched to subscribers")
}
