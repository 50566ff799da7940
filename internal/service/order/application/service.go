// internal/service/order/application/service.go
package application

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

// OrderService 只关注业务流程编排：
// 结账令牌签发、支付回调对账、区域与运费查询、订单读取。
type OrderService struct {
	orders    domain.OrderRepository
	products  domain.ProductRepository
	shipping  port.ShippingGateway
	payment   port.PaymentGateway
	locker    port.OrderLocker
	publisher port.StatusEventPublisher
	assembler *TransactionAssembler
	tracer    trace.Tracer
}

func NewOrderService(orders domain.OrderRepository, products domain.ProductRepository, shipping port.ShippingGateway, payment port.PaymentGateway, locker port.OrderLocker, publisher port.StatusEventPublisher, tracer trace.Tracer) *OrderService {
	return &OrderService{
		orders: orders, products: products,
		shipping: shipping, payment: payment,
		locker: locker, publisher: publisher,
		assembler: NewTransactionAssembler(shipping, tracer),
		tracer:    tracer,
	}
}

// CreateTransactionToken 是结账用例的入口：
// 装配交易请求 → 落库待支付订单 → 向支付网关换取会话令牌。
// 订单先于网关调用落库，保证回调到达时一定能按订单号找到记录。
func (s *OrderService) CreateTransactionToken(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreateTransactionToken")
	defer span.End()

	catalog, err := s.products.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load product catalog")
		return nil, err
	}

	txReq, err := s.assembler.Assemble(ctx, req.cartItems(), req.Customer.toDomain(), catalog)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Transaction assembly failed")
		return nil, err
	}

	orderEntity, err := domain.NewOrder(txReq)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.orders.Create(ctx, orderEntity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save pending order")
		return nil, err
	}
	span.AddEvent("Pending order saved before gateway call.")

	token, err := s.payment.CreateTransactionToken(ctx, txReq)
	if err != nil {
		// 待支付订单保留在库中，作为这次失败尝试的记录
		span.RecordError(err)
		span.SetStatus(codes.Error, "Payment gateway rejected the transaction")
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("order_id", txReq.OrderID).
		Int64("gross_amount", txReq.GrossAmount).
		Msg("transaction token issued")

	return &TokenResponse{TransactionToken: token}, nil
}

// HandleNotification 是支付回调对账的入口。
// 验证永远是第一步：原始报文在换取 PaymentNotification 之前不被信任。
func (s *OrderService) HandleNotification(ctx context.Context, payload domain.UnverifiedPayload) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.HandleNotification")
	defer span.End()

	notification, err := s.payment.VerifyNotification(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Notification verification failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", notification.OrderID),
		attribute.String("payment.transaction_status", notification.TransactionStatus),
		attribute.String("payment.fraud_status", notification.FraudStatus),
	)

	// 同一订单的回调串行处理，防止读-改-写互相覆盖
	unlock, err := s.locker.Lock(ctx, notification.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("order_id", notification.OrderID).Msg("failed to release order lock")
		}
	}()

	orderEntity, err := s.orders.FindByOrderID(ctx, notification.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	previous := orderEntity.TransactionStatus
	orderEntity.Reconcile(notification)

	if orderEntity.TransactionStatus != previous {
		if err := s.orders.UpdateStatus(ctx, orderEntity.OrderID, previous, orderEntity.TransactionStatus); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to persist reconciled status")
			return nil, err
		}
	}

	event := &domain.OrderStatusChanged{
		TraceID:        span.SpanContext().TraceID().String(),
		OrderID:        orderEntity.OrderID,
		PreviousStatus: previous,
		Status:         orderEntity.TransactionStatus,
		FraudStatus:    notification.FraudStatus,
		OccurredAt:     time.Now(),
	}
	// 推送是尽力而为：事件发不出去不影响回调确认，否则网关会无谓重试
	if err := s.publisher.PublishStatusChanged(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", orderEntity.OrderID).Msg("failed to publish status event")
		span.RecordError(err)
	}

	logger.Ctx(ctx).Info().
		Str("order_id", orderEntity.OrderID).
		Str("previous_status", string(previous)).
		Str("status", string(orderEntity.TransactionStatus)).
		Msg("payment notification reconciled")

	return toOrderView(orderEntity), nil
}

// Provinces 透传物流服务商的省份列表
func (s *OrderService) Provinces(ctx context.Context, filters url.Values) (json.RawMessage, error) {
	ctx, span := s.tracer.Start(ctx, "app.Provinces")
	defer span.End()
	return s.shipping.Provinces(ctx, filters)
}

// Cities 透传物流服务商的城市列表
func (s *OrderService) Cities(ctx context.Context, filters url.Values) (json.RawMessage, error) {
	ctx, span := s.tracer.Start(ctx, "app.Cities")
	defer span.End()
	return s.shipping.Cities(ctx, filters)
}

// ShippingCost 查询到目的城市的运费报价。
// 城市ID为空直接拒绝，不发起任何上游调用。
func (s *OrderService) ShippingCost(ctx context.Context, destinationCityID string) ([]domain.ShippingRate, error) {
	ctx, span := s.tracer.Start(ctx, "app.ShippingCost")
	defer span.End()

	if destinationCityID == "" {
		span.SetStatus(codes.Error, "missing destination city id")
		return nil, domain.ErrCityRequired
	}
	span.SetAttributes(attribute.String("shipping.destination_city", destinationCityID))
	return s.shipping.QuoteRates(ctx, destinationCityID)
}

// GetOrder 返回订单的对外视图
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()

	orderEntity, err := s.orders.FindByOrderID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toOrderView(orderEntity), nil
}
