package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

// 内存仓储，记录调用轨迹供断言

type fakeOrderRepository struct {
	orders    map[string]*domain.Order
	created   []string
	updates   []statusUpdate
	updateErr error
}

type statusUpdate struct {
	orderID  string
	from, to domain.TransactionStatus
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if _, ok := r.orders[order.OrderID]; ok {
		return domain.ErrDuplicateOrderID
	}
	copied := *order
	r.orders[order.OrderID] = &copied
	r.created = append(r.created, order.OrderID)
	return nil
}

func (r *fakeOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.TransactionStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	order, ok := r.orders[orderID]
	if !ok || order.TransactionStatus != from {
		return domain.ErrStatusConflict
	}
	order.TransactionStatus = to
	r.updates = append(r.updates, statusUpdate{orderID: orderID, from: from, to: to})
	return nil
}

type fakeProductRepository struct {
	products []domain.Product
}

func (r *fakeProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.products, nil
}

type fakePaymentGateway struct {
	token        string
	tokenErr     error
	tokenCalls   int
	notification *domain.PaymentNotification
	verifyErr    error
	lastRequest  *domain.TransactionRequest
}

func (g *fakePaymentGateway) CreateTransactionToken(ctx context.Context, req *domain.TransactionRequest) (string, error) {
	g.tokenCalls++
	g.lastRequest = req
	if g.tokenErr != nil {
		return "", g.tokenErr
	}
	return g.token, nil
}

func (g *fakePaymentGateway) VerifyNotification(ctx context.Context, payload domain.UnverifiedPayload) (*domain.PaymentNotification, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.notification, nil
}

type fakeLocker struct {
	locked   []string
	unlocked int
}

func (l *fakeLocker) Lock(ctx context.Context, orderID string) (port.UnlockFunc, error) {
	l.locked = append(l.locked, orderID)
	return func() error {
		l.unlocked++
		return nil
	}, nil
}

type fakePublisher struct {
	events []*domain.OrderStatusChanged
	err    error
}

func (p *fakePublisher) PublishStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type serviceFixture struct {
	service   *OrderService
	orders    *fakeOrderRepository
	payment   *fakePaymentGateway
	shipping  *fakeShippingGateway
	locker    *fakeLocker
	publisher *fakePublisher
}

func newServiceFixture() *serviceFixture {
	orders := newFakeOrderRepository()
	payment := &fakePaymentGateway{token: "snap-token-abc"}
	shipping := &fakeShippingGateway{
		rates: []domain.ShippingRate{{Service: "REG", Cost: 20, ETD: "1-2"}},
		city:  &domain.City{CityID: "114", CityName: "Denpasar", PostalCode: "80227"},
	}
	locker := &fakeLocker{}
	publisher := &fakePublisher{}

	service := NewOrderService(
		orders,
		&fakeProductRepository{products: testCatalog},
		shipping,
		payment,
		locker,
		publisher,
		otel.Tracer("test"),
	)
	return &serviceFixture{
		service: service, orders: orders, payment: payment,
		shipping: shipping, locker: locker, publisher: publisher,
	}
}

func tokenRequest() *TokenRequest {
	return &TokenRequest{
		Products: []CartItemDTO{{ID: 1, Size: "M", Quantity: 2}},
		Customer: CustomerDTO{
			FirstName: "Jane", LastName: "Doe",
			Email: "jane@example.com", Phone: "0812345678",
			Address: "Jl. Sudirman 1", City: "114", Service: "REG",
		},
	}
}

func TestCreateTransactionToken(t *testing.T) {
	f := newServiceFixture()

	resp, err := f.service.CreateTransactionToken(context.Background(), tokenRequest())
	require.NoError(t, err)
	assert.Equal(t, "snap-token-abc", resp.TransactionToken)

	// 订单在网关调用前落库，状态为待支付
	require.Len(t, f.orders.created, 1)
	order, err := f.orders.FindByOrderID(context.Background(), f.payment.lastRequest.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.TransactionStatus)
	assert.Equal(t, int64(220), order.GrossAmount)
	assert.Equal(t, "jane@example.com", order.CustomerEmail)
}

func TestCreateTransactionToken_GatewayFailureKeepsPendingOrder(t *testing.T) {
	f := newServiceFixture()
	f.payment.tokenErr = domain.ErrGateway

	_, err := f.service.CreateTransactionToken(context.Background(), tokenRequest())
	assert.ErrorIs(t, err, domain.ErrGateway)

	// 失败的尝试留下待支付订单作为记录
	require.Len(t, f.orders.created, 1)
}

func TestCreateTransactionToken_UnknownProduct(t *testing.T) {
	f := newServiceFixture()
	req := tokenRequest()
	req.Products[0].ID = 99

	_, err := f.service.CreateTransactionToken(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Empty(t, f.orders.created)
	assert.Zero(t, f.payment.tokenCalls)
}

func TestHandleNotification(t *testing.T) {
	f := newServiceFixture()
	f.orders.orders["order-1"] = &domain.Order{
		OrderID: "order-1", GrossAmount: 220, TransactionStatus: domain.StatusPending,
	}
	f.payment.notification = &domain.PaymentNotification{
		OrderID:           "order-1",
		TransactionStatus: "settlement",
		StatusCode:        "200",
	}

	view, err := f.service.HandleNotification(context.Background(), domain.UnverifiedPayload(`{}`))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, view.TransactionStatus)

	require.Len(t, f.orders.updates, 1)
	assert.Equal(t, statusUpdate{orderID: "order-1", from: domain.StatusPending, to: domain.StatusSuccess}, f.orders.updates[0])

	assert.Equal(t, []string{"order-1"}, f.locker.locked)
	assert.Equal(t, 1, f.locker.unlocked)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.StatusPending, f.publisher.events[0].PreviousStatus)
	assert.Equal(t, domain.StatusSuccess, f.publisher.events[0].Status)
}

func TestHandleNotification_VerificationFailure(t *testing.T) {
	f := newServiceFixture()
	f.payment.verifyErr = domain.ErrVerification

	_, err := f.service.HandleNotification(context.Background(), domain.UnverifiedPayload(`{}`))
	assert.ErrorIs(t, err, domain.ErrVerification)

	// 验证失败的报文不触碰任何状态
	assert.Empty(t, f.locker.locked)
	assert.Empty(t, f.orders.updates)
	assert.Empty(t, f.publisher.events)
}

func TestHandleNotification_UnknownOrder(t *testing.T) {
	f := newServiceFixture()
	f.payment.notification = &domain.PaymentNotification{
		OrderID: "ghost", TransactionStatus: "settlement",
	}

	_, err := f.service.HandleNotification(context.Background(), domain.UnverifiedPayload(`{}`))
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Empty(t, f.orders.updates)
	assert.Equal(t, 1, f.locker.unlocked)
}

func TestHandleNotification_NoChangeSkipsUpdate(t *testing.T) {
	f := newServiceFixture()
	f.orders.orders["order-1"] = &domain.Order{
		OrderID: "order-1", TransactionStatus: domain.StatusSuccess,
	}
	f.payment.notification = &domain.PaymentNotification{
		OrderID: "order-1", TransactionStatus: "settlement",
	}

	view, err := f.service.HandleNotification(context.Background(), domain.UnverifiedPayload(`{}`))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, view.TransactionStatus)
	assert.Empty(t, f.orders.updates)
}

func TestHandleNotification_PublishFailureIsNotFatal(t *testing.T) {
	f := newServiceFixture()
	f.orders.orders["order-1"] = &domain.Order{
		OrderID: "order-1", TransactionStatus: domain.StatusPending,
	}
	f.payment.notification = &domain.PaymentNotification{
		OrderID: "order-1", TransactionStatus: "settlement",
	}
	f.publisher.err = assert.AnError

	view, err := f.service.HandleNotification(context.Background(), domain.UnverifiedPayload(`{}`))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, view.TransactionStatus)
	require.Len(t, f.orders.updates, 1)
}

func TestShippingCost_RequiresCity(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.ShippingCost(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrCityRequired)
	// 参数校验失败时不发起上游调用
	assert.Empty(t, f.shipping.quoteCity)
}

func TestShippingCost(t *testing.T) {
	f := newServiceFixture()

	rates, err := f.service.ShippingCost(context.Background(), "114")
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "REG", rates[0].Service)
	assert.Equal(t, "114", f.shipping.quoteCity)
}

func TestGetOrder(t *testing.T) {
	f := newServiceFixture()
	f.orders.orders["order-1"] = &domain.Order{
		OrderID: "order-1", GrossAmount: 220, TransactionStatus: domain.StatusPending,
	}

	view, err := f.service.GetOrder(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", view.OrderID)
	assert.Equal(t, int64(220), view.GrossAmount)

	_, err = f.service.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
