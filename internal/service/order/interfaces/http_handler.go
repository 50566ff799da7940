package interfaces

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/order/application"
	"storefront/internal/service/order/domain"
)

const serviceName = "order-service"

var (
	tokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_transaction_tokens_issued_total",
		Help: "Number of payment session tokens successfully issued.",
	})
	notificationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_payment_notifications_total",
		Help: "Payment notifications processed, labelled by outcome status.",
	}, []string{"status"})
)

// OrderHandler 封装了订单服务的 HTTP 处理器
type OrderHandler struct {
	service *application.OrderService
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例
func NewOrderHandler(service *application.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /order/token", h.handleToken)
	mux.HandleFunc("GET /order/province", h.handleProvinces)
	mux.HandleFunc("GET /order/city", h.handleCities)
	// /order/cost 不带城市也要能进到校验逻辑，而不是落进 404
	mux.HandleFunc("GET /order/cost", h.handleCost)
	mux.HandleFunc("GET /order/cost/{$}", h.handleCost)
	mux.HandleFunc("GET /order/cost/{city}", h.handleCost)
	mux.HandleFunc("POST /order/notification", h.handleNotification)
	mux.HandleFunc("GET /order/{order_id}", h.handleGetOrder)
}

func (h *OrderHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "order-service.CreateTransactionToken")
	defer span.End()

	var req application.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("cart.item_count", len(req.Products)))

	resp, err := h.service.CreateTransactionToken(ctx, &req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	tokensIssued.Inc()
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) handleProvinces(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "order-service.GetProvinces")
	defer span.End()

	resp, err := h.service.Provinces(ctx, r.URL.Query())
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeRawJSON(w, resp)
}

func (h *OrderHandler) handleCities(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "order-service.GetCities")
	defer span.End()

	resp, err := h.service.Cities(ctx, r.URL.Query())
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeRawJSON(w, resp)
}

func (h *OrderHandler) handleCost(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "order-service.GetShippingCost")
	defer span.End()

	rates, err := h.service.ShippingCost(ctx, r.PathValue("city"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

func (h *OrderHandler) handleNotification(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "order-service.HandleNotification")
	defer span.End()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := h.service.HandleNotification(ctx, domain.UnverifiedPayload(payload))
	if err != nil {
		notificationsProcessed.WithLabelValues("rejected").Inc()
		h.writeError(ctx, w, err)
		return
	}

	notificationsProcessed.WithLabelValues(string(view.TransactionStatus)).Inc()
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "order-service.GetOrder")
	defer span.End()

	view, err := h.service.GetOrder(ctx, r.PathValue("order_id"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// startSpan 提取上游链路上下文并开启一个服务端 Span，
// 同时把带 trace_id 的 logger 注入 context。
func (h *OrderHandler) startSpan(r *http.Request, name string) (ctx context.Context, span trace.Span) {
	propagator := otel.GetTextMapPropagator()
	ctx = propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tracer := otel.Tracer(serviceName)
	ctx, span = tracer.Start(ctx, name)
	ctx = logger.WithTraceContext(ctx)
	return ctx, span
}

// writeError 根据错误类型返回不同的 HTTP 状态码。
// 上游故障（502）和客户端问题（400/404）要区分开，方便调用方排障。
func (h *OrderHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrUpstream),
		errors.Is(err, domain.ErrGateway):
		statusCode = http.StatusBadGateway
	case errors.Is(err, domain.ErrCityRequired),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrShippingOptionNotFound),
		errors.Is(err, domain.ErrVerification),
		errors.Is(err, domain.ErrDuplicateOrderID),
		errors.Is(err, domain.ErrStatusConflict):
		statusCode = http.StatusBadRequest
	default:
		statusCode = http.StatusInternalServerError
	}

	logger.Ctx(ctx).Error().Err(err).Int("status", statusCode).Msg("request failed")
	writeJSON(w, statusCode, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}
