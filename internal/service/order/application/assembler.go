// internal/service/order/application/assembler.go
package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

// 运费行条目的展示名，与承运商保持一致
const shippingItemLabel = "Shipping JNE"

// TransactionAssembler 负责把购物车装配成一份支付网关交易请求：
// 商品行按目录价计价，追加一行运费，再补全规范化收货地址。
type TransactionAssembler struct {
	shipping port.ShippingGateway
	tracer   trace.Tracer
}

// NewTransactionAssembler 创建一个新的交易装配器
func NewTransactionAssembler(shipping port.ShippingGateway, tracer trace.Tracer) *TransactionAssembler {
	return &TransactionAssembler{shipping: shipping, tracer: tracer}
}

// Assemble 执行完整的装配流程。任何一步失败都中止整个装配，不产生半成品交易。
func (a *TransactionAssembler) Assemble(ctx context.Context, cart []domain.CartItem, customer domain.Customer, catalog []domain.Product) (*domain.TransactionRequest, error) {
	ctx, span := a.tracer.Start(ctx, "assembler.Assemble")
	defer span.End()

	// 1. 逐条解析购物车，价格只认目录价，防止客户端篡改
	items, err := buildItemLines(cart, catalog)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 2. 运费报价和城市解析互不依赖，并发执行，任一失败即整体失败
	var (
		rates []domain.ShippingRate
		city  *domain.City
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rates, err = a.shipping.QuoteRates(gctx, customer.CityID)
		return err
	})
	g.Go(func() error {
		var err error
		city, err = a.shipping.CityByID(gctx, customer.CityID)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 3. 选中客户指定的运输服务，作为一行运费条目追加
	rate, ok := selectRate(rates, customer.Service)
	if !ok {
		err := errors.Wrapf(domain.ErrShippingOptionNotFound, "service %q", customer.Service)
		span.RecordError(err)
		return nil, err
	}
	items = append(items, domain.LineItem{
		ID:       rate.Service,
		Quantity: 1,
		Name:     fmt.Sprintf("%s (%s)", shippingItemLabel, rate.Service),
		Price:    rate.Cost,
	})

	req := &domain.TransactionRequest{
		OrderID:     uuid.New().String(),
		GrossAmount: domain.SumGross(items),
		Items:       items,
		Customer:    customer,
		ShippingAddress: domain.ShippingAddress{
			FirstName:   customer.FirstName,
			LastName:    customer.LastName,
			Email:       customer.Email,
			Phone:       customer.Phone,
			Address:     customer.Address,
			City:        city.CityName,
			PostalCode:  city.PostalCode,
			CountryCode: "IDN",
		},
	}

	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.Int64("order.gross_amount", req.GrossAmount),
		attribute.Int("order.item_count", len(req.Items)),
	)
	return req, nil
}

func buildItemLines(cart []domain.CartItem, catalog []domain.Product) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(cart)+1)
	for _, entry := range cart {
		product, ok := findProduct(catalog, entry.ProductID)
		if !ok {
			return nil, errors.Wrapf(domain.ErrProductNotFound, "product %d", entry.ProductID)
		}
		items = append(items, domain.LineItem{
			ID:       strconv.FormatInt(product.ID, 10),
			Quantity: entry.Quantity,
			Name:     fmt.Sprintf("%s (Size %s)", product.Name, entry.Size),
			Price:    product.Price,
		})
	}
	return items, nil
}

func findProduct(catalog []domain.Product, id int64) (domain.Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func selectRate(rates []domain.ShippingRate, service string) (domain.ShippingRate, bool) {
	for _, r := range rates {
		if r.Service == service {
			return r, true
		}
	}
	return domain.ShippingRate{}, false
}
