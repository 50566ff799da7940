package application

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/service/order/domain"
)

// fakeShippingGateway 返回固定报价和城市数据
type fakeShippingGateway struct {
	rates     []domain.ShippingRate
	city      *domain.City
	ratesErr  error
	cityErr   error
	quoteCity string
}

func (f *fakeShippingGateway) Provinces(ctx context.Context, filters url.Values) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeShippingGateway) Cities(ctx context.Context, filters url.Values) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (f *fakeShippingGateway) CityByID(ctx context.Context, cityID string) (*domain.City, error) {
	if f.cityErr != nil {
		return nil, f.cityErr
	}
	return f.city, nil
}

func (f *fakeShippingGateway) QuoteRates(ctx context.Context, destinationCityID string) ([]domain.ShippingRate, error) {
	f.quoteCity = destinationCityID
	if f.ratesErr != nil {
		return nil, f.ratesErr
	}
	return f.rates, nil
}

var testCatalog = []domain.Product{
	{ID: 1, Name: "Tee", Price: 100},
	{ID: 2, Name: "Hoodie", Price: 350},
}

func testCustomer() domain.Customer {
	return domain.Customer{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Phone:     "0812345678",
		Address:   "Jl. Sudirman 1",
		CityID:    "114",
		Service:   "REG",
	}
}

func newTestAssembler(shipping *fakeShippingGateway) *TransactionAssembler {
	return NewTransactionAssembler(shipping, otel.Tracer("test"))
}

func TestAssemble(t *testing.T) {
	shipping := &fakeShippingGateway{
		rates: []domain.ShippingRate{
			{Service: "OKE", Cost: 15, ETD: "3-6"},
			{Service: "REG", Cost: 20, ETD: "1-2"},
		},
		city: &domain.City{CityID: "114", CityName: "Denpasar", PostalCode: "80227"},
	}

	req, err := newTestAssembler(shipping).Assemble(context.Background(),
		[]domain.CartItem{{ProductID: 1, Size: "M", Quantity: 2}},
		testCustomer(), testCatalog)
	require.NoError(t, err)

	require.Len(t, req.Items, 2)
	assert.Equal(t, domain.LineItem{ID: "1", Quantity: 2, Name: "Tee (Size M)", Price: 100}, req.Items[0])
	assert.Equal(t, domain.LineItem{ID: "REG", Quantity: 1, Name: "Shipping JNE (REG)", Price: 20}, req.Items[1])
	assert.Equal(t, int64(220), req.GrossAmount)
	assert.NotEmpty(t, req.OrderID)
	assert.Equal(t, "114", shipping.quoteCity)

	assert.Equal(t, "Denpasar", req.ShippingAddress.City)
	assert.Equal(t, "80227", req.ShippingAddress.PostalCode)
	assert.Equal(t, "IDN", req.ShippingAddress.CountryCode)
	assert.Equal(t, "Jane", req.ShippingAddress.FirstName)
}

func TestAssemble_UniqueOrderIDs(t *testing.T) {
	shipping := &fakeShippingGateway{
		rates: []domain.ShippingRate{{Service: "REG", Cost: 20}},
		city:  &domain.City{CityID: "114", CityName: "Denpasar"},
	}
	assembler := newTestAssembler(shipping)
	cart := []domain.CartItem{{ProductID: 1, Size: "M", Quantity: 1}}

	first, err := assembler.Assemble(context.Background(), cart, testCustomer(), testCatalog)
	require.NoError(t, err)
	second, err := assembler.Assemble(context.Background(), cart, testCustomer(), testCatalog)
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderID, second.OrderID)
}

func TestAssemble_UnknownProduct(t *testing.T) {
	shipping := &fakeShippingGateway{
		rates: []domain.ShippingRate{{Service: "REG", Cost: 20}},
		city:  &domain.City{CityID: "114"},
	}

	_, err := newTestAssembler(shipping).Assemble(context.Background(),
		[]domain.CartItem{{ProductID: 99, Size: "M", Quantity: 1}},
		testCustomer(), testCatalog)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAssemble_UnknownShippingService(t *testing.T) {
	shipping := &fakeShippingGateway{
		rates: []domain.ShippingRate{{Service: "OKE", Cost: 15}},
		city:  &domain.City{CityID: "114"},
	}

	_, err := newTestAssembler(shipping).Assemble(context.Background(),
		[]domain.CartItem{{ProductID: 1, Size: "M", Quantity: 1}},
		testCustomer(), testCatalog)
	assert.ErrorIs(t, err, domain.ErrShippingOptionNotFound)
}

func TestAssemble_QuoteFailureAborts(t *testing.T) {
	shipping := &fakeShippingGateway{
		ratesErr: domain.ErrUpstream,
		city:     &domain.City{CityID: "114"},
	}

	_, err := newTestAssembler(shipping).Assemble(context.Background(),
		[]domain.CartItem{{ProductID: 1, Size: "M", Quantity: 1}},
		testCustomer(), testCatalog)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
