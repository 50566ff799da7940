package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/httpclient"
	"storefront/internal/service/order/domain"
)

func newShippingAdapter(t *testing.T, handler http.HandlerFunc) *RajaOngkirAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := httpclient.NewClient(otel.Tracer("test"))
	return NewRajaOngkirAdapter(client, server.URL, "secret-key")
}

func envelope(results string) string {
	return `{"rajaongkir":{"status":{"code":200,"description":"OK"},"results":` + results + `}}`
}

func TestProvincesPassthrough(t *testing.T) {
	var gotKey, gotPath, gotQuery string
	adapter := newShippingAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Key")
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("id")
		w.Write([]byte(envelope(`[{"province_id":"1","province":"Bali"}]`)))
	})

	results, err := adapter.Provinces(context.Background(), url.Values{"id": []string{"1"}})
	require.NoError(t, err)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "/province", gotPath)
	assert.Equal(t, "1", gotQuery)
	assert.JSONEq(t, `[{"province_id":"1","province":"Bali"}]`, string(results))
}

func TestCityByID(t *testing.T) {
	adapter := newShippingAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/city", r.URL.Path)
		assert.Equal(t, "114", r.URL.Query().Get("id"))
		w.Write([]byte(envelope(`{"city_id":"114","province_id":"1","province":"Bali","city_name":"Denpasar","postal_code":"80227"}`)))
	})

	city, err := adapter.CityByID(context.Background(), "114")
	require.NoError(t, err)
	assert.Equal(t, &domain.City{
		CityID: "114", ProvinceID: "1", Province: "Bali",
		CityName: "Denpasar", PostalCode: "80227",
	}, city)
}

func TestCityByID_UnknownCity(t *testing.T) {
	adapter := newShippingAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(envelope(`{}`)))
	})

	_, err := adapter.CityByID(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestQuoteRates(t *testing.T) {
	var gotBody map[string]interface{}
	adapter := newShippingAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cost", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(envelope(`[{"code":"jne","name":"JNE","costs":[
			{"service":"OKE","description":"Ekonomis","cost":[{"value":15,"etd":"3-6"}]},
			{"service":"REG","description":"Reguler","cost":[{"value":20,"etd":"1-2"}]},
			{"service":"YES","description":"Yakin Esok Sampai","cost":[]}
		]}]`)))
	})

	rates, err := adapter.QuoteRates(context.Background(), "114")
	require.NoError(t, err)

	// 报价参数固定：发货地、计费重量、承运商
	assert.Equal(t, "289", gotBody["origin"])
	assert.Equal(t, "114", gotBody["destination"])
	assert.Equal(t, float64(1000), gotBody["weight"])
	assert.Equal(t, "jne", gotBody["courier"])

	// 无报价明细的服务被跳过
	require.Len(t, rates, 2)
	assert.Equal(t, domain.ShippingRate{Service: "OKE", Description: "Ekonomis", Cost: 15, ETD: "3-6"}, rates[0])
	assert.Equal(t, domain.ShippingRate{Service: "REG", Description: "Reguler", Cost: 20, ETD: "1-2"}, rates[1])
}

func TestProviderErrorsMapToUpstream(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		adapter := newShippingAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		_, err := adapter.Provinces(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("provider status in envelope", func(t *testing.T) {
		adapter := newShippingAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"rajaongkir":{"status":{"code":400,"description":"Invalid key"}}}`))
		})
		_, err := adapter.Provinces(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrUpstream)
		assert.Contains(t, err.Error(), "Invalid key")
	})

	t.Run("malformed body", func(t *testing.T) {
		adapter := newShippingAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		})
		_, err := adapter.Provinces(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}
