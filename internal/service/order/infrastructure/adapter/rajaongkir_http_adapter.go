// internal/service/order/infrastructure/adapter/rajaongkir_http_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"storefront/internal/pkg/httpclient"
	"storefront/internal/service/order/domain"
)

// 报价参数是业务约定而不是可配置项：
// 发货地固定为卖家仓库所在城市，计费重量统一按 1000 克（未建模单品重量），
// 承运商只接了一家。
const (
	originCityID       = "289"
	nominalWeightGrams = 1000
	courierCode        = "jne"
)

// RajaOngkirAdapter 实现了 port.ShippingGateway 接口，
// 封装 RajaOngkir starter 档的区域查询与运费报价 API。
type RajaOngkirAdapter struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
}

// NewRajaOngkirAdapter 创建一个新的物流服务适配器
func NewRajaOngkirAdapter(client *httpclient.Client, baseURL, apiKey string) *RajaOngkirAdapter {
	return &RajaOngkirAdapter{client: client, baseURL: baseURL, apiKey: apiKey}
}

// rajaOngkirEnvelope 是服务商所有响应共用的外层结构
type rajaOngkirEnvelope struct {
	RajaOngkir struct {
		Status struct {
			Code        int    `json:"code"`
			Description string `json:"description"`
		} `json:"status"`
		Results json.RawMessage `json:"results"`
	} `json:"rajaongkir"`
}

// Provinces 透传省份列表，filters 原样转发为查询条件
func (a *RajaOngkirAdapter) Provinces(ctx context.Context, filters url.Values) (json.RawMessage, error) {
	return a.area(ctx, "/province", filters)
}

// Cities 透传城市列表
func (a *RajaOngkirAdapter) Cities(ctx context.Context, filters url.Values) (json.RawMessage, error) {
	return a.area(ctx, "/city", filters)
}

// CityByID 按城市ID查询，服务商对单ID查询返回单个对象而不是数组
func (a *RajaOngkirAdapter) CityByID(ctx context.Context, cityID string) (*domain.City, error) {
	results, err := a.area(ctx, "/city", url.Values{"id": []string{cityID}})
	if err != nil {
		return nil, err
	}

	var payload struct {
		CityID     string `json:"city_id"`
		ProvinceID string `json:"province_id"`
		Province   string `json:"province"`
		CityName   string `json:"city_name"`
		PostalCode string `json:"postal_code"`
	}
	if err := json.Unmarshal(results, &payload); err != nil {
		return nil, errors.Wrapf(domain.ErrUpstream, "malformed city result: %v", err)
	}
	if payload.CityID == "" {
		return nil, errors.Wrapf(domain.ErrUpstream, "city %s not found", cityID)
	}

	return &domain.City{
		CityID:     payload.CityID,
		ProvinceID: payload.ProvinceID,
		Province:   payload.Province,
		CityName:   payload.CityName,
		PostalCode: payload.PostalCode,
	}, nil
}

// QuoteRates 报价到目的城市的运费，返回按服务展开的报价列表
func (a *RajaOngkirAdapter) QuoteRates(ctx context.Context, destinationCityID string) ([]domain.ShippingRate, error) {
	payload := map[string]interface{}{
		"origin":      originCityID,
		"destination": destinationCityID,
		"weight":      nominalWeightGrams,
		"courier":     courierCode,
	}

	body, status, err := a.client.PostJSON(ctx, a.baseURL+"/cost", a.authHeader(), payload)
	if err != nil {
		return nil, errors.Wrap(domain.ErrUpstream, err.Error())
	}
	results, err := parseEnvelope(body, status)
	if err != nil {
		return nil, err
	}

	var couriers []struct {
		Code  string `json:"code"`
		Name  string `json:"name"`
		Costs []struct {
			Service     string `json:"service"`
			Description string `json:"description"`
			Cost        []struct {
				Value int64  `json:"value"`
				ETD   string `json:"etd"`
			} `json:"cost"`
		} `json:"costs"`
	}
	if err := json.Unmarshal(results, &couriers); err != nil {
		return nil, errors.Wrapf(domain.ErrUpstream, "malformed cost result: %v", err)
	}
	if len(couriers) == 0 {
		return nil, errors.Wrapf(domain.ErrUpstream, "no rates for city %s", destinationCityID)
	}

	rates := make([]domain.ShippingRate, 0, len(couriers[0].Costs))
	for _, c := range couriers[0].Costs {
		if len(c.Cost) == 0 {
			continue
		}
		rates = append(rates, domain.ShippingRate{
			Service:     c.Service,
			Description: c.Description,
			Cost:        c.Cost[0].Value,
			ETD:         c.Cost[0].ETD,
		})
	}
	return rates, nil
}

func (a *RajaOngkirAdapter) area(ctx context.Context, path string, filters url.Values) (json.RawMessage, error) {
	body, status, err := a.client.Get(ctx, a.baseURL+path, a.authHeader(), filters)
	if err != nil {
		return nil, errors.Wrap(domain.ErrUpstream, err.Error())
	}
	return parseEnvelope(body, status)
}

func (a *RajaOngkirAdapter) authHeader() http.Header {
	return http.Header{"Key": []string{a.apiKey}}
}

func parseEnvelope(body []byte, status int) (json.RawMessage, error) {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, errors.Wrapf(domain.ErrUpstream, "unexpected status %d", status)
	}
	var env rajaOngkirEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrapf(domain.ErrUpstream, "malformed body: %v", err)
	}
	if env.RajaOngkir.Status.Code != http.StatusOK {
		return nil, errors.Wrapf(domain.ErrUpstream, "provider status %d: %s",
			env.RajaOngkir.Status.Code, env.RajaOngkir.Status.Description)
	}
	return env.RajaOngkir.Results, nil
}
