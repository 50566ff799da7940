// internal/service/order/domain/port/shipping.go
package port

import (
	"context"
	"encoding/json"
	"net/url"

	"storefront/internal/service/order/domain"
)

// ShippingGateway 封装第三方物流 API 的区域查询与运费报价。
// 省/市列表是对服务商结果的透传，filters 原样转发为查询条件。
type ShippingGateway interface {
	Provinces(ctx context.Context, filters url.Values) (json.RawMessage, error)
	Cities(ctx context.Context, filters url.Values) (json.RawMessage, error)

	// CityByID 解析城市名与邮编，用于构造规范化收货地址
	CityByID(ctx context.Context, cityID string) (*domain.City, error)

	// QuoteRates 按固定发货地/计费重量/承运商报价到目的城市的运费
	QuoteRates(ctx context.Context, destinationCityID string) ([]domain.ShippingRate, error)
}
