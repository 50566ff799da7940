// internal/service/order/infrastructure/adapter/snap_http_adapter.go
package adapter

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"storefront/internal/pkg/httpclient"
	"storefront/internal/service/order/domain"
)

const (
	snapSandboxBaseURL    = "https://app.sandbox.midtrans.com"
	snapProductionBaseURL = "https://app.midtrans.com"
	apiSandboxBaseURL     = "https://api.sandbox.midtrans.com"
	apiProductionBaseURL  = "https://api.midtrans.com"
)

// SnapBaseURLs 按运行模式返回 Snap 与核心 API 的官方地址
func SnapBaseURLs(production bool) (snapBaseURL, apiBaseURL string) {
	if production {
		return snapProductionBaseURL, apiProductionBaseURL
	}
	return snapSandboxBaseURL, apiSandboxBaseURL
}

// SnapAdapter 实现了 port.PaymentGateway 接口，封装 Midtrans 的
// Snap 交易令牌 API 和回调验证。
type SnapAdapter struct {
	client      *httpclient.Client
	serverKey   string
	snapBaseURL string
	apiBaseURL  string
}

// NewSnapAdapter 创建一个新的支付网关适配器。
// 测试环境可以传入自建地址替代官方端点。
func NewSnapAdapter(client *httpclient.Client, serverKey, snapBaseURL, apiBaseURL string) *SnapAdapter {
	return &SnapAdapter{
		client:      client,
		serverKey:   serverKey,
		snapBaseURL: snapBaseURL,
		apiBaseURL:  apiBaseURL,
	}
}

// 网关要求的请求/响应形状，字段名跟随其 API 约定

type snapTransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type snapItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
	Name     string `json:"name"`
}

type snapAddress struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

type snapCustomerDetails struct {
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	ShippingAddress *snapAddress `json:"shipping_address,omitempty"`
}

type snapTokenRequest struct {
	TransactionDetails snapTransactionDetails `json:"transaction_details"`
	ItemDetails        []snapItemDetail       `json:"item_details"`
	CustomerDetails    snapCustomerDetails    `json:"customer_details"`
}

type snapTokenResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages"`
}

// CreateTransactionToken 提交交易请求，换取 Snap 会话令牌
func (a *SnapAdapter) CreateTransactionToken(ctx context.Context, req *domain.TransactionRequest) (string, error) {
	payload := snapTokenRequest{
		TransactionDetails: snapTransactionDetails{
			OrderID:     req.OrderID,
			GrossAmount: req.GrossAmount,
		},
		ItemDetails: make([]snapItemDetail, 0, len(req.Items)),
		CustomerDetails: snapCustomerDetails{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
			ShippingAddress: &snapAddress{
				FirstName:   req.ShippingAddress.FirstName,
				LastName:    req.ShippingAddress.LastName,
				Email:       req.ShippingAddress.Email,
				Phone:       req.ShippingAddress.Phone,
				Address:     req.ShippingAddress.Address,
				City:        req.ShippingAddress.City,
				PostalCode:  req.ShippingAddress.PostalCode,
				CountryCode: req.ShippingAddress.CountryCode,
			},
		},
	}
	for _, item := range req.Items {
		payload.ItemDetails = append(payload.ItemDetails, snapItemDetail{
			ID:       item.ID,
			Price:    item.Price,
			Quantity: item.Quantity,
			Name:     item.Name,
		})
	}

	body, status, err := a.client.PostJSON(ctx, a.snapBaseURL+"/snap/v1/transactions", a.authHeader(), payload)
	if err != nil {
		return "", errors.Wrap(domain.ErrGateway, err.Error())
	}

	var resp snapTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrapf(domain.ErrGateway, "malformed response: %v", err)
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", errors.Wrapf(domain.ErrGateway, "status %d: %s", status, strings.Join(resp.ErrorMessages, "; "))
	}
	if resp.Token == "" {
		return "", errors.Wrap(domain.ErrGateway, "empty token in response")
	}
	return resp.Token, nil
}

// notificationPayload 是回调报文中参与验证的字段
type notificationPayload struct {
	OrderID      string `json:"order_id"`
	StatusCode   string `json:"status_code"`
	GrossAmount  string `json:"gross_amount"`
	SignatureKey string `json:"signature_key"`
}

// statusResponse 是状态查询 API 返回的权威交易状态
type statusResponse struct {
	StatusCode        string `json:"status_code"`
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
}

// VerifyNotification 验证回调报文：先校验签名，再向网关查询权威状态。
// 只用签名不够——重放的旧报文签名也是合法的，状态以网关当前返回为准。
func (a *SnapAdapter) VerifyNotification(ctx context.Context, payload domain.UnverifiedPayload) (*domain.PaymentNotification, error) {
	var raw notificationPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrapf(domain.ErrVerification, "malformed payload: %v", err)
	}
	if raw.OrderID == "" || raw.SignatureKey == "" {
		return nil, errors.Wrap(domain.ErrVerification, "missing order_id or signature_key")
	}

	expected := sha512.Sum512([]byte(raw.OrderID + raw.StatusCode + raw.GrossAmount + a.serverKey))
	expectedHex := hex.EncodeToString(expected[:])
	if subtle.ConstantTimeCompare([]byte(expectedHex), []byte(strings.ToLower(raw.SignatureKey))) != 1 {
		return nil, errors.Wrap(domain.ErrVerification, "signature mismatch")
	}

	body, status, err := a.client.Get(ctx, a.apiBaseURL+"/v2/"+raw.OrderID+"/status", a.authHeader(), nil)
	if err != nil {
		return nil, errors.Wrap(domain.ErrVerification, err.Error())
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, errors.Wrapf(domain.ErrVerification, "status lookup returned %d", status)
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(domain.ErrVerification, "malformed status response: %v", err)
	}
	if resp.StatusCode == "404" || resp.TransactionStatus == "" {
		return nil, errors.Wrapf(domain.ErrVerification, "gateway does not know transaction %s", raw.OrderID)
	}

	return &domain.PaymentNotification{
		OrderID:           resp.OrderID,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		StatusCode:        resp.StatusCode,
		GrossAmount:       resp.GrossAmount,
		PaymentType:       resp.PaymentType,
	}, nil
}

func (a *SnapAdapter) authHeader() http.Header {
	credential := base64.StdEncoding.EncodeToString([]byte(a.serverKey + ":"))
	return http.Header{
		"Authorization": []string{"Basic " + credential},
		"Accept":        []string{"application/json"},
	}
}
