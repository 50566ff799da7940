// internal/service/order/domain/port/payment.go
package port

import (
	"context"

	"storefront/internal/service/order/domain"
)

// PaymentGateway 封装支付网关的交易会话创建与回调验证
type PaymentGateway interface {
	// CreateTransactionToken 提交装配好的交易请求，返回不透明的会话令牌
	CreateTransactionToken(ctx context.Context, req *domain.TransactionRequest) (string, error)

	// VerifyNotification 验证回调报文的真实性。
	// 这是原始报文换取可信 PaymentNotification 的唯一途径，
	// 验证失败返回 domain.ErrVerification。
	VerifyNotification(ctx context.Context, payload domain.UnverifiedPayload) (*domain.PaymentNotification, error)
}
