// internal/service/order/domain/notification.go
package domain

// UnverifiedPayload 是支付网关异步回调的原始报文。
// 单独定义类型，保证对账逻辑在类型上就无法消费未经验证的数据：
// 只有 PaymentGateway.VerifyNotification 能把它换成 PaymentNotification。
type UnverifiedPayload []byte

// PaymentNotification 是验证通过后的支付回调内容
type PaymentNotification struct {
	OrderID           string
	TransactionStatus string
	FraudStatus       string
	StatusCode        string
	GrossAmount       string
	PaymentType       string
}
