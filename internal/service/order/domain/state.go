// internal/service/order/domain/state.go
package domain

// TransactionStatus 是订单支付状态的内部词表
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"   // 已下单，等待支付
	StatusChallenge TransactionStatus = "challenge" // 风控质疑，等待人工复核
	StatusSuccess   TransactionStatus = "success"   // 支付完成
)

// 支付网关上报的交易状态与欺诈状态
const (
	ProviderStatusCapture    = "capture"
	ProviderStatusSettlement = "settlement"

	FraudStatusAccept    = "accept"
	FraudStatusChallenge = "challenge"
)

// ResolveStatus 把支付网关的状态词表映射为内部订单状态。
// 映射表之外的状态（pending、deny、cancel、expire 等）原样透传。
func ResolveStatus(transactionStatus, fraudStatus string) TransactionStatus {
	switch transactionStatus {
	case ProviderStatusCapture:
		switch fraudStatus {
		case FraudStatusChallenge:
			return StatusChallenge
		case FraudStatusAccept:
			return StatusSuccess
		}
		return TransactionStatus(transactionStatus)
	case ProviderStatusSettlement:
		return StatusSuccess
	default:
		return TransactionStatus(transactionStatus)
	}
}
