// internal/service/order/domain/port/lock.go
package port

import "context"

// UnlockFunc 释放已持有的锁
type UnlockFunc func() error

// OrderLocker 对单个订单的读-改-写做互斥。
// 同一订单的两条近乎同时到达的回调必须串行对账，否则状态更新会互相覆盖。
type OrderLocker interface {
	Lock(ctx context.Context, orderID string) (UnlockFunc, error)
}
