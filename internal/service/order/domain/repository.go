// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type OrderRepository interface {
	// Create 落库一个新订单，订单号撞唯一索引时返回 ErrDuplicateOrderID。
	Create(ctx context.Context, order *Order) error

	// FindByOrderID 按订单号查找订单，不存在时返回 ErrOrderNotFound。
	FindByOrderID(ctx context.Context, orderID string) (*Order, error)

	// UpdateStatus 以 from 为条件做字段级状态更新，避免整条记录重写。
	// 前值不匹配（并发回调抢先更新）时返回 ErrStatusConflict。
	UpdateStatus(ctx context.Context, orderID string, from, to TransactionStatus) error
}

// ProductRepository 是商品目录的只读接口，目录整体加载
type ProductRepository interface {
	FindAll(ctx context.Context) ([]Product, error)
}
