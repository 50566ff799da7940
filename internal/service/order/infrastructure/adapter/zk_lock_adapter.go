// internal/service/order/infrastructure/adapter/zk_lock_adapter.go
package adapter

import (
	"context"

	"github.com/pkg/errors"

	"storefront/internal/pkg/zookeeper"
	"storefront/internal/service/order/domain/port"
)

// ZkOrderLocker 是 port.OrderLocker 的 ZooKeeper 实现。
// 锁以订单号为粒度，多实例部署下同一订单的回调也能串行化。
type ZkOrderLocker struct {
	conn *zookeeper.Conn
}

// NewZkOrderLocker 创建一个新的订单锁适配器
func NewZkOrderLocker(conn *zookeeper.Conn) *ZkOrderLocker {
	return &ZkOrderLocker{conn: conn}
}

// Lock 获取指定订单的互斥锁，返回释放函数
func (l *ZkOrderLocker) Lock(ctx context.Context, orderID string) (port.UnlockFunc, error) {
	lock, err := zookeeper.NewDistributedLock(l.conn, "order-"+orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to prepare lock for order %s", orderID)
	}
	if err := lock.Lock(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to acquire lock for order %s", orderID)
	}
	return lock.Unlock, nil
}
