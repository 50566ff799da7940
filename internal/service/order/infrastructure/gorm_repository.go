// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"storefront/internal/service/order/domain"
)

const mysqlDuplicateEntry = 1062

// GormOrderRepository 是 OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 落库新订单，订单号撞唯一索引时返回领域错误
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return domain.ErrDuplicateOrderID
		}
		return err
	}
	order.ID = model.ID
	return nil
}

// FindByOrderID 按订单号查找订单
func (r *GormOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return toDomainOrder(&model), nil
}

// UpdateStatus 以前值为条件做字段级更新，而不是重写整条记录。
// 前值不匹配说明有并发回调抢先更新过，返回 ErrStatusConflict。
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.TransactionStatus) error {
	tx := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("order_id = ? AND transaction_status = ?", orderID, string(from)).
		Update("transaction_status", string(to))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

// GormProductRepository 是商品目录的 GORM 实现，目录整体读取
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository 创建一个新的目录仓储实例
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindAll 全量加载商品目录
func (r *GormProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(models))
	for i := range models {
		products = append(products, toDomainProduct(&models[i]))
	}
	return products, nil
}
