// internal/service/order/infrastructure/models.go
package infrastructure

import "time"

// OrderModel 是 Order 领域对象在数据库中的表示。
// order_id 上的唯一索引是订单号防撞的最后一道防线。
type OrderModel struct {
	ID                uint   `gorm:"primaryKey"`
	OrderID           string `gorm:"uniqueIndex;size:64"`
	GrossAmount       int64
	CustomerEmail     string `gorm:"size:255"`
	TransactionStatus string `gorm:"size:32"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// ProductModel 是商品目录条目在数据库中的表示
type ProductModel struct {
	ID    int64 `gorm:"primaryKey"`
	Name  string
	Price int64
}

func (ProductModel) TableName() string {
	return "products"
}
