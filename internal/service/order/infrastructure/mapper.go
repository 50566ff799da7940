// internal/service/order/infrastructure/mapper.go
package infrastructure

import "storefront/internal/service/order/domain"

func toDomainOrder(m *OrderModel) *domain.Order {
	return &domain.Order{
		ID:                m.ID,
		OrderID:           m.OrderID,
		GrossAmount:       m.GrossAmount,
		CustomerEmail:     m.CustomerEmail,
		TransactionStatus: domain.TransactionStatus(m.TransactionStatus),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toOrderModel(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:                o.ID,
		OrderID:           o.OrderID,
		GrossAmount:       o.GrossAmount,
		CustomerEmail:     o.CustomerEmail,
		TransactionStatus: string(o.TransactionStatus),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func toDomainProduct(m *ProductModel) domain.Product {
	return domain.Product{
		ID:    m.ID,
		Name:  m.Name,
		Price: m.Price,
	}
}
