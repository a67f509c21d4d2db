package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 作成日時の降順
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	ListAll(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	// 同じ取引IDなら同じ注文を返す（二重確定の防止）
	FindByTransactionID(ctx context.Context, transactionID string) (model.Order, bool, error)
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
