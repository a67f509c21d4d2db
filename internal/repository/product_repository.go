package repository

import (
	"context"

	"app/internal/domain/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product model.Product) (int64, error)
	FindByID(ctx context.Context, productID int64) (model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	ListByCollectionID(ctx context.Context, collectionID int64) ([]model.Product, error)
	// アップロード済みの画像行を追加する
	AddPhotos(ctx context.Context, productID int64, photos []model.ProductPhoto) error
	Delete(ctx context.Context, productID int64) error
}
