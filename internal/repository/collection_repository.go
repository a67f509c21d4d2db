package repository

import (
	"context"

	"app/internal/domain/model"
)

type CollectionRepository interface {
	Create(ctx context.Context, collection model.Collection) (int64, error)
	FindByID(ctx context.Context, collectionID int64) (model.Collection, error)
	UpdateName(ctx context.Context, collectionID int64, name string) error
	Delete(ctx context.Context, collectionID int64) error
	ListAll(ctx context.Context) ([]model.Collection, error)
}
