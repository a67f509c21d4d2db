package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type CollectionGormRepository struct {
	db *gorm.DB
}

func NewCollectionGormRepository(db *gorm.DB) *CollectionGormRepository {
	return &CollectionGormRepository{db: db}
}

func (r *CollectionGormRepository) Create(ctx context.Context, collection model.Collection) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&collection).Error; err != nil {
		return 0, err
	}
	return collection.ID, nil
}

func (r *CollectionGormRepository) FindByID(ctx context.Context, collectionID int64) (model.Collection, error) {
	var c model.Collection
	err := r.db.WithContext(ctx).First(&c, "id = ?", collectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Collection{}, repo.ErrNotFound
	}
	return c, err
}

func (r *CollectionGormRepository) UpdateName(ctx context.Context, collectionID int64, name string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("id = ?", collectionID).
		Update("name", name)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CollectionGormRepository) Delete(ctx context.Context, collectionID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Collection{}, "id = ?", collectionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CollectionGormRepository) ListAll(ctx context.Context) ([]model.Collection, error) {
	var collections []model.Collection
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&collections).Error
	return collections, err
}
