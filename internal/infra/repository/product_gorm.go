package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// Create は商品と写真をまとめて保存する（gormのassociation任せ）
func (r *ProductGormRepository) Create(ctx context.Context, product model.Product) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return 0, err
	}
	return product.ID, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Photos").
		First(&p, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	return p, err
}

func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Photos").
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *ProductGormRepository) ListByCollectionID(ctx context.Context, collectionID int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Photos").
		Where("collection_id = ?", collectionID).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *ProductGormRepository) AddPhotos(ctx context.Context, productID int64, photos []model.ProductPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	for i := range photos {
		photos[i].ProductID = productID
	}
	return r.db.WithContext(ctx).Create(&photos).Error
}

func (r *ProductGormRepository) Delete(ctx context.Context, productID int64) error {
	// 写真→本体の順に消す
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.ProductPhoto{}).Error; err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", productID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
