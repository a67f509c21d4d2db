package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type CouponGormRepository struct {
	db *gorm.DB
}

func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

func (r *CouponGormRepository) Create(ctx context.Context, coupon model.Coupon) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&coupon).Error; err != nil {
		if isDuplicate(err) {
			return 0, repo.ErrDuplicate
		}
		return 0, err
	}
	return coupon.ID, nil
}

func (r *CouponGormRepository) FindByID(ctx context.Context, couponID int64) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).First(&c, "id = ?", couponID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Coupon{}, repo.ErrNotFound
	}
	return c, err
}

func (r *CouponGormRepository) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).First(&c, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Coupon{}, repo.ErrNotFound
	}
	return c, err
}

func (r *CouponGormRepository) UpdateActive(ctx context.Context, couponID int64, active bool) (model.Coupon, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ?", couponID).
		Update("active", active)

	if res.Error != nil {
		return model.Coupon{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Coupon{}, repo.ErrNotFound
	}
	return r.FindByID(ctx, couponID)
}

func (r *CouponGormRepository) Delete(ctx context.Context, couponID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Coupon{}, "id = ?", couponID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CouponGormRepository) ListAll(ctx context.Context) ([]model.Coupon, error) {
	var coupons []model.Coupon
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}
