package repository

import (
	"context"

	"app/internal/domain/model"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon model.Coupon) (int64, error)
	FindByID(ctx context.Context, couponID int64) (model.Coupon, error)
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	// 有効フラグの切り替えだけを行う
	UpdateActive(ctx context.Context, couponID int64, active bool) (model.Coupon, error)
	Delete(ctx context.Context, couponID int64) error
	ListAll(ctx context.Context) ([]model.Coupon, error)
}
