package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type CouponUsecase struct {
	coupons   repo.CouponRepository
	auditRepo repo.AuditLogRepository
}

func NewCouponUsecase(coupons repo.CouponRepository, auditRepo repo.AuditLogRepository) *CouponUsecase {
	return &CouponUsecase{coupons: coupons, auditRepo: auditRepo}
}

type CreateCouponInput struct {
	Code     string
	Discount int64
}

// クーポン作成。コードは一意、割引率は0〜100に制限する
func (u *CouponUsecase) Create(ctx context.Context, in CreateCouponInput) (model.Coupon, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "code & discount are required")
	}
	if in.Discount < 0 || in.Discount > 100 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "discount must be between 0 and 100")
	}

	now := time.Now()
	id, err := u.coupons.Create(ctx, model.Coupon{
		Code:      code,
		Discount:  in.Discount,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "coupon already exists")
	}
	if err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.coupons.FindByID(ctx, id)
}

// 有効フラグの切り替え（ADMIN/MODERATOR）
func (u *CouponUsecase) UpdateActive(ctx context.Context, actorID int64, couponID int64, active bool) (model.Coupon, error) {
	if couponID <= 0 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "coupon id is required")
	}

	before, err := u.coupons.FindByID(ctx, couponID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Coupon{}, NewHTTPError(http.StatusNotFound, "coupon not found")
	}
	if err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	updated, err := u.coupons.UpdateActive(ctx, couponID, active)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Coupon{}, NewHTTPError(http.StatusNotFound, "coupon not found")
	}
	if err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 監査ログ
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionToggleCoupon,
		ResourceType: model.AuditResourceCoupon,
		ResourceID:   couponID,
		BeforeJSON:   fmt.Sprintf(`{"active":%t}`, before.Active),
		AfterJSON:    fmt.Sprintf(`{"active":%t}`, updated.Active),
		CreatedAt:    time.Now(),
	}); err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return updated, nil
}

func (u *CouponUsecase) Delete(ctx context.Context, couponID int64) error {
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "coupon id is required")
	}

	if err := u.coupons.Delete(ctx, couponID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "coupon not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CouponUsecase) ListAll(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := u.coupons.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return coupons, nil
}
