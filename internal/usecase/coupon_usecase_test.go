package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"
)

type CouponRepoMock struct{ mock.Mock }

func (m *CouponRepoMock) Create(ctx context.Context, c model.Coupon) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CouponRepoMock) FindByID(ctx context.Context, couponID int64) (model.Coupon, error) {
	args := m.Called(ctx, couponID)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *CouponRepoMock) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	panic("not used in CouponUsecase tests")
}

func (m *CouponRepoMock) UpdateActive(ctx context.Context, couponID int64, active bool) (model.Coupon, error) {
	args := m.Called(ctx, couponID, active)
	c, _ := args.Get(0).(model.Coupon)
	return c, args.Error(1)
}

func (m *CouponRepoMock) Delete(ctx context.Context, couponID int64) error {
	args := m.Called(ctx, couponID)
	return args.Error(0)
}

func (m *CouponRepoMock) ListAll(ctx context.Context) ([]model.Coupon, error) {
	args := m.Called(ctx)
	cs, _ := args.Get(0).([]model.Coupon)
	return cs, args.Error(1)
}

func TestCouponUsecase_Create_EmptyCode(t *testing.T) {
	uc := usecase.NewCouponUsecase(new(CouponRepoMock), &fakeAuditRepo{})

	_, err := uc.Create(context.Background(), usecase.CreateCouponInput{Code: "  ", Discount: 10})
	assertErrContains(t, err, "code & discount are required")
}

func TestCouponUsecase_Create_DiscountOutOfRange(t *testing.T) {
	uc := usecase.NewCouponUsecase(new(CouponRepoMock), &fakeAuditRepo{})

	_, err := uc.Create(context.Background(), usecase.CreateCouponInput{Code: "SAVE", Discount: 101})
	assertErrContains(t, err, "between 0 and 100")

	_, err = uc.Create(context.Background(), usecase.CreateCouponInput{Code: "SAVE", Discount: -1})
	assertErrContains(t, err, "between 0 and 100")
}

func TestCouponUsecase_Create_Duplicate(t *testing.T) {
	cRepo := new(CouponRepoMock)
	uc := usecase.NewCouponUsecase(cRepo, &fakeAuditRepo{})

	cRepo.On("Create", mock.Anything, mock.AnythingOfType("model.Coupon")).Return(int64(0), repo.ErrDuplicate)

	_, err := uc.Create(context.Background(), usecase.CreateCouponInput{Code: "SAVE10", Discount: 10})
	assertErrContains(t, err, "coupon already exists")
}

func TestCouponUsecase_Create_Success_TrimsAndActivates(t *testing.T) {
	cRepo := new(CouponRepoMock)
	uc := usecase.NewCouponUsecase(cRepo, &fakeAuditRepo{})

	cRepo.On("Create", mock.Anything, mock.MatchedBy(func(c model.Coupon) bool {
		return c.Code == "SAVE10" && c.Discount == 10 && c.Active
	})).Return(int64(5), nil)
	cRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Coupon{ID: 5, Code: "SAVE10", Discount: 10, Active: true}, nil)

	c, err := uc.Create(context.Background(), usecase.CreateCouponInput{Code: " SAVE10 ", Discount: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), c.ID)

	cRepo.AssertExpectations(t)
}

func TestCouponUsecase_UpdateActive_NotFound(t *testing.T) {
	cRepo := new(CouponRepoMock)
	uc := usecase.NewCouponUsecase(cRepo, &fakeAuditRepo{})

	cRepo.On("FindByID", mock.Anything, int64(9)).Return(model.Coupon{}, repo.ErrNotFound)

	_, err := uc.UpdateActive(context.Background(), 1, 9, false)
	assertErrContains(t, err, "coupon not found")
}

func TestCouponUsecase_UpdateActive_WritesAuditWithBeforeAfter(t *testing.T) {
	cRepo := new(CouponRepoMock)
	audit := &fakeAuditRepo{}
	uc := usecase.NewCouponUsecase(cRepo, audit)

	cRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Coupon{ID: 5, Active: true}, nil)
	cRepo.On("UpdateActive", mock.Anything, int64(5), false).Return(model.Coupon{ID: 5, Active: false}, nil)

	c, err := uc.UpdateActive(context.Background(), 99, 5, false)
	assert.NoError(t, err)
	assert.False(t, c.Active)

	if assert.Len(t, audit.logs, 1) {
		l := audit.logs[0]
		assert.Equal(t, model.AuditActionToggleCoupon, l.Action)
		assert.Equal(t, int64(99), l.ActorUserID)
		assert.Equal(t, `{"active":true}`, l.BeforeJSON)
		assert.Equal(t, `{"active":false}`, l.AfterJSON)
	}

	cRepo.AssertExpectations(t)
}

func TestCouponUsecase_Delete_NotFound(t *testing.T) {
	cRepo := new(CouponRepoMock)
	uc := usecase.NewCouponUsecase(cRepo, &fakeAuditRepo{})

	cRepo.On("Delete", mock.Anything, int64(9)).Return(repo.ErrNotFound)

	err := uc.Delete(context.Background(), 9)
	assertErrContains(t, err, "coupon not found")
}
