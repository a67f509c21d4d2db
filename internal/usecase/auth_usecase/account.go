package auth

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/usecase"
)

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

type ChangePasswordUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
}

func NewChangePasswordUsecase(userRepo repository.UserRepository, hasher PasswordHasher, verifier PasswordVerifier) *ChangePasswordUsecase {
	return &ChangePasswordUsecase{userRepo: userRepo, hasher: hasher, verifier: verifier}
}

// ログイン中ユーザーのパスワード変更
func (u *ChangePasswordUsecase) Execute(ctx context.Context, userID int64, in ChangePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "all fields are required")
	}
	if len(in.NewPassword) < 8 {
		return usecase.NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return usecase.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if ok := u.verifier.Verify(in.OldPassword, user.Password); !ok {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid old password")
	}

	hashed, err := u.hasher.Hash(in.NewPassword)
	if err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "failed to hash password")
	}
	user.Password = hashed
	if err := u.userRepo.Update(ctx, user); err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type ProfileUsecase struct {
	userRepo repository.UserRepository
}

func NewProfileUsecase(userRepo repository.UserRepository) *ProfileUsecase {
	return &ProfileUsecase{userRepo: userRepo}
}

func (u *ProfileUsecase) Execute(ctx context.Context, userID int64) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, usecase.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return model.User{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	user.Password = ""
	return user, nil
}
