package auth

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/usecase"
)

// 会員登録の入力
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type SignupUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	clock    Clock
}

// DI
func NewSignupUsecase(userRepo repository.UserRepository, hasher PasswordHasher, clock Clock) *SignupUsecase {
	return &SignupUsecase{userRepo: userRepo, hasher: hasher, clock: clock}
}

// 会員登録を実行する
func (u *SignupUsecase) Execute(ctx context.Context, in SignupInput) (model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" || email == "" || in.Password == "" {
		return model.User{}, usecase.NewHTTPError(http.StatusBadRequest, "all fields are required")
	}
	if len(name) > 50 {
		return model.User{}, usecase.NewHTTPError(http.StatusBadRequest, "name must be less than 50 chars")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid email format")
	}
	if len(in.Password) < 8 {
		return model.User{}, usecase.NewHTTPError(http.StatusBadRequest, "password must be at least 8 chars")
	}

	// 同じemailは登録させない
	_, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return model.User{}, usecase.NewHTTPError(http.StatusBadRequest, "user already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, usecase.NewHTTPError(http.StatusInternalServerError, "failed to hash password")
	}

	now := u.clock.Now()
	userID, err := u.userRepo.Create(ctx, model.User{
		Name:      name,
		Email:     email,
		Password:  hashed,
		Role:      model.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// 一意制約と同時登録の競合
		return model.User{}, usecase.NewHTTPError(http.StatusBadRequest, "user already exists")
	}
	if err != nil {
		return model.User{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	created, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//passwordは返さない
	created.Password = ""
	return created, nil
}
