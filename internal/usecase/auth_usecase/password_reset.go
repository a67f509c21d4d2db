package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/repository"
	"app/internal/usecase"
)

const forgotPasswordTokenTTL = 20 * time.Minute

type ForgotPasswordUsecase struct {
	userRepo repository.UserRepository
	mailer   Mailer
	clock    Clock
	// メール本文に埋めるフロント側のURL
	resetURLBase string
}

func NewForgotPasswordUsecase(
	userRepo repository.UserRepository,
	mailer Mailer,
	clock Clock,
	resetURLBase string,
) *ForgotPasswordUsecase {
	return &ForgotPasswordUsecase{
		userRepo:     userRepo,
		mailer:       mailer,
		clock:        clock,
		resetURLBase: resetURLBase,
	}
}

// 再設定トークンを発行してメールで送る。DBにはハッシュだけ残す
func (u *ForgotPasswordUsecase) Execute(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return usecase.NewHTTPError(http.StatusNotFound, "user does not exist")
	}
	if err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "failed to generate token")
	}

	expiry := u.clock.Now().Add(forgotPasswordTokenTTL)
	if err := u.userRepo.UpdateForgotPasswordToken(ctx, user.ID, hashToken(token), &expiry); err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resetURL := fmt.Sprintf("%s/%s", strings.TrimRight(u.resetURLBase, "/"), token)
	body := fmt.Sprintf("Please click on the following link to reset your password: %s\nThis link expires in 20 minutes.", resetURL)
	if err := u.mailer.Send(user.Email, "Reset your password", body); err != nil {
		// 送れなかったトークンは残さない
		if clearErr := u.userRepo.UpdateForgotPasswordToken(ctx, user.ID, "", nil); clearErr != nil {
			return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return usecase.NewHTTPError(http.StatusInternalServerError, "failed to send email")
	}
	return nil
}

type ResetPasswordInput struct {
	Token           string
	Password        string
	ConfirmPassword string
}

type ResetPasswordUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	clock    Clock
}

func NewResetPasswordUsecase(userRepo repository.UserRepository, hasher PasswordHasher, clock Clock) *ResetPasswordUsecase {
	return &ResetPasswordUsecase{userRepo: userRepo, hasher: hasher, clock: clock}
}

// トークンを検証してパスワードを付け替える。既存セッションも無効化する
func (u *ResetPasswordUsecase) Execute(ctx context.Context, in ResetPasswordInput) error {
	if in.Token == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "token is required")
	}
	if in.Password == "" || in.ConfirmPassword == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "all fields are required")
	}
	if in.Password != in.ConfirmPassword {
		return usecase.NewHTTPError(http.StatusBadRequest, "passwords do not match")
	}
	if len(in.Password) < 8 {
		return usecase.NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	user, err := u.userRepo.FindByForgotPasswordToken(ctx, hashToken(in.Token), u.clock.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return usecase.NewHTTPError(http.StatusBadRequest, "token is invalid or expired")
	}
	if err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "failed to hash password")
	}

	user.Password = hashed
	// 再設定後は古いrefreshTokenでの継続を許さない
	user.RefreshToken = ""
	if err := u.userRepo.Update(ctx, user); err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.userRepo.UpdateForgotPasswordToken(ctx, user.ID, "", nil); err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
