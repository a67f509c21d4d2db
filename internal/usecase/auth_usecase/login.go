package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/usecase"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email    string
	Password string
}

// handlerがJSONにして返す
type LoginOutput struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
}

type LoginUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	issuer   TokenIssuer
	clock    Clock
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo: userRepo,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusBadRequest, "all fields are required")
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusNotFound, "user does not exist")
	}
	if err != nil {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.Password); !ok {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid user credentials")
	}

	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.IssueAccess(user.ID, user.Role, now)
	if err != nil {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	refreshToken, _, err := u.issuer.IssueRefresh(user.ID, now)
	if err != nil {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	// 単一セッション：前のrefreshTokenは上書きで無効になる
	if err := u.userRepo.UpdateRefreshToken(ctx, user.ID, hashToken(refreshToken)); err != nil {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.Password = ""
	return LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
	}, nil
}

type LogoutUsecase struct {
	userRepo repository.UserRepository
}

func NewLogoutUsecase(userRepo repository.UserRepository) *LogoutUsecase {
	return &LogoutUsecase{userRepo: userRepo}
}

// refreshTokenを消してセッションを終える
func (u *LogoutUsecase) Execute(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.userRepo.UpdateRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return usecase.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type RefreshUsecase struct {
	userRepo repository.UserRepository
	issuer   TokenIssuer
	clock    Clock
}

func NewRefreshUsecase(userRepo repository.UserRepository, issuer TokenIssuer, clock Clock) *RefreshUsecase {
	return &RefreshUsecase{userRepo: userRepo, issuer: issuer, clock: clock}
}

// リフレッシュトークンを検証し、アクセス／リフレッシュ両方を発行し直す。
// 保存済みのハッシュと一致しないものは使い回しとみなして拒否する
func (u *RefreshUsecase) Execute(ctx context.Context, refreshToken string) (LoginOutput, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	userID, err := u.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if user.RefreshToken == "" || user.RefreshToken != hashToken(refreshToken) {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusUnauthorized, "refresh token is expired or used")
	}

	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.IssueAccess(user.ID, user.Role, now)
	if err != nil {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	newRefresh, _, err := u.issuer.IssueRefresh(user.ID, now)
	if err != nil {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	//ローテーション
	if err := u.userRepo.UpdateRefreshToken(ctx, user.ID, hashToken(newRefresh)); err != nil {
		return LoginOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.Password = ""
	return LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
	}, nil
}
