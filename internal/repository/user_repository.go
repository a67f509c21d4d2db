package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user model.User) (int64, error)
	FindByID(ctx context.Context, userID int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, user model.User) error

	// refreshTokenは上書き保存（単一セッション）。空文字でログアウト
	UpdateRefreshToken(ctx context.Context, userID int64, refreshToken string) error

	// 再設定トークンの保存／クリア
	UpdateForgotPasswordToken(ctx context.Context, userID int64, tokenHash string, expiry *time.Time) error
	// 有効期限内のトークンハッシュで検索
	FindByForgotPasswordToken(ctx context.Context, tokenHash string, now time.Time) (model.User, error)
}
