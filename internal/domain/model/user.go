package model

import "time"

type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)

type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(50);not null" json:"name"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcryptハッシュ。外には出さない
	Role     Role   `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`

	// 単一セッション方式：ログインごとに上書きする
	RefreshToken string `gorm:"type:varchar(512)" json:"-"`

	// パスワード再設定（sha256ハッシュを保存する）
	ForgotPasswordToken  string     `gorm:"type:varchar(64)" json:"-"`
	ForgotPasswordExpiry *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
