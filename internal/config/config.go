package config

import (
	"fmt"
	"os"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port       string // サーバーポート（8000）
	CORSOrigin string // フロントURL（CORS用）

	AccessTokenSecret string        // アクセストークン署名シークレット
	AccessTokenTTL    time.Duration // デフォルト1日
	RefreshTokenSecret string       // リフレッシュトークン署名シークレット
	RefreshTokenTTL   time.Duration // デフォルト10日

	RazorpayKeyID  string // Razorpay APIキー
	RazorpaySecret string // Razorpayシークレット

	// パスワード再設定メールに載せるURLのベース
	PasswordResetURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	S3Bucket string // 空なら画像アップロードは無効
	S3Region string

	RedisAddr     string // 空ならキャッシュは無効
	RedisPassword string
	RedisDB       int
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:       getenv("PORT", "8000"),
		CORSOrigin: getenv("CORS_ORIGIN", "*"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:     getenvDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		RefreshTokenTTL:    getenvDuration("REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),

		RazorpayKeyID:  os.Getenv("RAZORPAY_KEY_ID"),
		RazorpaySecret: os.Getenv("RAZORPAY_SECRET"),

		PasswordResetURL: getenv("PASSWORD_RESET_URL", "http://localhost:3000/reset-password"),

		SMTPHost:     os.Getenv("SMTP_MAIL_HOST"),
		SMTPPort:     getenvInt("SMTP_MAIL_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_MAIL_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_MAIL_PASSWORD"),
		SenderEmail:  os.Getenv("SMTP_SENDER_EMAIL"),

		S3Bucket: os.Getenv("S3_BUCKET_NAME"),
		S3Region: getenv("S3_REGION", "ap-south-1"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
	}

	//必須チェック
	if cfg.AccessTokenSecret == "" {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if cfg.RefreshTokenSecret == "" {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if cfg.RazorpayKeyID == "" {
		return Config{}, fmt.Errorf("RAZORPAY_KEY_ID is required")
	}
	if cfg.RazorpaySecret == "" {
		return Config{}, fmt.Errorf("RAZORPAY_SECRET is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var i int
	if _, err := fmt.Sscanf(v, "%d", &i); err != nil {
		return def
	}
	return i
}

// "24h" / "20m" のようなGoのduration表記
func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
