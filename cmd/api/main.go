package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"app/internal/cache"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/gateway"
	"app/internal/infra/mail"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/storage"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"
	"app/pkg/metrics"
)

func main() {
	//.envはローカル開発用。無くても動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Collection{},
		&model.Product{},
		&model.ProductPhoto{},
		&model.Coupon{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	collectionRepo := infraRepo.NewCollectionGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス。未設定なら無しで動かす
	var productCache usecase.ProductCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		productCache = cache.NewRedisProductCache(rdb, 5*time.Minute)
	}

	var fileStorage usecase.FileStorage
	if cfg.S3Bucket != "" {
		s3Storage, err := storage.NewS3Storage(context.Background(), cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
		fileStorage = s3Storage
	}

	var mailer auth.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SenderEmail)
	} else {
		mailer = logMailer{}
	}

	paymentGateway := gateway.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpaySecret)

	//usecaseに渡す部品
	clock := auth.NewClock()
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	serverMetrics := metrics.NewServerMetrics("api")
	checkoutMetrics := metrics.NewCheckoutMetrics()

	//Usecase生成
	signupUC := auth.NewSignupUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	logoutUC := auth.NewLogoutUsecase(userRepo)
	refreshUC := auth.NewRefreshUsecase(userRepo, issuer, clock)
	changePasswordUC := auth.NewChangePasswordUsecase(userRepo, hasher, verifier)
	forgotPasswordUC := auth.NewForgotPasswordUsecase(userRepo, mailer, clock, cfg.PasswordResetURL)
	resetPasswordUC := auth.NewResetPasswordUsecase(userRepo, hasher, clock)
	profileUC := auth.NewProfileUsecase(userRepo)

	productUC := usecase.NewProductUsecase(productRepo, collectionRepo, fileStorage, productCache)
	collectionUC := usecase.NewCollectionUsecase(collectionRepo)
	couponUC := usecase.NewCouponUsecase(couponRepo, auditRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, orderRepo, orderItemRepo, productRepo, couponRepo, inventoryRepo, paymentGateway, checkoutMetrics)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, orderItemRepo, auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(signupUC, loginUC, logoutUC, refreshUC, changePasswordUC, forgotPasswordUC, resetPasswordUC, profileUC),
		Product:    handler.NewProductHandler(productUC),
		Collection: handler.NewCollectionHandler(collectionUC),
		Coupon:     handler.NewCouponHandler(couponUC),
		Order:      handler.NewOrderHandler(checkoutUC, orderUC),
	}

	//Server起動
	e := server.New(cfg, handlers, serverMetrics)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// SMTP未設定の開発環境では本文をログに出すだけ
type logMailer struct{}

func (logMailer) Send(to string, subject string, body string) error {
	log.Printf("mail (dev): to=%s subject=%q\n%s", to, subject, body)
	return nil
}
