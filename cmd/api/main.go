package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-referral-api/internal/config"
	"github.com/go-referral-api/internal/infrastructure/awsx"
	"github.com/go-referral-api/internal/infrastructure/dynamo"
	"github.com/go-referral-api/internal/infrastructure/google"
	jwtinfra "github.com/go-referral-api/internal/infrastructure/jwt"
	"github.com/go-referral-api/internal/infrastructure/phonepe"
	razorpayinfra "github.com/go-referral-api/internal/infrastructure/razorpay"
	"github.com/go-referral-api/internal/infrastructure/realtime"
	s3infra "github.com/go-referral-api/internal/infrastructure/s3"
	"github.com/go-referral-api/internal/infrastructure/smtp"
	"github.com/go-referral-api/internal/infrastructure/sns"
	"github.com/go-referral-api/internal/pkg/logx"
	transporthttp "github.com/go-referral-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logx.New(logx.Config{
		Service: "referral-api",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if envErr != nil {
		logger.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	awsCfg, err := awsx.Load(ctx, cfg, "")
	if err != nil {
		logger.Error("aws config", "err", err)
		os.Exit(1)
	}
	endpoint := awsx.Endpoint(cfg)

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, endpoint)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		logger.Error("jwt provider", "err", err)
		os.Exit(1)
	}

	s3Store := s3infra.NewStore(s3infra.NewClient(awsCfg, endpoint), cfg.S3BucketName)

	mailer := smtp.NewMailer(smtp.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})

	tables := cfg.DynamoTables
	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, tables.Users),
		OtpRepo:          dynamo.NewOtpRepo(dynamoClient, tables.Otps),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, tables.Sessions),
		ReferralRepo:     dynamo.NewReferralRepo(dynamoClient, tables.Referrals, tables.ReferralEntries),
		RegistrationRepo: dynamo.NewRegistrationRepo(dynamoClient, tables),
		WalletRepo:       dynamo.NewWalletRepo(dynamoClient, tables.Wallets, tables.WalletTransactions),
		TopUpRepo:        dynamo.NewTopUpRepo(dynamoClient, tables.TopUps, tables.Wallets, tables.WalletTransactions),
		ProductRepo:      dynamo.NewProductRepo(dynamoClient, tables.Products),
		OrderRepo:        dynamo.NewOrderRepo(dynamoClient, tables.Orders),
		SettingRepo:      dynamo.NewSettingRepo(dynamoClient, tables.Settings),
		Objects:          s3Store,
		JWTProvider:      jwtProvider,
		Mailer:           mailer,
		Razorpay:         razorpayinfra.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		PhonePe: phonepe.NewClient(phonepe.Config{
			MerchantID:  cfg.PhonePeMerchantID,
			SaltKey:     cfg.PhonePeSaltKey,
			SaltIndex:   cfg.PhonePeSaltIndex,
			Env:         cfg.PhonePeEnv,
			RedirectURL: cfg.FrontendURL + "/wallet",
			CallbackURL: cfg.BaseURL + "/api/wallet/phonepe/callback",
		}),
	}

	// SNS SMS sender (optional).
	if cfg.SMSEnabled {
		if snsCfg, err := awsx.Load(ctx, cfg, cfg.SNSRegion); err == nil {
			deps.SMSSender = sns.NewSender(snsCfg, endpoint)
		} else {
			logger.Warn("sns sender not available", "err", err)
		}
	}

	if cfg.GoogleClientID != "" {
		deps.Google = google.NewVerifier(cfg.GoogleClientID)
	}

	if cfg.RedisAddr != "" {
		b, err := realtime.NewRedisBroadcaster(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Error("redis broadcaster", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		deps.Broadcaster = b
	} else {
		deps.Broadcaster = realtime.NewHub()
	}

	router := transporthttp.NewRouter(cfg, deps, logger)

	// WriteTimeout is lifted per request by the realtime stream.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	// Closing the broadcaster first ends open event streams so Shutdown can drain.
	if err := deps.Broadcaster.Close(); err != nil {
		logger.Warn("close broadcaster", "err", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
