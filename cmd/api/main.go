package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"coupon-api/internal/config"
	"coupon-api/internal/db"
	"coupon-api/internal/email"
	apihttp "coupon-api/internal/http"
	"coupon-api/internal/repository"
	"coupon-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		companyRepo  repository.CompanyRepository
		customerRepo repository.CustomerRepository
		couponRepo   repository.CouponRepository
	)
	if cfg.DatabaseURL != "" {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		companyRepo = repository.NewPgCompanyRepository(pool)
		customerRepo = repository.NewPgCustomerRepository(pool)
		couponRepo = repository.NewPgCouponRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not configured, using in-memory store")
		companyRepo = repository.NewMemoryCompanyRepository()
		customerRepo = repository.NewMemoryCustomerRepository()
		couponRepo = repository.NewMemoryCouponRepository()
	}

	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	var registry service.SessionRegistry = service.NewMemorySessionRegistry(sessionTTL)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory session registry", zap.Error(err))
		} else {
			registry = service.NewRedisSessionRegistry(redisClient, sessionTTL)
		}
		cancel()
	}

	receiptSender := email.NewNoopSender()
	if cfg.SMTPHost != "" {
		smtpSender, err := email.NewSMTPSender(
			cfg.SMTPHost, cfg.SMTPPort,
			cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.SMTPFrom, cfg.SMTPFromName,
			cfg.SMTPTLS,
		)
		if err != nil {
			logger.Fatal("smtp config", zap.Error(err))
		}
		receiptSender = smtpSender
	}

	lifecycle := service.NewCouponLifecycle(logger, couponRepo, customerRepo)
	loginSvc := service.NewLoginService(logger, registry, companyRepo, customerRepo, cfg.AdminEmail, cfg.AdminPassword)
	adminSvc := service.NewAdminService(logger, companyRepo, customerRepo, couponRepo, lifecycle)
	companySvc := service.NewCompanyService(logger, companyRepo, couponRepo, lifecycle)
	customerSvc := service.NewCustomerService(logger, customerRepo, couponRepo, lifecycle, receiptSender)

	sweeper := service.NewExpirationSweeper(logger, couponRepo, lifecycle,
		time.Duration(cfg.SweepIntervalSeconds)*time.Second)
	sweeper.Start()
	defer sweeper.Stop()

	loginHandler := apihttp.NewLoginHandler(logger, loginSvc)
	adminHandler := apihttp.NewAdminHandler(logger, adminSvc)
	companyHandler := apihttp.NewCompanyHandler(logger, companySvc)
	customerHandler := apihttp.NewCustomerHandler(logger, customerSvc)
	router := apihttp.NewRouter(logger, registry, loginHandler, adminHandler, companyHandler, customerHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
}
