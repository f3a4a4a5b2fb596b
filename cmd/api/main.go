package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "loan-origination-backend/internal/adapter/http"
	"loan-origination-backend/internal/adapter/middleware"
	"loan-origination-backend/internal/adapter/repository/mysql"
	"loan-origination-backend/internal/config"
	"loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/event"
	"loan-origination-backend/internal/domain/funding"
	"loan-origination-backend/internal/domain/qc"
	"loan-origination-backend/internal/domain/underwriting"
	"loan-origination-backend/internal/domain/verification"
	"loan-origination-backend/internal/infrastructure/cache"
	"loan-origination-backend/internal/infrastructure/db"
	"loan-origination-backend/internal/outbox"
	appUsecase "loan-origination-backend/internal/usecase/application"
	fundUsecase "loan-origination-backend/internal/usecase/funding"
	qcUsecase "loan-origination-backend/internal/usecase/qc"
	uwUsecase "loan-origination-backend/internal/usecase/underwriting"
	"loan-origination-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	zl := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = zl.Sync() }()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid config", zap.Error(err))
	}

	g, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		zl.Fatal("mysql connect failed", zap.Error(err))
	}
	if err := db.Migrate(g,
		&application.Application{},
		&application.StatusHistory{},
		&underwriting.QueueEntry{},
		&underwriting.Decision{},
		&underwriting.DecisionReason{},
		&underwriting.Stipulation{},
		&qc.Review{},
		&verification.Item{},
		&funding.Request{},
		&funding.Disbursement{},
		&funding.EnrollmentVerification{},
		&event.OutboxEvent{},
	); err != nil {
		zl.Fatal("migrate failed", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		zl.Fatal("redis connect failed", zap.Error(err))
	}

	appRepo := mysql.NewApplicationRepository(g)
	uwRepo := mysql.NewUnderwritingRepository(g)
	qcRepo := mysql.NewQCRepository(g)
	fundRepo := mysql.NewFundingRepository(g)
	outboxRepo := mysql.NewOutboxRepository(g)
	txm := mysql.NewGormUoW(g)

	appUC := appUsecase.NewUsecase(appRepo, txm, cfg.UnderwritingDueDays)
	uwUC := uwUsecase.NewUsecase(uwRepo, txm)
	qcUC := qcUsecase.NewUsecase(qcRepo, txm, nil, cfg.QCRequireFullCompletion)
	fundUC := fundUsecase.NewUsecase(fundRepo, appRepo, txm, cfg.FundingAllowQCApproved)

	// outbox dispatcher
	var sink outbox.Sink
	if cfg.OutboxSink == "redis" {
		sink = outbox.NewRedisSink(rdb, cfg.OutboxChannel)
	} else {
		sink = outbox.NewLogSink(zl)
	}
	disp := outbox.NewDispatcher(outboxRepo, sink, zl)
	disp.BatchSize = cfg.OutboxBatchSize
	disp.Interval = cfg.OutboxInterval
	disp.LockTTL = cfg.OutboxLockTTL

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go disp.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idemp := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, zl)
	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Health:       httpadp.NewHandler(),
		Applications: httpadp.NewApplicationHandler(appUC),
		Underwriting: httpadp.NewUnderwritingHandler(uwUC),
		QC:           httpadp.NewQCHandler(qcUC),
		Funding:      httpadp.NewFundingHandler(fundUC),
	}, idemp)

	go func() {
		addr := ":" + cfg.AppPort
		zl.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown error", zap.Error(err))
	}
}
