package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dividend_dashboard/internal/app/di"
	"dividend_dashboard/internal/app/router"
	"dividend_dashboard/internal/config"
	"dividend_dashboard/internal/feature/dividends/domain/entity"
	dividendshandler "dividend_dashboard/internal/feature/dividends/transport/handler"
	"dividend_dashboard/internal/feature/dividends/usecase"
	"dividend_dashboard/internal/platform/cache"
	"dividend_dashboard/internal/platform/http/handler"
	"dividend_dashboard/internal/platform/logger"
	infraredis "dividend_dashboard/internal/platform/redis"
	"dividend_dashboard/internal/platform/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.Load(os.Getenv("DASHBOARD_CONFIG"))
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("[FATAL] init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	// Source
	src, err := di.NewDividendSource(cfg)
	if err != nil {
		zap.L().Fatal("failed to init dividend source", zap.String("source", cfg.Source), zap.Error(err))
	}
	defer func() {
		if err := src.Close(); err != nil {
			zap.L().Error("failed to close dividend source", zap.Error(err))
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if cfg.RedisEnabled() {
		if tmp, err := infraredis.NewRedisClient(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB); err != nil {
			zap.L().Warn("Redis unavailable. Running without shared cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					zap.L().Error("failed to close Redis client", zap.Error(err))
				}
			}()
		}
	}

	// Redisキャッシュでラップ
	cachedSrc, shared := di.NewCachedSource(rdb, cfg.Redis, src)

	// Usecase
	dashboardUC := usecase.NewDashboardUsecase(cachedSrc, cache.NewMemo[[]entity.Dividend]())

	// Handler
	dashboardH := dividendshandler.NewDashboardHandler(dashboardUC)
	healthH := handler.NewHealthHandler(di.NewChecks(src, rdb))

	// ルータ生成
	r := router.NewRouter(dashboardH, healthH)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, dashboardUC, shared)
	if err := sched.Register(cfg.Refresh.Cron); err != nil {
		zap.L().Fatal("failed to register refresh task", zap.Error(err))
	}
	sched.Start()
	if cfg.Refresh.OnStart {
		go sched.RefreshNow()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.L().Info("dividend dashboard listening", zap.String("addr", cfg.Server.Addr), zap.String("source", cfg.Source))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zap.L().Info("shutdown signal received, stopping...")
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("graceful shutdown failed", zap.Error(err))
	}
	zap.L().Info("dividend dashboard stopped")
}
