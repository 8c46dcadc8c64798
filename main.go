package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	intconfig "github.com/ZiyadBin/rain-system/internal/config"
	api "github.com/ZiyadBin/rain-system/internal/http"
	"github.com/ZiyadBin/rain-system/internal/http/handlers"
	"github.com/ZiyadBin/rain-system/internal/http/middleware"
	"github.com/ZiyadBin/rain-system/internal/services"
	"github.com/ZiyadBin/rain-system/internal/store"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

func main() {
	env, err := intconfig.LoadEnv(os.Args[1:])
	if errors.Is(err, intconfig.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := utils.NewLogger(env.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	ctx := context.Background()

	st, db, err := openStore(ctx, env)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", env.StoreDriver), zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	roster, err := services.LoadRoster(env.StaffFile)
	if err != nil {
		logger.Fatal("load staff roster", zap.Error(err))
	}
	auth, err := services.NewAuthService(roster, env.JWTSecret, env.TokenTTL)
	if err != nil {
		logger.Fatal("init auth", zap.Error(err))
	}

	hd := handlers.New(st, services.Matcher{ExemptMissingMobile: env.DuplicateExemptMissingMobile}, auth, env.SnapshotDir)

	var idem middleware.IdempotencyStore
	if env.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: env.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, idempotency keys disabled", zap.String("addr", env.RedisAddr), zap.Error(err))
		} else {
			idem = middleware.RedisIdempotency{Client: rdb}
		}
	}

	var sched gocron.Scheduler
	if env.SnapshotAt != "" {
		sched, err = hd.Snapshot.StartDaily(env.SnapshotAt)
		if err != nil {
			logger.Fatal("schedule snapshot", zap.String("at", env.SnapshotAt), zap.Error(err))
		}
	}

	r := api.NewRouter(env, hd, idem)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", env.AppAddr), zap.String("store", env.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

// openStore returns the configured store. db is non-nil only for the mysql driver.
func openStore(ctx context.Context, env intconfig.Env) (store.Store, *sql.DB, error) {
	switch env.StoreDriver {
	case intconfig.StoreMySQL:
		db, err := intconfig.ConnectDB(ctx, env.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		st, err := store.NewMySQLStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return st, db, nil
	default:
		st, err := store.NewFileStore(env.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return st, nil, nil
	}
}
