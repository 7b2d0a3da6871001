package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"user-admin-console/internal/core/auth"
	"user-admin-console/internal/core/config"
	"user-admin-console/internal/core/database"
	"user-admin-console/internal/core/logger"
	"user-admin-console/internal/core/server"
	"user-admin-console/internal/domain"
	"user-admin-console/internal/repo"
	"user-admin-console/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("mockapi", pflag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	fs.Int("port", 0, "listen port")
	fs.String("log-level", "", "debug | info | warn | error")
	fs.Bool("log-json", false, "json logs")
	fs.String("db-dsn", "", "store dsn (default in-memory sqlite)")
	_ = fs.Parse(os.Args[1:])

	cfg := config.Load(*cfgPath, fs)
	log, cleanup := logger.FromConfig(cfg.Log, nil)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("open db", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal("auto migrate", zap.Error(err))
		}
	}

	store := repo.NewUserRepo(db)
	if cfg.Mock.Seed {
		// 持久库重启后样例已在，冲突即跳过
		if err := store.SeedSamples(context.Background()); err != nil && !errors.Is(err, domain.ErrConflict) {
			log.Fatal("seed sample users", zap.Error(err))
		}
		log.Info("sample users loaded", zap.String("password", repo.SamplePassword))
	}

	deps := router.Deps{Users: store, Auth: store}
	if cfg.Mock.RequireAuth {
		if cfg.JWT.Secret == "" {
			log.Fatal("mock.requireAuth needs jwt.secret")
		}
		deps.JWT = &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()}
	}
	r := router.NewAdminEngine(log, deps)

	addr := server.Addr(cfg.Mock.Host, cfg.Mock.Port)
	srv := server.BuildServer(addr, r,
		time.Duration(cfg.Mock.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.Mock.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.Mock.IdleTimeoutSec)*time.Second,
	)

	baseURL := server.BaseURL(cfg.Mock.Host, cfg.Mock.Port)
	log.Info("mock users api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("users", baseURL+"/users"),
		zap.Bool("auth", deps.JWT != nil),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// 优雅关闭
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("mock users api FAILED", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	log.Info("mock users api stopped gracefully")
}
