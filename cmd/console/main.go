package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"user-admin-console/internal/console"
	"user-admin-console/internal/core/config"
	"user-admin-console/internal/core/logger"
)

func main() {
	_ = godotenv.Load()

	// 全局参数放在子命令之前：console --api-url http://... list --page 2
	fs := pflag.NewFlagSet("console", pflag.ExitOnError)
	fs.SetInterspersed(false)
	cfgPath := fs.String("config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	fs.String("api-url", "", "users API base url")
	fs.String("token", "", "static bearer token")
	fs.Int("timeout", 0, "per request timeout in seconds")
	fs.String("log-level", "", "debug | info | warn | error")
	fs.String("push-url", "", "Pushgateway url for client metrics")
	_ = fs.Parse(os.Args[1:])

	cfg := config.Load(*cfgPath, fs)
	// 日志走 stderr，stdout 留给命令输出
	log, cleanup := logger.FromConfig(cfg.Log, os.Stderr)
	defer cleanup()

	users, err := console.NewUsersClient(cfg, log)
	if err != nil {
		log.Fatal("users client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &console.App{Users: users, In: os.Stdin, Out: os.Stdout, Log: log, PageSize: cfg.API.PageSize}
	err = app.Run(ctx, fs.Args())
	if cfg.API.PushURL != "" {
		// 命令失败也推送，便于看到错误请求
		if perr := console.PushMetrics(context.Background(), cfg.API.PushURL); perr != nil {
			log.Warn("client metrics not pushed", zap.Error(perr))
		}
	}
	if err != nil {
		if !errors.Is(err, console.ErrUsage) {
			fmt.Fprintln(os.Stderr, "error:", console.Message(err))
		}
		cleanup()
		stop()
		os.Exit(1)
	}
}
