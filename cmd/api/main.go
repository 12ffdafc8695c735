package main

import (
	"context"
	"fmt"
	stdlog "log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"team-directory/internal/core/auth"
	"team-directory/internal/core/cache"
	"team-directory/internal/core/clock"
	"team-directory/internal/core/config"
	"team-directory/internal/core/logger"
	"team-directory/internal/core/retry"
	"team-directory/internal/core/server"
	"team-directory/internal/domain"
	"team-directory/internal/feature/user"
	"team-directory/internal/repo"
	"team-directory/internal/service"
	"team-directory/internal/transport/http/handler"
	"team-directory/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup, err := logger.New(logger.Options{
		Level:    cfg.Log.Level,
		JSON:     cfg.Log.JSON,
		Service:  cfg.App.Name,
		Env:      cfg.App.Env,
		Sampling: logger.Sampling{Initial: cfg.Log.Sampling.Initial, Thereafter: cfg.Log.Sampling.Thereafter},
		File: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("team directory exited with error", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	log.Info("team directory stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	clk := clock.Real{}

	// 目录数据（进程内）
	seed, err := user.LoadSeed(cfg.Directory.SeedFile)
	if err != nil {
		return err
	}
	var store domain.UserRepository = repo.NewUserRepo(seed)
	if fr := cfg.Directory.FaultRate; fr > 0 {
		store = repo.NewFlakyRepo(store, fr, rand.Float64)
		log.Warn("fault injection enabled", zap.Float64("rate", fr))
	}
	log.Info("directory loaded", zap.Int("users", len(seed)))

	// 重试 + 业务
	ex := retry.New(
		retry.WithConfig(retry.Config{
			MaxRetries:        cfg.Directory.Retry.MaxRetries,
			InitialDelay:      cfg.Directory.Retry.InitialDelay(),
			BackoffMultiplier: cfg.Directory.Retry.BackoffMultiplier,
		}),
		retry.WithClock(clk),
		retry.WithLogger(log.Named("retry")),
	)
	lo, hi := cfg.Directory.LatencyRange()
	svc := service.NewUserService(store, ex,
		service.WithClock(clk),
		service.WithLatency(service.Latency{Min: lo, Max: hi}),
		service.WithLogger(log.Named("directory")),
	)

	// 会话
	revoker, closeRevoker, err := newRevoker(ctx, cfg, clk, log)
	if err != nil {
		return err
	}
	defer closeRevoker()
	creds, err := auth.DefaultCredentials()
	if err != nil {
		return fmt.Errorf("hash credentials: %w", err)
	}
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
	}
	sessions := auth.NewSessions(jwter, creds, revoker,
		auth.WithSessionClock(clk), auth.WithSessionLogger(log.Named("auth")))

	// 路由
	reg := router.NewRegistry(
		handler.NewAuthHandler(sessions, clk),
		handler.NewUserHandler(svc),
	)
	h := cfg.App.HTTP
	lim := router.Limits{
		RatePerIP:      rate.Limit(h.RateRPS),
		Burst:          h.RateBurst,
		MaxInFlight:    h.MaxInFlight,
		MaxBodyBytes:   h.MaxBodyBytes,
		RequestTimeout: time.Duration(h.RequestTimeoutSec) * time.Second,
	}
	rt := time.Duration(h.ReadTimeoutSec) * time.Second
	wt := time.Duration(h.WriteTimeoutSec) * time.Second
	it := time.Duration(h.IdleTimeoutSec) * time.Second

	apiAddr := server.Addr(h.Host, h.Port)
	apiSrv := server.BuildServer(apiAddr, router.NewAPIEngine(log, reg, sessions, lim), rt, wt, it, log)
	adminAddr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	adminSrv := server.BuildServer(adminAddr, router.NewAdminEngine(log, reg, sessions, lim), rt, wt, it, log)

	// 启动日志
	log.Info("team directory starting",
		zap.String("api", baseURL(h.Host, h.Port)+"/api/v1"),
		zap.String("admin", baseURL(cfg.App.Admin.Host, cfg.App.Admin.Port)+"/admin/v1"),
		zap.String("health", baseURL(h.Host, h.Port)+"/health"),
	)

	// 两个监听共用同一份目录；任一失败则整体退出
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.StartHTTP(gctx, apiSrv, log.Named("api"), 10*time.Second) })
	g.Go(func() error { return server.StartHTTP(gctx, adminSrv, log.Named("admin"), 10*time.Second) })
	return g.Wait()
}

// newRevoker 配置了 redis 就用 redis，否则退回进程内
func newRevoker(ctx context.Context, cfg *config.Config, clk clock.Clock, log *zap.Logger) (auth.Revoker, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info("token revocation: in-memory")
		return cache.NewMemory(clk), func() {}, nil
	}
	rdb := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
	}
	log.Info("token revocation: redis", zap.String("addr", cfg.Redis.Addr))
	return rdb, func() { _ = rdb.Close() }, nil
}

func baseURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return "http://" + host + ":" + fmt.Sprint(port)
}
