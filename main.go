package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-catan/config"
	"go-catan/controller"
	"go-catan/entities"
	"go-catan/repository"
	"go-catan/router"
	"go-catan/service"
	"go-catan/utils"
	"go-catan/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	path := flag.String("config", os.Getenv("CATAN_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Server.Debug)
	if err != nil {
		log.Fatalf("创建日志失败: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("打开存储失败", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer store.Close()

	hub := ws.NewHub(logger)
	opts := service.Options{
		Logger:         logger,
		Publisher:      hub,
		BankTradeRatio: cfg.Game.BankTradeRatio,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		AccessTTL:      cfg.Auth.AccessTTL,
		CacheTTL:       cfg.Redis.HexTTL,
	}
	if cfg.Redis.Enabled {
		rds, err := repository.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
		if err != nil {
			logger.Fatal("连接 Redis 失败", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rds.Close()
		// 事件经 Redis 频道转发，每个进程的 hub 都能收到
		opts.Publisher = rds
		opts.Cache = rds
		go func() {
			err := rds.Subscribe(ctx, func(ev entities.GameEvent) {
				_ = hub.Publish(ctx, ev)
			}, func(err error) {
				logger.Warn("跳过无法解析的事件", zap.Error(err))
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Redis 订阅中断", zap.Error(err))
			}
		}()
	}
	game := service.New(store, opts)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	router.InitRouter(r, router.Deps{
		Controller:  controller.New(game, logger, cfg.Server.DebugErrors),
		WS:          ws.NewHandler(hub, game, logger),
		Auth:        game,
		Log:         logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logger.Info("服务启动", zap.String("addr", cfg.Server.Addr), zap.String("storage", cfg.Storage.Driver), zap.Bool("redis", cfg.Redis.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("服务异常退出", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("服务关闭中")
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("关闭服务失败", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	seed := repository.DefaultSeed(cfg.Game.MaxPlayers, cfg.Game.BankSupply)
	if cfg.Storage.Driver != "mysql" {
		return repository.NewMemoryStore(seed), nil
	}
	db, err := repository.OpenMySQL(cfg.Storage.MySQLDSN, cfg.Storage.LockWaitTimeout)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, seed); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
