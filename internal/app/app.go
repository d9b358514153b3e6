package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"bookmarkd/internal/auth"
	"bookmarkd/internal/bookmarks"
	"bookmarkd/internal/config"
	"bookmarkd/internal/httpserver"
	"bookmarkd/internal/httpserver/deps"
	"bookmarkd/internal/logger"
	"bookmarkd/internal/realtime"
	"bookmarkd/internal/redis"
	"bookmarkd/internal/scheduler"
	"bookmarkd/internal/store"
	"bookmarkd/internal/store/memkv"
	"bookmarkd/internal/store/rediskv"
	"bookmarkd/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sweeper     *scheduler.Sweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	var (
		kv          store.KV
		broker      *realtime.Broker
		redisClient *goredis.Client
	)

	switch cfg.Storage {
	case "redis":
		// Fail fast if Redis is unavailable
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		kv = rediskv.New(client)
		broker = realtime.NewBroker(client, loggerClient)
		loggerClient.Info("Redis storage initialized")
	case "memory":
		// Dev mode: nothing survives a restart and there is no fan-out
		// between processes, so the events route stays disabled.
		kv = memkv.New()
		loggerClient.Warn("memory storage selected, bookmarks will not persist")
	}

	verifier := newVerifier(cfg, loggerClient)
	service := bookmarks.NewService(kv, publisherOrNil(broker), loggerClient)
	sweeper := scheduler.NewSweeper(kv, loggerClient, cfg.SweepInterval)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		Verifier:       verifier,
		Bookmarks:      service,
		Broker:         broker,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		RateBurst:      cfg.RateBurst,
		RatePerMin:     cfg.RatePerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sweeper:     sweeper,
	}
}

func newVerifier(cfg *config.Config, log logger.Logger) auth.Verifier {
	switch cfg.AuthProvider {
	case "file":
		v, err := auth.LoadTokenFile(cfg.TokenFile)
		if err != nil {
			log.Errorf("Failed to load token file: %v", err)
			os.Exit(1)
		}
		log.Info("static token file auth enabled",
			logger.String("file", cfg.TokenFile))
		return v
	default:
		log.Info("userinfo auth enabled",
			logger.String("endpoint", cfg.UserinfoURL))
		return auth.NewUserinfoVerifier(cfg.UserinfoURL, cfg.AuthTimeout)
	}
}

// publisherOrNil keeps the service's nil check meaningful: a nil *Broker
// wrapped in a non-nil interface would dodge it.
func publisherOrNil(b *realtime.Broker) bookmarks.Publisher {
	if b == nil {
		return nil
	}
	return b
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting bookmarkd v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bookmarkd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sweeper: %w", err)
	}
	a.logger.Info("sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ bookmarkd stopped cleanly")
	return nil
}
