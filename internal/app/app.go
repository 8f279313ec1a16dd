package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/catalog"
	"github.com/MrSnakeDoc/bindery/internal/config"
	"github.com/MrSnakeDoc/bindery/internal/httpserver"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/MrSnakeDoc/bindery/internal/redis"
	"github.com/MrSnakeDoc/bindery/internal/retry"
	"github.com/MrSnakeDoc/bindery/internal/seed"
	"github.com/MrSnakeDoc/bindery/internal/store"
	"github.com/MrSnakeDoc/bindery/internal/store/memory"
	"github.com/MrSnakeDoc/bindery/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/bindery/internal/store/redis"
	"github.com/MrSnakeDoc/bindery/internal/upload"
	"github.com/MrSnakeDoc/bindery/internal/validation"
	"github.com/MrSnakeDoc/bindery/internal/version"
)

// uploadTimeout bounds one request to the image host.
const uploadTimeout = 60 * time.Second

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  store.Store
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Stores and uploaders are dialed with the startup context; serving
	// requests uses their own.
	ctx := context.Background()

	st, err := openStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("store initialized", logger.String("backend", cfg.Store))

	up, err := newUploader(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	loggerClient.Info("uploader initialized", logger.String("backend", up.Name()))

	if cfg.SeedFile != "" {
		n, err := seed.Import(ctx, st, cfg.SeedFile, loggerClient)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		if n > 0 {
			loggerClient.Info("catalog seeded", logger.String("file", cfg.SeedFile), logger.Int("entries", n))
		}
	}

	svc := catalog.NewService(st, up, validation.New(), loggerClient)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		Catalog:        svc,
		Store:          st,
		StoreName:      cfg.Store,
		Uploader:       up,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, loggerClient, d),
		store:  st,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, error) {
	switch cfg.Store {
	case config.StoreRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			RedisDB:      cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			Retry: retry.Policy{
				ConnectTimeout: cfg.RedisConnectTimeout,
				RetryInterval:  cfg.RedisRetryInterval,
				MaxWait:        cfg.RedisMaxWait,
				PingTimeout:    cfg.RedisPingTimeout,
				WarnThreshold:  cfg.RedisWarnThreshold,
			},
		}, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewStore(client, log), nil

	case config.StorePostgres:
		log.Info("Connecting to Postgres")
		st, err := postgres.Open(ctx, cfg.PostgresDSN, retry.DefaultPolicy, log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return st, nil

	default:
		log.Warn("using the in-memory store, entries are lost on restart")
		return memory.New(), nil
	}
}

func newUploader(ctx context.Context, cfg *config.Config) (upload.Uploader, error) {
	if cfg.Uploader == config.UploaderMinIO {
		up, err := upload.NewMinIO(ctx, upload.MinIOConfig{
			Endpoint:      cfg.MinIOEndpoint,
			AccessKey:     cfg.MinIOAccessKey,
			SecretKey:     cfg.MinIOSecretKey,
			Bucket:        cfg.MinIOBucket,
			UseSSL:        cfg.MinIOUseSSL,
			PublicBaseURL: cfg.MinIOPublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init minio uploader: %w", err)
		}
		return up, nil
	}

	up, err := upload.NewCloudinary(upload.CloudinaryConfig{
		CloudName:    cfg.CloudinaryCloudName,
		UploadPreset: cfg.CloudinaryUploadPreset,
		BaseURL:      cfg.CloudinaryBaseURL,
	}, &http.Client{Timeout: uploadTimeout})
	if err != nil {
		return nil, fmt.Errorf("init cloudinary uploader: %w", err)
	}
	return up, nil
}

func (a *App) Run() error {
	a.logger.Infof("📚 Starting bindery v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bindery %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
		_ = a.store.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close %s store: %v", a.cfg.Store, err)
	} else {
		a.logger.Infof("✅ %s store closed cleanly", a.cfg.Store)
	}

	a.logger.Info("✅ bindery stopped cleanly")
	return nil
}
