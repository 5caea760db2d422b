// Command newsclient is a terminal client for the news API: a paginated
// feed in English or Nepali, bookmarks and account management.
//
// Without arguments it starts an interactive shell. With arguments it runs
// them as a single shell command, e.g. `newsclient feed np`.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"newsclient/internal/cli"
	"newsclient/internal/config"
	"newsclient/internal/infra/api"
	"newsclient/internal/infra/cache"
	"newsclient/internal/infra/reader"
	"newsclient/internal/observability/logging"
	"newsclient/internal/resilience/retry"
	"newsclient/internal/usecase/account"
	"newsclient/internal/usecase/bookmark"
	"newsclient/internal/usecase/feed"
	"newsclient/internal/usecase/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
		Writer: os.Stderr,
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1:]); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("newsclient failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ClientConfig, logger *slog.Logger, args []string) error {
	if cfg.Observability.MetricsAddr != "" {
		startMetricsServer(ctx, logger, cfg.Observability.MetricsAddr)
	}

	client, err := api.NewClient(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		RateBurst: cfg.API.RateBurst,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	pageCache, closeCache, err := newPageCache(ctx, cfg.Cache, client.BaseURL(), logger)
	if err != nil {
		return err
	}
	defer closeCache()

	loader := feed.NewPageLoader(client, pageCache, feed.LoaderConfig{
		StaleTime: cfg.Feed.StaleTime,
		Retry:     retry.WithRetries(cfg.Feed.Retries, cfg.Feed.RetryDelay),
	})
	sess := session.New(client)

	deps := cli.Deps{
		Feed:      feed.NewController(loader, cfg.Feed.PerPage),
		Bookmarks: bookmark.NewSync(client, sess),
		Accounts:  account.NewService(client, sess),
		Session:   sess,
		Language:  cfg.Feed.Language,
	}
	if cfg.Reader.Enabled {
		rc := reader.DefaultConfig()
		rc.Timeout = cfg.Reader.Timeout
		rc.MaxBodySize = cfg.Reader.MaxBodySize
		rc.MaxRedirects = cfg.Reader.MaxRedirects
		rc.DenyPrivateIPs = cfg.Reader.DenyPrivateIPs
		if err := rc.Validate(); err != nil {
			return fmt.Errorf("invalid reader configuration: %w", err)
		}
		deps.Reader = reader.New(rc, nil)
	}

	shell := cli.New(deps, os.Stdin, os.Stdout)
	if len(args) > 0 {
		shell.RunOnce(ctx, strings.Join(args, " "))
		return nil
	}

	logger.Debug("starting interactive shell",
		slog.String("api", client.BaseURL()),
		slog.String("cache", cfg.Cache.Backend))
	return shell.Run(ctx)
}

// newPageCache builds the configured page cache and returns a function releasing it.
func newPageCache(ctx context.Context, cfg config.CacheConfig, apiBaseURL string, logger *slog.Logger) (feed.PageCache, func(), error) {
	if cfg.Backend != config.CacheBackendRedis {
		return cache.NewMemoryPageCache(), func() {}, nil
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("using redis page cache", slog.String("addr", cfg.RedisAddr))
	return cache.NewRedisPageCache(rdb, apiBaseURL, cfg.Retention), func() { closeRedis(rdb, logger) }, nil
}

func closeRedis(rdb *redis.Client, logger *slog.Logger) {
	if err := rdb.Close(); err != nil {
		logger.Error("failed to close redis client", slog.Any("error", err))
	}
}
