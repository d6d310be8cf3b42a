package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/lienzo/lienzo-go/internal/api"
	"github.com/lienzo/lienzo-go/internal/cli"
	"github.com/lienzo/lienzo-go/internal/config"
	"github.com/lienzo/lienzo-go/internal/feed"
	"github.com/lienzo/lienzo-go/internal/notify"
	"github.com/lienzo/lienzo-go/internal/session"
)

type dependencies struct {
	services cli.Services
	poller   *notify.Poller
	logger   *slog.Logger
	closers  []io.Closer
}

func (d dependencies) close() {
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			d.logger.Warn("closing dependency", "error", err)
		}
	}
}

// buildDependencies wires the session store, the API client, and every
// service the shell uses.
func buildDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (dependencies, error) {
	deps := dependencies{logger: logger}

	store, closer, err := buildStore(ctx, cfg)
	if err != nil {
		return dependencies{}, err
	}
	if closer != nil {
		deps.closers = append(deps.closers, closer)
	}

	client, err := api.NewClient(cfg.APIBaseURL, api.Options{
		Store:          store,
		Timeout:        cfg.HTTPTimeout,
		RequestsPerMin: cfg.RequestsPerMin,
		RequestBurst:   cfg.RequestBurst,
		OnSessionExpired: func() {
			logger.Info("session expired")
			fmt.Fprintln(os.Stderr, "Your session expired, please log in again.")
		},
	})
	if err != nil {
		return dependencies{}, err
	}

	auth := api.NewAuthService(client)
	publications := api.NewPublicationService(client)
	users := api.NewUserService(client)
	notifications := api.NewNotificationService(client)

	manager := session.NewManager(store, auth, users)
	loader := feed.NewLoader(feed.NewAPISource(publications, users), cfg.PageSize, feed.Filter{})
	poller := notify.NewPoller(notifications, notify.PollerConfig{Interval: cfg.NotifyInterval}, logger, nil)

	deps.poller = poller
	deps.services = cli.Services{
		Session:       manager,
		Auth:          auth,
		Publications:  publications,
		Users:         users,
		Directory:     api.NewCachingUserDirectory(users, cfg.UserCacheTTL),
		Comments:      api.NewCommentService(client),
		Notifications: notifications,
		Reports:       api.NewReportService(client),
		Maps:          api.NewMapService(client),
		Admin:         api.NewAdminService(client),
		Loader:        loader,
		Poller:        poller,
	}
	return deps, nil
}

// buildStore selects the session persistence backend. The file store is the
// default for interactive use; redis and sqlite cover shared and scripted
// deployments.
func buildStore(ctx context.Context, cfg config.Config) (session.Store, io.Closer, error) {
	switch cfg.SessionBackend {
	case config.BackendMemory:
		return session.NewMemoryStore(), nil, nil
	case config.BackendFile:
		store, err := session.NewFileStore(cfg.SessionPath)
		return store, nil, err
	case config.BackendSQLite:
		store, err := session.NewSQLiteStore(cfg.SessionPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis at %s: %w", cfg.RedisAddr, err)
		}
		return session.NewRedisStore(client, cfg.RedisPrefix), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
