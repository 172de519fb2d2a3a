package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/marketplace-console/internal/api"
	"github.com/99minutos/marketplace-console/internal/api/handler"
	"github.com/99minutos/marketplace-console/internal/api/metrics"
	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/notify"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/query"
	"github.com/99minutos/marketplace-console/internal/core/service"
	"github.com/99minutos/marketplace-console/internal/core/session"
	"github.com/99minutos/marketplace-console/internal/core/validation"
	"github.com/99minutos/marketplace-console/internal/infrastructure/db/memory"
	"github.com/99minutos/marketplace-console/internal/infrastructure/db/redis"
	"github.com/99minutos/marketplace-console/internal/infrastructure/marketplace"
	"github.com/99minutos/marketplace-console/internal/infrastructure/queue"
	"github.com/99minutos/marketplace-console/internal/infrastructure/realtime"
	"github.com/99minutos/marketplace-console/internal/pkg/config"
	"github.com/99minutos/marketplace-console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Pretty(), App: "marketplace-console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("console stopped with error")
	}
	log.Info().Msg("console stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	storage, checks, closeStorage, err := openStorage(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	store := session.NewStore(storage, log)
	cache := query.NewCache()
	center := notify.NewCenter(0, log)
	center.OnPush(func(level domain.NotificationLevel) {
		metrics.NotificationsTotal.WithLabelValues(string(level)).Inc()
	})

	client, err := marketplace.NewClient(marketplace.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		RateBurst: cfg.API.RateBurst,
	}, store, log)
	if err != nil {
		return err
	}

	validator := validation.New()
	auth := service.NewAuthService(client, store, cache, center, validator, log)
	views := service.NewViews(client, store, cache, center, auth, validator, log)
	boot := service.NewBootstrapper(client, store, auth, log)

	var (
		dispatcher *queue.Dispatcher
		sub        *realtime.Subscriber
	)
	if cfg.Realtime.Enabled {
		dispatcher = queue.NewDispatcher(0, service.NewOrderEvents(cache, center, log), log)
		if sub, err = newSubscriber(cfg, store, dispatcher, log); err != nil {
			return err
		}
	}

	// Requests arriving before bootstrap has restored the session wait.
	store.SetLoading(true)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := boot.Run(gctx)
		metrics.SessionEventsTotal.WithLabelValues("bootstrap_" + string(result)).Inc()
		ev := log.Info()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("result", string(result)).Msg("bootstrap finished")
		return nil
	})

	if sub != nil {
		dispatcher.Start(gctx)
		g.Go(func() error {
			_ = sub.Run(gctx)
			return nil
		})
	}

	e := api.NewRouter(api.Deps{
		Sessions:      store,
		Auth:          auth,
		Dashboard:     views,
		Services:      views,
		Orders:        views,
		Profile:       views,
		Admin:         views,
		Notifications: center,
		Checks:        checks,
		Log:           log,
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Msg("console listening")
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})

	return g.Wait()
}

// openStorage picks Redis when configured and process memory otherwise.
func openStorage(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (ports.SessionStorage, map[string]handler.Check, func(), error) {
	if cfg.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, session will not survive restarts")
		return memory.NewSessionStorage(), map[string]handler.Check{}, func() {}, nil
	}

	client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err != nil {
		return nil, nil, nil, err
	}
	checks := map[string]handler.Check{
		"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
	closeFn := func() {
		if err := client.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			log.Warn().Err(err).Msg("close redis")
		}
	}
	return redis.NewSessionStorage(client, cfg.Prefix), checks, closeFn, nil
}

func newSubscriber(cfg *config.Config, store *session.Store, sink realtime.Sink, log zerolog.Logger) (*realtime.Subscriber, error) {
	wsURL := cfg.Realtime.URL
	if wsURL == "" {
		derived, err := realtime.URLFromAPI(cfg.API.BaseURL)
		if err != nil {
			return nil, err
		}
		wsURL = derived
	}
	return realtime.NewSubscriber(realtime.Options{URL: wsURL}, store, sink, log)
}
