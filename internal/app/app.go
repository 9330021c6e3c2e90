// Package app wires the configured store, detector and translation provider into the
// message service shared by every entry point.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"relay/backend/internal/config"
	"relay/backend/internal/db"
	"relay/backend/internal/handler"
	transport "relay/backend/internal/http"
	"relay/backend/internal/logger"
	"relay/backend/internal/network"
	"relay/backend/internal/repository"
	"relay/backend/internal/scheduler"
	"relay/backend/internal/service"
	"relay/backend/internal/service/detect"
	"relay/backend/internal/service/translate"
	"relay/backend/internal/snowflake"
)

type App struct {
	cfg      config.Config
	Messages repository.MessageRepository
	Pipeline *service.Pipeline
	Service  service.MessageService
	closers  []func() error
}

// New builds the application from cfg. Close releases the clients it opened.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := snowflake.Init(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("init snowflake: %w", err)
	}

	a := &App{cfg: cfg}
	clients := network.NewClientFactory(cfg.ProxyURL)

	messages, err := a.openStore(ctx, clients)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Messages = messages

	provider, err := translate.NewProvider(ctx, translate.Config{
		Provider: cfg.Translate.Provider,
		APIKey:   cfg.Translate.APIKey,
		BaseURL:  cfg.Translate.URL,
		Email:    cfg.Translate.Email,
		Model:    cfg.Translate.Model,
		Timeout:  cfg.Translate.Timeout,
	}, clients.NewHTTPClient(cfg.Translate.Timeout))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create translation provider %q: %w", cfg.Translate.Provider, err)
	}
	limited := translate.RateLimited(provider, translate.NewRateLimiter(cfg.Translate.QPS))
	if c, ok := limited.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	a.Pipeline = NewPipeline(cfg, limited)
	a.Service = service.NewMessageService(messages, a.Pipeline, cfg.Store.Timeout)

	logger.Info("app ready", "module", "app", "action", "init", "resource", "app", "result", "ok",
		"store", cfg.Store.Backend,
		"provider", provider.Name(),
		"detector", cfg.Detect.Engine,
		"target", a.Pipeline.Target(),
	)
	return a, nil
}

// NewPipeline builds the detection pipeline for cfg. provider may be nil when only
// detection is used.
func NewPipeline(cfg config.Config, provider translate.Provider) *service.Pipeline {
	detector := detect.New(cfg.Detect.Engine, cfg.Detect.LowAccuracy)
	return service.NewPipeline(detector, detect.DefaultOverrides(), provider, cfg.Translate.TargetLang, cfg.Translate.Timeout)
}

func (a *App) openStore(ctx context.Context, clients *network.ClientFactory) (repository.MessageRepository, error) {
	cfg := a.cfg.Store
	switch cfg.Backend {
	case config.StoreREST:
		return repository.NewRESTMessageRepository(cfg.URL, cfg.APIKey, cfg.Table, clients.NewHTTPClient(cfg.Timeout)), nil
	case config.StorePostgres:
		conn, err := repository.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		return repository.NewPostgresMessageRepository(conn, cfg.Table), nil
	case config.StoreSQLite:
		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		return repository.NewMessageRepository(conn), nil
	case config.StoreRedis:
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		return repository.NewRedisMessageRepository(rdb, cfg.RedisKey), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Router returns the HTTP router serving the message API.
func (a *App) Router() *echo.Echo {
	return transport.NewRouter(handler.NewMessageHandler(a.Service))
}

// Serve runs the HTTP server and the store health probe until ctx is cancelled, then
// shuts both down gracefully.
func (a *App) Serve(ctx context.Context) error {
	e := a.Router()

	if a.cfg.HealthInterval > 0 {
		probe := scheduler.New(a.Service, a.cfg.HealthInterval)
		probe.Start()
		defer probe.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "module", "app", "action", "start", "resource", "http", "result", "ok", "addr", a.cfg.Addr)
		if err := e.Start(a.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("server shutting down", "module", "app", "action", "stop", "resource", "http", "result", "ok")
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// Close releases the store and provider clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("close failed", "module", "app", "action", "stop", "resource", "app", "result", "failed", "error", err)
		}
	}
	a.closers = nil
}
