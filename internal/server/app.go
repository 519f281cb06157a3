// Package server wires configuration, storage backends and services together
// and runs the token API, the session API and the gRPC health endpoint until
// the process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/cryptox"
	"github.com/dmitrijs2005/secretkeeper/internal/logging"
	"github.com/dmitrijs2005/secretkeeper/internal/server/config"
	"github.com/dmitrijs2005/secretkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/secretkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secretkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/secretkeeper/internal/server/grpc"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	registry *prometheus.Registry
	metrics  *metrics.Collector

	secrets     *services.TokenStore
	adminTokens *services.TokenStore
	auth        *services.AuthService
	userSecrets *services.SecretService
}

// NewApp connects the configured backends and builds the services on top
// of them.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	repos, err := repomanager.New(ctx, c, logger.With("module", "repomanager"))
	if err != nil {
		return nil, fmt.Errorf("repository init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, repos)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, repos repomanager.RepositoryManager) (*App, error) {
	secrets, err := newTokenStore(ctx, repos, common.SecretsNamespace, c.SecretsKey, c.SecretsIV)
	if err != nil {
		return nil, err
	}

	adminTokens, err := newTokenStore(ctx, repos, common.AdminTokensNamespace, c.AdminTokensKey, c.AdminTokensIV)
	if err != nil {
		return nil, err
	}

	secretsCipher, err := cryptox.NewCipher(cryptox.NewKey(c.UserSecretsKey), cryptox.NewIV(c.UserSecretsIV))
	if err != nil {
		return nil, fmt.Errorf("user secrets cipher: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sessionStore := services.NewSessionStore(repos.Sessions(), c.SessionTTL)

	return &App{
		config:      c,
		logger:      logger,
		repos:       repos,
		registry:    registry,
		metrics:     metrics.NewCollector(registry),
		secrets:     secrets,
		adminTokens: adminTokens,
		auth:        services.NewAuthService(repos.Users(), sessionStore),
		userSecrets: services.NewSecretService(repos.Secrets(), secretsCipher),
	}, nil
}

func newTokenStore(ctx context.Context, repos repomanager.RepositoryManager, namespace, key, iv string) (*services.TokenStore, error) {
	cipher, err := cryptox.NewCipher(cryptox.NewKey(key), cryptox.NewIV(iv))
	if err != nil {
		return nil, fmt.Errorf("%s cipher: %w", namespace, err)
	}

	repo, err := repos.Tokens(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("%s repository: %w", namespace, err)
	}

	return services.NewTokenStore(namespace, repo, cipher), nil
}

// Bootstrap fills missing token lookups, then seeds the admin bearer token
// and the default user.
func (app *App) Bootstrap(ctx context.Context) error {
	for _, store := range []*services.TokenStore{app.secrets, app.adminTokens} {
		updated, skipped, err := store.BackfillLookups(ctx)
		if err != nil {
			return fmt.Errorf("backfill %s: %w", store.Namespace(), err)
		}
		if updated > 0 || skipped > 0 {
			app.logger.Info(ctx, "token lookups backfilled",
				"namespace", store.Namespace(), "updated", updated, "skipped", skipped)
		}
	}

	if err := app.ensureAdminToken(ctx); err != nil {
		return fmt.Errorf("admin token: %w", err)
	}

	if app.config.DefaultUserPassword == "" {
		app.logger.Debug(ctx, "default user skipped, no password configured")
		return nil
	}

	created, err := app.auth.EnsureUser(ctx, app.config.DefaultUserName, app.config.DefaultUserPassword)
	if err != nil {
		return fmt.Errorf("default user: %w", err)
	}
	if created {
		app.logger.Info(ctx, "default user created", "username", app.config.DefaultUserName)
	}

	return nil
}

func (app *App) ensureAdminToken(ctx context.Context) error {
	_, err := app.adminTokens.Get(ctx, common.AdminTokenName)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorAuthenticationFailure):
		app.logger.Warn(ctx, "stored admin token does not decrypt with the configured key")
		return nil
	case !errors.Is(err, common.ErrorNotFound):
		return err
	}

	token := app.config.AdminToken
	generated := token == ""
	if generated {
		if token, err = common.MakeRandHexString(32); err != nil {
			return err
		}
	}

	if _, err := app.adminTokens.Create(ctx, common.AdminTokenName, token); err != nil {
		if errors.Is(err, common.ErrorTokenAlreadyExists) {
			return nil
		}
		return err
	}

	if generated {
		app.logger.Info(ctx, "admin token generated, store it now", "token", token)
	} else {
		app.logger.Info(ctx, "admin token seeded from configuration")
	}
	return nil
}

// TokenHandler returns the bearer-token API.
func (app *App) TokenHandler() http.Handler {
	return httpapi.NewTokenRouter(&httpapi.TokenRouterDeps{
		Secrets:     app.secrets,
		AdminTokens: app.adminTokens,
		Logger:      app.logger.With("module", "token_api"),
		Metrics:     app.metrics,
	})
}

// SessionHandler returns the session API, /metrics included.
func (app *App) SessionHandler() http.Handler {
	return httpapi.NewSessionRouter(&httpapi.SessionRouterDeps{
		Auth:     app.auth,
		Secrets:  app.userSecrets,
		Logger:   app.logger.With("module", "session_api"),
		Metrics:  app.metrics,
		Gatherer: app.registry,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, name, addr string, h http.Handler) {
	logger := app.logger.With("module", name)
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: readHeaderTimeout}

	go func() {
		<-ctx.Done()
		logger.Info(context.Background(), "Stopping HTTP server...")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Error(sctx, "shutdown", "error", err)
		}
	}()

	logger.Info(ctx, "Starting HTTP server", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.repos.Healthchecks(), app.metrics, app.config.HealthCheckInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run seeds startup data, serves all endpoints until ctx is cancelled or a
// termination signal arrives, and then closes the backends.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.Bootstrap(ctx); err != nil {
		_ = app.repos.Close(context.Background())
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, "token_api", app.config.TokenAPIAddr, app.TokenHandler())
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, "session_api", app.config.SessionAPIAddr, app.SessionHandler())
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "Closing backends...")
	cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.repos.Close(cctx)
}
