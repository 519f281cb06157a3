// Package repomanager selects and wires repository backends from the server
// configuration: PostgreSQL for users and secrets, Redis for sessions and
// MongoDB for token namespaces. A backend with no connection settings falls
// back to its in-memory implementation.
package repomanager

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/secretkeeper/internal/logging"
	"github.com/dmitrijs2005/secretkeeper/internal/server/config"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/secrets"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Healthcheck probes one backend.
type Healthcheck func(ctx context.Context) error

type RepositoryManager interface {
	Users() users.Repository
	Secrets() secrets.Repository
	Sessions() sessions.Repository
	Tokens(ctx context.Context, namespace string) (tokens.Repository, error)
	Healthchecks() map[string]Healthcheck
	Close(ctx context.Context) error
}

// Manager owns backend connections and the repositories built on them.
type Manager struct {
	logger logging.Logger

	users    users.Repository
	secrets  secrets.Repository
	sessions sessions.Repository

	mongoDB *mongo.Database

	mu        sync.Mutex
	memTokens map[string]*tokens.MemoryRepository

	checks  map[string]Healthcheck
	closers []func(context.Context) error
}

var _ RepositoryManager = (*Manager)(nil)

// New connects the configured backends. Connections opened before a
// failure are closed again.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Manager, error) {
	m := &Manager{
		logger:    logger,
		memTokens: make(map[string]*tokens.MemoryRepository),
		checks:    make(map[string]Healthcheck),
	}

	if err := m.initSQL(ctx, cfg.DatabaseDSN); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	if err := m.initRedis(ctx, cfg.RedisURL); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	if err := m.initMongo(ctx, cfg.MongoURI, cfg.MongoDatabase); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Manager) initSQL(ctx context.Context, dsn string) error {
	if dsn == "" {
		m.logger.Info(ctx, "users and secrets kept in memory")
		m.users = users.NewMemoryRepository()
		m.secrets = secrets.NewMemoryRepository()
		return nil
	}

	db, err := openPostgres(ctx, dsn)
	if err != nil {
		return err
	}
	m.closers = append(m.closers, func(context.Context) error { return db.Close() })

	if err := RunMigrations(ctx, db); err != nil {
		return err
	}

	m.users = users.NewPostgresRepository(db)
	m.secrets = secrets.NewPostgresRepository(db)
	m.checks["postgres"] = db.PingContext
	m.logger.Info(ctx, "users and secrets stored in postgres")
	return nil
}

func (m *Manager) initRedis(ctx context.Context, url string) error {
	if url == "" {
		m.logger.Info(ctx, "sessions kept in memory")
		m.sessions = sessions.NewMemoryRepository()
		return nil
	}

	client, err := connectRedis(ctx, url)
	if err != nil {
		return err
	}
	m.closers = append(m.closers, func(context.Context) error { return client.Close() })

	repo := sessions.NewRedisRepository(client)
	m.sessions = repo
	m.checks["redis"] = repo.Healthcheck
	m.logger.Info(ctx, "sessions stored in redis")
	return nil
}

func (m *Manager) initMongo(ctx context.Context, uri, database string) error {
	if uri == "" {
		m.logger.Info(ctx, "tokens kept in memory")
		return nil
	}

	client, err := connectMongo(ctx, uri)
	if err != nil {
		return err
	}
	m.closers = append(m.closers, client.Disconnect)

	m.mongoDB = client.Database(database)
	m.checks["mongo"] = mongoHealthcheck(client)
	m.logger.Info(ctx, "tokens stored in mongo", "database", database)
	return nil
}

func (m *Manager) Users() users.Repository {
	return m.users
}

func (m *Manager) Secrets() secrets.Repository {
	return m.secrets
}

func (m *Manager) Sessions() sessions.Repository {
	return m.sessions
}

// Tokens returns the repository of a namespace. With MongoDB each namespace
// is a collection whose indexes are created on first use; in memory the
// same instance is returned for repeated calls.
func (m *Manager) Tokens(ctx context.Context, namespace string) (tokens.Repository, error) {
	if m.mongoDB != nil {
		repo := tokens.NewMongoRepository(m.mongoDB, namespace)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	repo, ok := m.memTokens[namespace]
	if !ok {
		repo = tokens.NewMemoryRepository()
		m.memTokens[namespace] = repo
	}
	return repo, nil
}

// Healthchecks returns one probe per connected backend, keyed by name.
func (m *Manager) Healthchecks() map[string]Healthcheck {
	out := make(map[string]Healthcheck, len(m.checks))
	for k, v := range m.checks {
		out[k] = v
	}
	return out
}

// Close releases backend connections in reverse order of opening.
func (m *Manager) Close(ctx context.Context) error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}
