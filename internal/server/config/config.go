// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables and command-line flags.
package config

import "time"

// Config holds runtime settings for the secretkeeper server.
//
// A Config is built once by LoadConfig and then only read. Components get
// the fields they need through their constructors.
//
// Fields:
//   - TokenAPIAddr / SessionAPIAddr: bind addresses of the two HTTP APIs.
//   - EndpointAddrGRPC: bind address of the gRPC health endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx) for users and secrets; empty keeps them in memory.
//   - MongoURI / MongoDatabase: token collections; empty URI keeps them in memory.
//   - RedisURL: session storage; empty keeps sessions in memory.
//   - SecretsKey / SecretsIV: 32/16-byte material of the "secrets" token namespace.
//   - AdminTokensKey / AdminTokensIV: 32/16-byte material of the "adminTokens" namespace.
//   - UserSecretsKey / UserSecretsIV: 32/16-byte material sealing per-user secret values.
//   - AdminToken: value seeded as the "admin" bearer token; empty means a random one.
//   - DefaultUserName / DefaultUserPassword: user seeded at startup; empty password skips it.
//   - SessionTTL: lifetime of a session.
//   - HealthCheckInterval: how often backends are probed for the gRPC health status.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	TokenAPIAddr        string        `env:"TOKEN_API_ADDR"`
	SessionAPIAddr      string        `env:"SESSION_API_ADDR"`
	EndpointAddrGRPC    string        `env:"GRPC_ADDR"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	MongoURI            string        `env:"MONGO_URI"`
	MongoDatabase       string        `env:"MONGO_DATABASE"`
	RedisURL            string        `env:"REDIS_URL"`
	SecretsKey          string        `env:"ADMIN_COLLECTION_KEYSTRING_FOR_AES_WHICH_HAS_TO_BE_32_BYTES"`
	SecretsIV           string        `env:"ADMIN_IV_STRING_16_BYTES"`
	AdminTokensKey      string        `env:"SECRETS_KEYSTRING"`
	AdminTokensIV       string        `env:"SECRETS_IV_STRING"`
	UserSecretsKey      string        `env:"USER_SECRETS_KEY"`
	UserSecretsIV       string        `env:"USER_SECRETS_IV"`
	AdminToken          string        `env:"ADMIN_TOKEN"`
	DefaultUserName     string        `env:"DEFAULT_USERNAME"`
	DefaultUserPassword string        `env:"DEFAULT_USER_PASSWORD"`
	SessionTTL          time.Duration `env:"SESSION_TTL"`
	HealthCheckInterval time.Duration `env:"HEALTHCHECK_INTERVAL"`
	LogLevel            string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the key material below is public and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.TokenAPIAddr = ":3000"
	c.SessionAPIAddr = ":3001"
	c.EndpointAddrGRPC = ":50051"
	c.MongoDatabase = "myDatabase"
	c.SecretsKey = "dev_secrets_key_32_bytes_long!!!"
	c.SecretsIV = "dev_secrets_iv16"
	c.AdminTokensKey = "dev_admin_tokens_key_32_bytes!!!"
	c.AdminTokensIV = "dev_admin_iv_16b"
	c.UserSecretsKey = "dev_user_secrets_key_32_bytes!!!"
	c.UserSecretsIV = "dev_user_iv_16b!"
	c.DefaultUserName = "admin"
	c.SessionTTL = 24 * time.Hour
	c.HealthCheckInterval = 15 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (and a .env file) and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
