package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/secretkeeper/internal/flagx"
	"github.com/dmitrijs2005/secretkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "24h" and integer nanoseconds are accepted.
//
// Only keys present in the file override the current values.
type JsonConfig struct {
	TokenAPIAddr        *string         `json:"token_api_addr"`
	SessionAPIAddr      *string         `json:"session_api_addr"`
	EndpointAddrGRPC    *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN         *string         `json:"database_dsn"`
	MongoURI            *string         `json:"mongo_uri"`
	MongoDatabase       *string         `json:"mongo_database"`
	RedisURL            *string         `json:"redis_url"`
	SecretsKey          *string         `json:"secrets_key"`
	SecretsIV           *string         `json:"secrets_iv"`
	AdminTokensKey      *string         `json:"admin_tokens_key"`
	AdminTokensIV       *string         `json:"admin_tokens_iv"`
	UserSecretsKey      *string         `json:"user_secrets_key"`
	UserSecretsIV       *string         `json:"user_secrets_iv"`
	AdminToken          *string         `json:"admin_token"`
	DefaultUserName     *string         `json:"default_username"`
	DefaultUserPassword *string         `json:"default_user_password"`
	SessionTTL          *timex.Duration `json:"session_ttl"`
	HealthCheckInterval *timex.Duration `json:"healthcheck_interval"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config (or $CONFIG) into config.
// Without a path it does nothing; an unreadable file or invalid JSON panics,
// matching the fail-fast behaviour of flag parsing.
func parseJson(config *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.TokenAPIAddr, c.TokenAPIAddr)
	setString(&config.SessionAPIAddr, c.SessionAPIAddr)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.SecretsKey, c.SecretsKey)
	setString(&config.SecretsIV, c.SecretsIV)
	setString(&config.AdminTokensKey, c.AdminTokensKey)
	setString(&config.AdminTokensIV, c.AdminTokensIV)
	setString(&config.UserSecretsKey, c.UserSecretsKey)
	setString(&config.UserSecretsIV, c.UserSecretsIV)
	setString(&config.AdminToken, c.AdminToken)
	setString(&config.DefaultUserName, c.DefaultUserName)
	setString(&config.DefaultUserPassword, c.DefaultUserPassword)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.HealthCheckInterval != nil {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
