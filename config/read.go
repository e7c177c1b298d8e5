package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/equidadeplus/equidade_backend/pkg/constants"
	"github.com/spf13/viper"
)

var GlobalConf *Config

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	setDefaults(v)

	// Allow env vars to override config values.
	// e.g. EQUIDADE_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read the config file (optional in Docker environments)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if os.Getenv(constants.EnvPrefix+"_DATABASE_HOST") == "" {
				return nil, fmt.Errorf("error reading config file: %v", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}

// setDefaults registers every key viper should know about so that env-only
// deployments still unmarshal nested values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "equidade")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.body_limit_mb", 12)
	v.SetDefault("server.rate_limit.max", 60)
	v.SetDefault("server.rate_limit.expiration_seconds", 30)

	v.SetDefault("authentication.provider", ProviderJWT)
	v.SetDefault("authentication.jwt.secret", "")
	v.SetDefault("authentication.jwt.jwks_url", "")
	v.SetDefault("authentication.jwt.issuer", "")
	v.SetDefault("authentication.jwt.audience", "authenticated")
	v.SetDefault("authentication.paseto.mode", "local")
	v.SetDefault("authentication.paseto.access_ttl_minutes", 60)
	v.SetDefault("authentication.encryption_key", "")

	v.SetDefault("authorization.enable_audit", true)
	v.SetDefault("authorization.policy_sync_enabled", false)

	v.SetDefault("email.breaker.max_failures", 5)
	v.SetDefault("email.breaker.open_timeout_seconds", 60)

	v.SetDefault("s3.presign_ttl_sec", 900)
	v.SetDefault("s3.max_upload_mb", 10)

	v.SetDefault("nats.name", "equidade-api")
	v.SetDefault("workers.enabled", true)

	v.SetDefault("observability.service_name", "equidade_backend")
	v.SetDefault("observability.service_version", "dev")
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output.stdout", true)
}
