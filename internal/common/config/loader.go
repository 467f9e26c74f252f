// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// over it and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return decode(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// bindEnvKeys makes AutomaticEnv see keys that are absent from every file.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"engine.source", "engine.cache_enabled", "engine.cache_ttl", "engine.fetch_timeout",
		"engine.max_compare_countries", "api.port", "api.mode",
		"database.postgres.host", "database.postgres.port", "database.postgres.database",
		"database.postgres.user", "database.postgres.password", "database.postgres.auto_migrate",
		"database.redis.address", "database.sqlite.path", "database.elasticsearch.url",
		"database.elasticsearch.index", "database.elasticsearch.surveillance_index", "camunda.broker_address",
		"logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up until it finds go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig honours the PG_* and PORT variables of the legacy backend.
func overrideEmptyConfig(cfg *Config) {
	pg := &cfg.Database.Postgres
	setIfEmpty(&pg.Host, "PG_HOST")
	setIfEmpty(&pg.User, "PG_USER")
	setIfEmpty(&pg.Password, "PG_PASSWORD")
	setIfEmpty(&pg.Database, "PG_DATABASE")
	setIntIfZero(&pg.Port, "PG_PORT")
	setIntIfZero(&cfg.API.Port, "PORT")
	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
}

func setIfEmpty(dst *string, env string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(env); val != "" {
		*dst = val
	}
}

func setIntIfZero(dst *int, env string) {
	if *dst != 0 {
		return
	}
	if val, err := strconv.Atoi(os.Getenv(env)); err == nil {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "lepto-risk-workers"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	pg := &cfg.Database.Postgres
	if pg.Host == "" {
		pg.Host = "localhost"
	}
	if pg.Port == 0 {
		pg.Port = 5432
	}
	if pg.Database == "" {
		pg.Database = "lepto_db"
	}
	if pg.User == "" {
		pg.User = "postgres"
	}
	if pg.MaxConnections == 0 {
		pg.MaxConnections = 25
	}
	if pg.MaxIdle == 0 {
		pg.MaxIdle = 5
	}
	if pg.SSLMode == "" {
		pg.SSLMode = "disable"
	}
	if pg.MigrationsPath == "" {
		pg.MigrationsPath = "file://migrations"
	}

	es := &cfg.Database.Elasticsearch
	if es.URL == "" && len(es.Addresses) > 0 {
		es.URL = es.Addresses[0]
	}
	if es.Index == "" {
		es.Index = "riskanalysis"
	}
	if es.SurveillanceIndex == "" {
		es.SurveillanceIndex = "leptospirosis"
	}

	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = "lepto.db"
	}

	if cfg.Engine.Source == "" {
		cfg.Engine.Source = SourcePostgres
	}
	if cfg.Engine.MaxCompareCountries == 0 {
		cfg.Engine.MaxCompareCountries = 3
	}
	if cfg.Engine.CacheTTL == 0 {
		cfg.Engine.CacheTTL = 300
	}
	if cfg.Engine.FetchTimeout == 0 {
		cfg.Engine.FetchTimeout = 10000
	}

	if cfg.API.Port == 0 {
		cfg.API.Port = 5000
	}
	if cfg.API.Mode == "" {
		cfg.API.Mode = "release"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Notifications.AlertThreshold == 0 {
		cfg.Notifications.AlertThreshold = 75
	}

	if cfg.Workers == nil {
		cfg.Workers = make(map[string]WorkerConfig)
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	if cfg.RegistryPath == "" {
		cfg.RegistryPath = "configs/activity-registry.json"
	}
}

// validateConfig checks the settings of the selected record source.
func validateConfig(cfg *Config) error {
	switch cfg.Engine.Source {
	case SourcePostgres:
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.host and database are required")
		}
	case SourceElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required")
		}
	case SourceSQLite:
		if cfg.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	default:
		return fmt.Errorf("engine.source %q is not one of postgres, elasticsearch, sqlite", cfg.Engine.Source)
	}

	if cfg.Engine.CacheEnabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when engine.cache_enabled is set")
	}
	if cfg.Engine.MaxCompareCountries < 1 {
		return fmt.Errorf("engine.max_compare_countries must be positive")
	}
	return nil
}

// ValidateForWorkers adds the checks only the worker manager needs.
func ValidateForWorkers(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
