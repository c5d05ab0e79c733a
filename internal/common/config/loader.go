// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on
// top when present and lets environment variables override any key
// (assessment.scale -> ASSESSMENT_SCALE).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName("config." + env)
	_ = v.MergeInConfig()

	return build(v)
}

// LoadFromFile reads a single YAML file. Environment overrides still apply.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// bindEnvKeys makes keys absent from the YAML visible to Unmarshal when they
// are only set in the environment.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"camunda.broker_address",
		"database.postgres.host",
		"database.postgres.user",
		"database.postgres.password",
		"database.redis.address",
		"database.redis.password",
		"database.elasticsearch.url",
		"assessment.scale",
		"assessment.allowance_percent",
		"assessment.quality_floor",
		"notifications.sms.topic_arn",
		"notifications.aws.region",
	} {
		_ = v.BindEnv(key)
	}
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if godotenv.Load(p) == nil {
				return
			}
		}
	}
}

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

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		s, ok := v.Get(key).(string)
		if !ok || !strings.Contains(s, "$") {
			continue
		}
		if expanded := os.ExpandEnv(s); expanded != s {
			v.Set(key, expanded)
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "operator-assessment-workers"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
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

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Assessment.Scale == "" {
		cfg.Assessment.Scale = "weighted"
	}
	if cfg.Assessment.CacheTTL == 0 {
		cfg.Assessment.CacheTTL = 30 * time.Minute
	}
	if cfg.Assessment.IndexName == "" {
		cfg.Assessment.IndexName = "operator-assessments"
	}
	if cfg.Assessment.RegistryPath == "" {
		cfg.Assessment.RegistryPath = "configs/activity-registry.json"
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "ap-south-1"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	for key, w := range cfg.Workers {
		if w.MaxJobsActive == 0 {
			w.MaxJobsActive = 5
		}
		if w.Timeout == 0 {
			w.Timeout = 30000
		}
		if w.MaxRetries == 0 {
			w.MaxRetries = 3
		}
		cfg.Workers[key] = w
	}
}

// validateConfig reports every invalid key at once, keyed by its YAML path.
func validateConfig(cfg *Config) error {
	email := cfg.Notifications.Email
	sms := cfg.Notifications.SMS

	return validation.Errors{
		"server.port":                  validation.Validate(cfg.Server.Port, validation.Min(1), validation.Max(65535)),
		"camunda.broker_address":       validation.Validate(cfg.Camunda.BrokerAddress, validation.Required),
		"database.postgres.host":       validation.Validate(cfg.Database.Postgres.Host, validation.Required),
		"database.postgres.database":   validation.Validate(cfg.Database.Postgres.Database, validation.Required),
		"database.postgres.user":       validation.Validate(cfg.Database.Postgres.User, validation.Required),
		"database.elasticsearch.url":   validation.Validate(cfg.Database.Elasticsearch.GetAddresses(), validation.Required.Error("addresses or url is required")),
		"database.redis.address":       validation.Validate(cfg.Database.Redis.Address, validation.Required),
		"assessment.scale":             validation.Validate(cfg.Assessment.Scale, validation.In("weighted", "flat").Error("must be weighted or flat")),
		"assessment.allowance_percent": validation.Validate(cfg.Assessment.AllowancePercent, validation.Min(0.0), validation.Max(100.0)),
		"assessment.quality_floor":     validation.Validate(cfg.Assessment.QualityFloor, validation.Min(0.0)),
		"notifications.email.from_email": validation.Validate(email.FromEmail,
			validation.When(email.Enabled, validation.Required), is.EmailFormat),
		"notifications.email.recipients": validation.Validate(email.Recipients,
			validation.When(email.Enabled, validation.Required), validation.Each(is.EmailFormat)),
		"notifications.sms.topic_arn": validation.Validate(sms.TopicARN,
			validation.When(sms.Enabled, validation.Required)),
	}.Filter()
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig returns the worker's section or the defaults when absent.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if w, ok := cfg.Workers[workerName]; ok {
		return w
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if w, ok := cfg.Workers[workerName]; ok {
		return w.Enabled
	}
	return true
}
