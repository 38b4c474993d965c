package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Marketplace MarketplaceConfig
	Cache       CacheConfig
	Reconcile   ReconcileConfig
	Sync        SyncConfig
	Scheduler   SchedulerConfig
	Queue       QueueConfig
	Swagger     SwaggerConfig
	Telemetry   TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	MaxSizeMB  int    // rotation size for file output
	MaxBackups int
	MaxAgeDays int
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	LogLevel        string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	RequestTimeout   time.Duration
}

// AccountConfig holds the credentials of one seller account
type AccountConfig struct {
	Name         string `mapstructure:"name"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// MarketplaceConfig holds the upstream marketplace API settings
type MarketplaceConfig struct {
	AuthURL          string
	APIBaseURL       string
	Timeout          time.Duration
	RateLimitRPS     float64
	RateLimitBurst   int
	PlaceholderImage string
	ItemConcurrency  int
	OrderConcurrency int
	Accounts         []AccountConfig
}

// AccountNames returns the configured account names in order
func (m MarketplaceConfig) AccountNames() []string {
	names := make([]string, 0, len(m.Accounts))
	for _, a := range m.Accounts {
		names = append(names, a.Name)
	}
	return names
}

// CacheConfig holds cache TTLs
type CacheConfig struct {
	ImageTTL     time.Duration
	TokenTTL     time.Duration
	RedisEnabled bool
}

// ReconcileConfig holds shipment reconciliation settings
type ReconcileConfig struct {
	MaxShipmentPages int
	MaxOrders        int
	Interval         time.Duration
}

// SyncConfig holds order re-sync settings
type SyncConfig struct {
	MaxPages int
	Interval time.Duration
}

// SchedulerConfig holds interval trigger configuration
type SchedulerConfig struct {
	Enabled       bool
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// QueueConfig holds asynq task queue configuration
type QueueConfig struct {
	Enabled     bool
	Concurrency int
	QueueName   string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // IP or CIDR allow list (empty = allow all)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces and metrics
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
	MetricsInterval   time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SHIPDESK_ prefix (e.g., SHIPDESK_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SHIPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			LogLevel:        v.GetString("database.log_level"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			RateLimitEnabled: v.GetBool("http.rate_limit_enabled"),
			RateLimitRPS:     v.GetFloat64("http.rate_limit_rps"),
			RateLimitBurst:   v.GetInt("http.rate_limit_burst"),
			RequestTimeout:   v.GetDuration("http.request_timeout"),
		},
		Marketplace: MarketplaceConfig{
			AuthURL:          v.GetString("marketplace.auth_url"),
			APIBaseURL:       v.GetString("marketplace.api_base_url"),
			Timeout:          v.GetDuration("marketplace.timeout"),
			RateLimitRPS:     v.GetFloat64("marketplace.rate_limit_rps"),
			RateLimitBurst:   v.GetInt("marketplace.rate_limit_burst"),
			PlaceholderImage: v.GetString("marketplace.placeholder_image"),
			ItemConcurrency:  v.GetInt("marketplace.item_concurrency"),
			OrderConcurrency: v.GetInt("marketplace.order_concurrency"),
		},
		Cache: CacheConfig{
			ImageTTL:     v.GetDuration("cache.image_ttl"),
			TokenTTL:     v.GetDuration("cache.token_ttl"),
			RedisEnabled: v.GetBool("cache.redis_enabled"),
		},
		Reconcile: ReconcileConfig{
			MaxShipmentPages: v.GetInt("reconcile.max_shipment_pages"),
			MaxOrders:        v.GetInt("reconcile.max_orders"),
			Interval:         v.GetDuration("reconcile.interval"),
		},
		Sync: SyncConfig{
			MaxPages: v.GetInt("sync.max_pages"),
			Interval: v.GetDuration("sync.interval"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("scheduler.enabled"),
			JobTimeout:    v.GetDuration("scheduler.job_timeout"),
			RetryAttempts: v.GetInt("scheduler.retry_attempts"),
			RetryDelay:    v.GetDuration("scheduler.retry_delay"),
		},
		Queue: QueueConfig{
			Enabled:     v.GetBool("queue.enabled"),
			Concurrency: v.GetInt("queue.concurrency"),
			QueueName:   v.GetString("queue.name"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
	}

	if err := v.UnmarshalKey("marketplace.accounts", &cfg.Marketplace.Accounts); err != nil {
		return nil, fmt.Errorf("error reading marketplace.accounts: %w", err)
	}
	// A comma separated SHIPDESK_MARKETPLACE_ACCOUNT_NAMES overrides the table form
	if names := v.GetStringSlice("marketplace.account_names"); len(names) > 0 {
		cfg.Marketplace.Accounts = accountsFromNames(names)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func accountsFromNames(names []string) []AccountConfig {
	accounts := make([]AccountConfig, 0, len(names))
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				accounts = append(accounts, AccountConfig{Name: name})
			}
		}
	}
	return accounts
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shipdesk-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "shipdesk"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 7
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 14
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// reconciliation runs inline on the request
		cfg.HTTP.WriteTimeout = 2 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRPS == 0 {
		cfg.HTTP.RateLimitRPS = 20
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 40
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 90 * time.Second
	}
	if cfg.Marketplace.AuthURL == "" {
		cfg.Marketplace.AuthURL = "https://login.marketplace.example/token"
	}
	if cfg.Marketplace.APIBaseURL == "" {
		cfg.Marketplace.APIBaseURL = "https://api.marketplace.example/retailer"
	}
	if cfg.Marketplace.Timeout == 0 {
		cfg.Marketplace.Timeout = 10 * time.Second
	}
	if cfg.Marketplace.RateLimitRPS == 0 {
		cfg.Marketplace.RateLimitRPS = 10
	}
	if cfg.Marketplace.RateLimitBurst == 0 {
		cfg.Marketplace.RateLimitBurst = 5
	}
	if cfg.Marketplace.PlaceholderImage == "" {
		cfg.Marketplace.PlaceholderImage = "/static/img/no-image.png"
	}
	if cfg.Marketplace.ItemConcurrency == 0 {
		cfg.Marketplace.ItemConcurrency = 8
	}
	if cfg.Marketplace.OrderConcurrency == 0 {
		cfg.Marketplace.OrderConcurrency = 8
	}
	if cfg.Cache.ImageTTL == 0 {
		cfg.Cache.ImageTTL = 30 * time.Minute
	}
	if cfg.Cache.TokenTTL == 0 {
		cfg.Cache.TokenTTL = 5 * time.Minute
	}
	if cfg.Reconcile.MaxShipmentPages == 0 {
		cfg.Reconcile.MaxShipmentPages = 3
	}
	if cfg.Reconcile.MaxOrders == 0 {
		cfg.Reconcile.MaxOrders = 500
	}
	if cfg.Reconcile.Interval == 0 {
		cfg.Reconcile.Interval = 10 * time.Minute
	}
	if cfg.Sync.MaxPages == 0 {
		cfg.Sync.MaxPages = 5
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 30 * time.Minute
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 5 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 10 * time.Second
	}
	if cfg.Queue.Concurrency == 0 {
		cfg.Queue.Concurrency = 2
	}
	if cfg.Queue.QueueName == "" {
		cfg.Queue.QueueName = "marketplace"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "shipdesk-backend"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	seen := make(map[string]bool, len(c.Marketplace.Accounts))
	for _, a := range c.Marketplace.Accounts {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("marketplace.accounts entries must have a name")
		}
		if seen[a.Name] {
			return fmt.Errorf("marketplace.accounts contains duplicate account %q", a.Name)
		}
		seen[a.Name] = true
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("http.rate_limit_rps cannot be negative")
	}
	if c.Marketplace.RateLimitRPS < 0 {
		return fmt.Errorf("marketplace.rate_limit_rps cannot be negative")
	}
	if c.Reconcile.MaxShipmentPages < 0 || c.Sync.MaxPages < 0 {
		return fmt.Errorf("page bounds cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if len(c.Marketplace.Accounts) == 0 {
			return fmt.Errorf("marketplace.accounts is required in production")
		}
		if c.Swagger.Enabled && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled or have IP restriction in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
