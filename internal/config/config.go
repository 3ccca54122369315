package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	KVBackendMemory   = "memory"
	KVBackendRedis    = "redis"
	KVBackendPostgres = "postgres"
	KVBackendSQLite   = "sqlite"
)

var envReplacer = strings.NewReplacer(".", "_")

type LogConfig struct {
	Level string
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// AllowOrigins lists the origins allowed to call the JSON endpoints
	// with credentials. Empty means same-origin only.
	AllowOrigins []string
}

type KVConfig struct {
	Backend    string
	SQLitePath string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig points at an S3 compatible bucket for catalog snapshots.
// An empty endpoint disables snapshots.
type StorageConfig struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	BucketSnapshots string
	UseSSL          bool
	Region          string
	RestoreOnStart  bool
}

type SecurityConfig struct {
	ProfileSecret string
	ProfileTTL    time.Duration
	SessionTTL    time.Duration
	RateLimit     float64
	Burst         int
	SecureCookies bool
}

type DemoConfig struct {
	Enabled bool
	Latency time.Duration
}

type JobsConfig struct {
	SnapshotSpec  string
	SweepSpec     string
	Stream        string
	EventStream   string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type AppConfig struct {
	Environment string
	Log         LogConfig
	HTTP        HTTPConfig
	KV          KVConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Security    SecurityConfig
	Demo        DemoConfig
	Jobs        JobsConfig
}

// RedisEnabled reports whether a redis address was configured. Without it
// jobs run inline and catalog events stay in process.
func (c *AppConfig) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *AppConfig) SnapshotsEnabled() bool {
	return c.Storage.Endpoint != ""
}

func Load() (*AppConfig, error) {
	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SMARTREADS")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.KV.Backend {
	case KVBackendMemory, KVBackendSQLite:
	case KVBackendRedis:
		if !c.RedisEnabled() {
			return fmt.Errorf("kv backend redis requires redis.addr")
		}
	case KVBackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("kv backend postgres requires postgres.dsn")
		}
	default:
		return fmt.Errorf("unknown kv backend %q", c.KV.Backend)
	}

	if c.Environment == "production" && c.Security.ProfileSecret == "" {
		return fmt.Errorf("security.profilesecret is required in production")
	}
	// Snapshot signatures are keyed on the profile secret.
	if c.Storage.RestoreOnStart && c.Security.ProfileSecret == "" {
		return fmt.Errorf("storage.restoreonstart requires security.profilesecret")
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.sessionttl must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log.level", "")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.alloworigins", []string{})

	v.SetDefault("kv.backend", KVBackendMemory)
	v.SetDefault("kv.sqlitepath", "smartreads.db")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucketsnapshots", "smartreads-snapshots")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.restoreonstart", false)

	v.SetDefault("security.profilesecret", "")
	v.SetDefault("security.profilettl", "8760h") // one year
	v.SetDefault("security.sessionttl", "24h")
	v.SetDefault("security.ratelimit", 0) // off; sign-in is never throttled unless configured
	v.SetDefault("security.burst", 20)
	v.SetDefault("security.securecookies", false)

	v.SetDefault("demo.enabled", true)
	v.SetDefault("demo.latency", "1500ms")

	v.SetDefault("jobs.snapshotspec", "0 0 */6 * * *")
	v.SetDefault("jobs.sweepspec", "0 */15 * * * *")
	v.SetDefault("jobs.stream", "smartreads:tasks")
	v.SetDefault("jobs.eventstream", "smartreads:events")
	v.SetDefault("jobs.group", "smartreads-workers")
	v.SetDefault("jobs.consumer", "smartreads-1")
	v.SetDefault("jobs.claiminterval", "30s")
}
