package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout    time.Duration `koanf:"read_timeout"`
		WriteTimeout   time.Duration `koanf:"write_timeout"`
		IdleTimeout    time.Duration `koanf:"idle_timeout"`
		RequestTimeout time.Duration `koanf:"request_timeout"`
	} `koanf:"http"`

	// Storage selects the persistence adapters: "mysql" or "memory" (local demo, tests).
	Storage struct {
		Driver string `koanf:"driver"`
	} `koanf:"storage"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
		Migrate         bool          `koanf:"migrate"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Session struct {
		CookieName string        `koanf:"cookie_name"`
		TTL        time.Duration `koanf:"ttl"`
		Secure     bool          `koanf:"secure"`
	} `koanf:"session"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Cache struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"cache"`

	Rabbit struct {
		Enabled  bool   `koanf:"enabled"`
		URL      string `koanf:"url"`
		Exchange string `koanf:"exchange"`
		Prefetch int    `koanf:"prefetch"`
	} `koanf:"rabbitmq"`

	Outbox struct {
		Interval  time.Duration `koanf:"interval"`
		BatchSize int           `koanf:"batch_size"`
	} `koanf:"outbox"`

	Kafka struct {
		Enabled       bool     `koanf:"enabled"`
		Brokers       []string `koanf:"brokers"`
		GroupID       string   `koanf:"group_id"`
		TopicPayments string   `koanf:"topic_payments"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`

	Payment struct {
		// Provider is "razorpay" or "sandbox".
		Provider         string        `koanf:"provider"`
		BaseURL          string        `koanf:"base_url"`
		KeyID            string        `koanf:"key_id"`
		KeySecret        string        `koanf:"key_secret"`
		Currency         string        `koanf:"currency"`
		Timeout          time.Duration `koanf:"timeout"`
		SimulateCheckout bool          `koanf:"simulate_checkout"`
	} `koanf:"payment"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod), optional
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables, prefix GSTORE_, nested with __
	// e.g. GSTORE_MYSQL__DSN, GSTORE_PAYMENT__KEY_SECRET
	if err := k.Load(env.Provider("GSTORE_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "GSTORE_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "mysql"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sid"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 14 * 24 * time.Hour
	}
	if c.Payment.Provider == "" {
		c.Payment.Provider = "sandbox"
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "INR"
	}
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = 5 * time.Second
	}
	if c.Outbox.Interval <= 0 {
		c.Outbox.Interval = 2 * time.Second
	}
	if c.Outbox.BatchSize <= 0 {
		c.Outbox.BatchSize = 100
	}
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	switch c.Storage.Driver {
	case "mysql":
		if c.MySQL.DSN == "" {
			return fmt.Errorf("mysql.dsn required")
		}
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr required")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.driver must be mysql or memory, got %q", c.Storage.Driver)
	}
	if c.Payment.KeySecret == "" {
		return fmt.Errorf("payment.key_secret required (signature verification)")
	}
	if c.Payment.Provider == "razorpay" && (c.Payment.BaseURL == "" || c.Payment.KeyID == "") {
		return fmt.Errorf("payment.base_url and payment.key_id required for razorpay")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka.enabled")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret required")
	}
	return nil
}
