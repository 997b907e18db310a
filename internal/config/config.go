package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Redis       RedisConfig       `toml:"redis"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
	UserService UserServiceConfig `toml:"user_service"`
	Kafka       KafkaConfig       `toml:"kafka"`
	Payment     PaymentConfig     `toml:"payment"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // пусто - только stdout
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`    // для локального token bucket
	Burst   int     `toml:"burst"`  // для локального token bucket
	Limit   int     `toml:"limit"`  // запросов в окно для Redis
	Window  int     `toml:"window"` // секунды
	Prefix  string  `toml:"prefix"`

	TrustProxy bool `toml:"trust_proxy"` // брать IP из X-Forwarded-For
	IdleTTL    int  `toml:"idle_ttl"`    // секунды, после которых простаивающий локальный бакет удаляется
}

type UserServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type KafkaConfig struct {
	Enabled      bool   `toml:"enabled"`
	Brokers      string `toml:"brokers"` // через запятую
	Topic        string `toml:"topic"`
	WriteTimeout int    `toml:"write_timeout"` // секунды
}

// PaymentConfig получатель оплаты подписок
type PaymentConfig struct {
	CollectorUserID int64  `toml:"collector_user_id"`
	QRCodeURL       string `toml:"qr_code_url"`
	SubscriptionFee string `toml:"subscription_fee"`
	Currency        string `toml:"currency"`
}

// Fee стоимость подписки
func (p PaymentConfig) Fee() (decimal.Decimal, error) {
	return decimal.NewFromString(p.SubscriptionFee)
}

// Load читает config.toml, затем .env (если есть) и переменные окружения
func Load(configPath string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", configPath, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	setString("DB_HOST", &c.Database.Host)
	setString("DB_USER", &c.Database.User)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_NAME", &c.Database.DBName)
	setString("REDIS_ADDR", &c.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Redis.Password)
	setString("KAFKA_BROKERS", &c.Kafka.Brokers)
	setString("LOG_LEVEL", &c.Logs.Level)
	setString("USER_SERVICE_URL", &c.UserService.URL)
	setString("PAYMENT_QR_CODE_URL", &c.Payment.QRCodeURL)

	if err := setInt("DB_PORT", &c.Database.Port); err != nil {
		return err
	}
	if err := setInt("HTTP_PORT", &c.Server.HTTPPort); err != nil {
		return err
	}
	if err := setBool("REDIS_ENABLED", &c.Redis.Enabled); err != nil {
		return err
	}
	if err := setBool("KAFKA_ENABLED", &c.Kafka.Enabled); err != nil {
		return err
	}

	if v, ok := os.LookupEnv("PAYMENT_COLLECTOR_USER_ID"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid PAYMENT_COLLECTOR_USER_ID: %w", err)
		}
		c.Payment.CollectorUserID = id
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "marketplace-service"
	}

	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if c.RateLimit.Limit == 0 {
		c.RateLimit.Limit = 600
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 60
	}
	if c.RateLimit.Prefix == "" {
		c.RateLimit.Prefix = "rl:marketplace"
	}
	if c.RateLimit.IdleTTL == 0 {
		c.RateLimit.IdleTTL = 600
	}

	if c.UserService.Timeout == 0 {
		c.UserService.Timeout = 5
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "marketplace.bookings"
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = 5
	}

	if c.Payment.SubscriptionFee == "" {
		c.Payment.SubscriptionFee = "0"
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "RUB"
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range", c.Server.HTTPPort)
	}
	if c.UserService.URL == "" {
		return errors.New("user_service.url is required")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	if c.RateLimit.IdleTTL < 0 {
		return fmt.Errorf("rate_limit.idle_ttl %d must not be negative", c.RateLimit.IdleTTL)
	}
	if c.Kafka.Enabled && strings.TrimSpace(c.Kafka.Brokers) == "" {
		return errors.New("kafka.brokers is required when kafka is enabled")
	}
	fee, err := c.Payment.Fee()
	if err != nil {
		return fmt.Errorf("payment.subscription_fee: %w", err)
	}
	if fee.IsNegative() {
		return errors.New("payment.subscription_fee must not be negative")
	}
	return nil
}
