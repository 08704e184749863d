package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/m04kA/SMC-RentalService/pkg/types"
)

// ErrInvalidConfig конфигурация содержит недопустимые значения
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Redis       RedisConfig       `toml:"redis"`
	RabbitMQ    RabbitMQConfig    `toml:"rabbitmq"`
	Booking     BookingConfig     `toml:"booking"`
	Negotiation NegotiationConfig `toml:"negotiation"`
	Contract    ContractConfig    `toml:"contract"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	MigrateOnStart  bool   `toml:"migrate_on_start"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig настройки redis для блокировок бронирования
// Пустой Addr - используется блокировка внутри процесса
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig настройки публикации уведомлений
// Пустой URL - уведомления только пишутся в лог
type RabbitMQConfig struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// BookingConfig настройки бронирования по умолчанию
type BookingConfig struct {
	TimeZone            string           `toml:"timezone"`
	SlotDurationMinutes int              `toml:"slot_duration_minutes"`
	OpenTime            types.TimeString `toml:"open_time"`
	CloseTime           types.TimeString `toml:"close_time"`
	LockTTLSeconds      int              `toml:"lock_ttl_seconds"`
	LockWaitSeconds     int              `toml:"lock_wait_seconds"`
}

// Location часовой пояс по умолчанию
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.TimeZone)
}

// LockTTL время жизни блокировки ресурса
func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

// LockWait сколько ждать освобождения блокировки
func (b BookingConfig) LockWait() time.Duration {
	return time.Duration(b.LockWaitSeconds) * time.Second
}

// NegotiationConfig настройки торга по ставке
type NegotiationConfig struct {
	TTLHours         int `toml:"ttl_hours"`
	MaxCounterRounds int `toml:"max_counter_rounds"` // 0 = без ограничения
}

// TTL срок жизни предложения
func (n NegotiationConfig) TTL() time.Duration {
	return time.Duration(n.TTLHours) * time.Hour
}

// ContractConfig настройки контрактов найма
type ContractConfig struct {
	TTLDays       int  `toml:"ttl_days"`
	EnforceExpiry bool `toml:"enforce_expiry"`
}

// TTL срок действия контракта
func (c ContractConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// Default конфигурация со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "rental",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			MigrateOnStart:  true,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "rental_service",
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: "notifications",
		},
		Booking: BookingConfig{
			TimeZone:            "UTC",
			SlotDurationMinutes: 60,
			OpenTime:            "09:00",
			CloseTime:           "18:00",
			LockTTLSeconds:      10,
			LockWaitSeconds:     3,
		},
		Negotiation: NegotiationConfig{
			TTLHours: 48,
		},
		Contract: ContractConfig{
			TTLDays: 7,
		},
	}
}

// Load читает конфигурацию из TOML файла, затем применяет переменные окружения (и .env, если есть)
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	_ = godotenv.Load(".env")
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Database.Host = cast.ToString(getOrReturnDefault("DB_HOST", cfg.Database.Host))
	cfg.Database.Port = cast.ToInt(getOrReturnDefault("DB_PORT", cfg.Database.Port))
	cfg.Database.User = cast.ToString(getOrReturnDefault("DB_USER", cfg.Database.User))
	cfg.Database.Password = cast.ToString(getOrReturnDefault("DB_PASSWORD", cfg.Database.Password))
	cfg.Database.DBName = cast.ToString(getOrReturnDefault("DB_NAME", cfg.Database.DBName))
	cfg.Server.HTTPPort = cast.ToInt(getOrReturnDefault("HTTP_PORT", cfg.Server.HTTPPort))
	cfg.Redis.Addr = cast.ToString(getOrReturnDefault("REDIS_ADDR", cfg.Redis.Addr))
	cfg.RabbitMQ.URL = cast.ToString(getOrReturnDefault("RABBITMQ_URL", cfg.RabbitMQ.URL))
	cfg.Logs.Level = cast.ToString(getOrReturnDefault("LOG_LEVEL", cfg.Logs.Level))
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// Validate проверяет значения, с которыми сервис не сможет работать
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port=%d", ErrInvalidConfig, c.Server.HTTPPort)
	}

	if c.Database.Port <= 0 {
		return fmt.Errorf("%w: database.port=%d", ErrInvalidConfig, c.Database.Port)
	}

	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.timezone=%q: %v", ErrInvalidConfig, c.Booking.TimeZone, err)
	}

	if c.Booking.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%w: booking.slot_duration_minutes must be positive", ErrInvalidConfig)
	}

	if err := c.Booking.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: booking.open_time: %v", ErrInvalidConfig, err)
	}
	if err := c.Booking.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: booking.close_time: %v", ErrInvalidConfig, err)
	}
	if !c.Booking.OpenTime.IsBefore(c.Booking.CloseTime) {
		return fmt.Errorf("%w: booking.close_time must be after open_time", ErrInvalidConfig)
	}

	if c.Booking.LockTTLSeconds <= 0 {
		return fmt.Errorf("%w: booking.lock_ttl_seconds must be positive", ErrInvalidConfig)
	}

	if c.Negotiation.TTLHours <= 0 {
		return fmt.Errorf("%w: negotiation.ttl_hours must be positive", ErrInvalidConfig)
	}
	if c.Negotiation.MaxCounterRounds < 0 {
		return fmt.Errorf("%w: negotiation.max_counter_rounds must not be negative", ErrInvalidConfig)
	}

	if c.Contract.TTLDays <= 0 {
		return fmt.Errorf("%w: contract.ttl_days must be positive", ErrInvalidConfig)
	}

	return nil
}
