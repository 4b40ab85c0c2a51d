package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultDatabaseURL    = "file:studiodesk.db?_pragma=foreign_keys(1)"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultJWTTTL         = "24h"
	defaultRequestTimeout = "10s"
	defaultDisplayTZ      = "Asia/Kolkata"
	defaultLookupTTL      = "12h"
	defaultLiveTick       = "1m"
	defaultBookingTopic   = "studiodesk.bookings"
)

// Config is the runtime configuration. Values come from an optional YAML
// file (CONFIG_FILE) and are then overridden by environment variables.
type Config struct {
	AppEnv         string        `yaml:"app_env"`
	HTTPAddr       string        `yaml:"http_addr"`
	DatabaseURL    string        `yaml:"database_url"`
	JWTSecret      string        `yaml:"jwt_secret"`
	JWTTTL         time.Duration `yaml:"jwt_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DisplayTZ      string        `yaml:"display_tz"`
	LookupTTL      time.Duration `yaml:"lookup_ttl"`
	LiveTick       time.Duration `yaml:"live_tick"`
	CORSOrigins    []string      `yaml:"cors_allowed_origins"`

	Redis RedisConfig `yaml:"redis"`
	Kafka KafkaConfig `yaml:"kafka"`

	location *time.Location
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	BookingTopic string   `yaml:"booking_topic"`
}

// Location is the display timezone used for calendar dates and the time
// status of today's shoots.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func Load() (*Config, error) {
	cfg := &Config{}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = orDefault(cfg.AppEnv, "dev")
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", orDefault(cfg.HTTPAddr, defaultHTTPAddr)))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", orDefault(cfg.DatabaseURL, defaultDatabaseURL)))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", orDefault(cfg.JWTSecret, defaultJWTSecret)))
	cfg.DisplayTZ = strings.TrimSpace(getEnv("DISPLAY_TZ", orDefault(cfg.DisplayTZ, defaultDisplayTZ)))

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", cfg.JWTTTL, defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", cfg.RequestTimeout, defaultRequestTimeout); err != nil {
		return nil, err
	}
	if cfg.LookupTTL, err = parseDurationEnv("LOOKUP_TTL", cfg.LookupTTL, defaultLookupTTL); err != nil {
		return nil, err
	}
	if cfg.LiveTick, err = parseDurationEnv("LIVE_TICK", cfg.LiveTick, defaultLiveTick); err != nil {
		return nil, err
	}

	if origins := parseListEnv("CORS_ALLOWED_ORIGINS"); origins != nil {
		cfg.CORSOrigins = origins
	}

	cfg.Redis.Addr = strings.TrimSpace(getEnv("REDIS_ADDR", cfg.Redis.Addr))
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", v, err)
		}
		cfg.Redis.DB = db
	}

	if brokers := parseListEnv("KAFKA_BROKERS"); brokers != nil {
		cfg.Kafka.Brokers = brokers
	}
	cfg.Kafka.BookingTopic = strings.TrimSpace(getEnv("KAFKA_BOOKING_TOPIC", orDefault(cfg.Kafka.BookingTopic, defaultBookingTopic)))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s tz=%s redis=%t kafka=%t", cfg.AppEnv, cfg.HTTPAddr, cfg.DisplayTZ, cfg.Redis.Addr != "", len(cfg.Kafka.Brokers) > 0)

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if cfg.LookupTTL <= 0 {
		return fmt.Errorf("LOOKUP_TTL must be > 0")
	}
	if cfg.LiveTick < time.Second {
		return fmt.Errorf("LIVE_TICK must be at least 1s")
	}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.BookingTopic == "" {
		return fmt.Errorf("KAFKA_BOOKING_TOPIC must be set when KAFKA_BROKERS is set")
	}

	loc, err := time.LoadLocation(cfg.DisplayTZ)
	if err != nil {
		return fmt.Errorf("invalid DISPLAY_TZ value %q: %w", cfg.DisplayTZ, err)
	}
	cfg.location = loc

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

// IsProdLike reports whether the configured environment is a production one.
func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

// parseDurationEnv reads name from the environment, falling back to the value
// from the config file and then to def.
func parseDurationEnv(name string, current time.Duration, def string) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		if current != 0 {
			return current, nil
		}
		value = def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseListEnv(name string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
