// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jsamuelsen/flight-watcher/internal/domain"
)

// Default configuration values.
const (
	// DefaultServerPort is the default liveness server port.
	DefaultServerPort = 10000

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultClientRetryMaxAttempts is the default number of attempts per outbound call.
	// A single attempt: a failed fetch is reported, not retried.
	DefaultClientRetryMaxAttempts = 1

	// DefaultClientRetryMultiplier is the default exponential backoff multiplier.
	DefaultClientRetryMultiplier = 2.0

	// DefaultClientRetryJitterFactor is the default jitter percentage (±25%).
	DefaultClientRetryJitterFactor = 0.25

	// DefaultClientCircuitMaxFailures is the default failures before circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close circuit.
	DefaultClientCircuitHalfOpenLimit = 1

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 10

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 2

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28

	// DefaultSMTPPort is the implicit-TLS submission port.
	DefaultSMTPPort = 465
)

// Mail transports. Exactly one is used per deployment.
const (
	TransportSendGrid = "sendgrid"
	TransportSMTP     = "smtp"
	TransportSES      = "ses"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Pricing   PricingConfig   `koanf:"pricing"   validate:"required"`
	Route     RouteConfig     `koanf:"route"     validate:"required"`
	Mail      MailConfig      `koanf:"mail"      validate:"required"`
	Schedule  ScheduleConfig  `koanf:"schedule"  validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains liveness server settings.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains HTTP client settings for downstream services.
type ClientConfig struct {
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// PricingConfig configures the flight-pricing search API.
type PricingConfig struct {
	BaseURL       string        `koanf:"base_url"       validate:"required,url"`
	APIKey        string        `koanf:"api_key"        validate:"required"`
	Engine        string        `koanf:"engine"         validate:"required"`
	ParseStrategy string        `koanf:"parse_strategy" validate:"required,oneof=auto best_flights price_insights"`
	Timeout       time.Duration `koanf:"timeout"        validate:"required,min=100ms"`
}

// RouteConfig describes the watched itinerary.
type RouteConfig struct {
	Origin          string `koanf:"origin"           validate:"required,len=3,uppercase"`
	OriginName      string `koanf:"origin_name"      validate:"required"`
	Destination     string `koanf:"destination"      validate:"required,len=3,uppercase,nefield=Origin"`
	DestinationName string `koanf:"destination_name" validate:"required"`
	Date            string `koanf:"date"             validate:"required,datetime=2006-01-02"`
	Stops           int    `koanf:"stops"            validate:"min=0,max=2"`
	Currency        string `koanf:"currency"         validate:"required,currency"`
	CurrencySymbol  string `koanf:"currency_symbol"`
	Locale          string `koanf:"locale"           validate:"required,locale"`
}

// MailConfig configures notification delivery. Transport-specific fields are
// only required for the selected transport.
type MailConfig struct {
	Transport string `koanf:"transport" validate:"required,oneof=sendgrid smtp ses"`
	Sender    string `koanf:"sender"    validate:"required,email"`
	Recipient string `koanf:"recipient" validate:"required,email"`

	SendGridAPIKey  string        `koanf:"sendgrid_api_key"  validate:"required_if=Transport sendgrid"`
	SendGridBaseURL string        `koanf:"sendgrid_base_url" validate:"required_if=Transport sendgrid,omitempty,url"`
	SendGridTimeout time.Duration `koanf:"sendgrid_timeout"  validate:"required_if=Transport sendgrid"`

	SMTPHost     string        `koanf:"smtp_host"     validate:"required_if=Transport smtp"`
	SMTPPort     int           `koanf:"smtp_port"     validate:"required_if=Transport smtp,omitempty,min=1,max=65535"`
	SMTPPassword string        `koanf:"smtp_password" validate:"required_if=Transport smtp"`
	SMTPTimeout  time.Duration `koanf:"smtp_timeout"`

	SESRegion string `koanf:"ses_region" validate:"required_if=Transport ses"`
}

// ScheduleConfig configures the polling loop.
type ScheduleConfig struct {
	Interval time.Duration `koanf:"interval" validate:"required,min=1m"`
}

// envAliases maps the well-known deployment variables to config keys.
// APP_-prefixed variables still reach every key.
var envAliases = map[string]string{
	"SERP_API_KEY":     "pricing.api_key",
	"SENDGRID_API_KEY": "mail.sendgrid_api_key",
	"SENDER_EMAIL":     "mail.sender",
	"SENDER_PASSWORD":  "mail.smtp_password",
	"RECEIVER_EMAIL":   "mail.recipient",
	"MAIL_TRANSPORT":   "mail.transport",
	"AWS_REGION":       "mail.ses_region",
	"PORT":             "server.port",
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "flight-watcher",
		"app.version":     "dev",
		"app.environment": "local",

		"server.enabled":          true,
		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "10s",
		"server.write_timeout":    "10s",
		"server.idle_timeout":     "60s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/flight-watcher.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "flight-watcher",
		"telemetry.sampling_rate": 1.0,

		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30m",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"pricing.base_url":       "https://serpapi.com",
		"pricing.api_key":        "",
		"pricing.engine":         "google_flights",
		"pricing.parse_strategy": "auto",
		"pricing.timeout":        "30s",

		"route.origin":           "PNQ",
		"route.origin_name":      "Pune",
		"route.destination":      "VNS",
		"route.destination_name": "Varanasi",
		"route.date":             "2025-12-15",
		"route.stops":            0,
		"route.currency":         "INR",
		"route.currency_symbol":  "₹",
		"route.locale":           "en",

		"mail.transport":         TransportSendGrid,
		"mail.sendgrid_base_url": "https://api.sendgrid.com",
		"mail.sendgrid_timeout":  "20s",
		"mail.smtp_host":         "smtp.gmail.com",
		"mail.smtp_port":         DefaultSMTPPort,
		"mail.smtp_timeout":      "30s",

		"schedule.interval": "3h",
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Well-known deployment variables (SERP_API_KEY, RECEIVER_EMAIL, PORT, ...)
//  3. Profile config file (configs/{profile}.yaml)
//  4. Base config file (configs/base.yaml)
//  5. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load well-known deployment variables; unknown names are skipped
	err = k.Load(env.Provider("", ".", func(s string) string {
		return envAliases[s]
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading deployment env vars: %w", err)
	}

	// 5. Load environment variables with APP_ prefix.
	// Single underscores become dots, double underscores stay as one underscore:
	// APP_PRICING_API__KEY -> pricing.api_key
	err = k.Load(env.Provider("APP_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "APP_"))
		key = strings.ReplaceAll(key, "__", "\x00")
		key = strings.ReplaceAll(key, "_", ".")

		return strings.ReplaceAll(key, "\x00", "_")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// ToDomain converts the validated route settings into a domain.Route.
// An empty currency symbol is derived from the currency code.
func (r RouteConfig) ToDomain() (domain.Route, error) {
	date, err := time.Parse(domain.DateLayout, r.Date)
	if err != nil {
		return domain.Route{}, fmt.Errorf("parsing route date %q: %w", r.Date, err)
	}

	symbol := r.CurrencySymbol
	if symbol == "" {
		symbol = currencySymbol(r.Currency)
	}

	return domain.Route{
		Origin:          r.Origin,
		OriginName:      r.OriginName,
		Destination:     r.Destination,
		DestinationName: r.DestinationName,
		Date:            date,
		Stops:           r.Stops,
		Currency:        r.Currency,
		CurrencySymbol:  symbol,
		Locale:          r.Locale,
	}, nil
}
