package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment      string
	LogLevel         zerolog.Level
	HTTPTimeout      time.Duration
	GeocodeBaseURL   string
	GeocodeUserAgent string
	GeocodeCacheSize int
	StationsTable    string
	ReviewsTable     string
	ImageBucket      string
	PollInterval     time.Duration
	StationListTTL   time.Duration
	ListenAddr       string
	JWTSecret        string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:      "production",
		LogLevel:         zerolog.InfoLevel,
		HTTPTimeout:      10 * time.Second,
		GeocodeBaseURL:   "https://nominatim.openstreetmap.org",
		GeocodeUserAgent: "tapstations/1.0",
		GeocodeCacheSize: 1000,
		StationsTable:    "water-stations",
		ReviewsTable:     "station-reviews",
		ImageBucket:      "tapstations-images",
		PollInterval:     15 * time.Second,
		StationListTTL:   24 * time.Hour,
		ListenAddr:       ":8080",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// LoadFromEnv loads configuration from environment variables. When
// CONFIG_FILE is set, the YAML file is applied first and the environment
// overrides it.
func LoadFromEnv() (*Config, error) {
	cfg := New()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Environment = getEnvOrDefault("ENV", cfg.Environment)
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		WithLogLevel(level)(cfg)
	}
	cfg.HTTPTimeout = getDurationEnvOrDefault("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.GeocodeBaseURL = getEnvOrDefault("GEOCODE_BASE_URL", cfg.GeocodeBaseURL)
	cfg.GeocodeUserAgent = getEnvOrDefault("GEOCODE_USER_AGENT", cfg.GeocodeUserAgent)
	cfg.GeocodeCacheSize = getIntEnvOrDefault("GEOCODE_CACHE_SIZE", cfg.GeocodeCacheSize)
	cfg.StationsTable = getEnvOrDefault("STATIONS_TABLE", cfg.StationsTable)
	cfg.ReviewsTable = getEnvOrDefault("REVIEWS_TABLE", cfg.ReviewsTable)
	cfg.ImageBucket = getEnvOrDefault("IMAGE_BUCKET", cfg.ImageBucket)
	cfg.PollInterval = getDurationEnvOrDefault("POLL_INTERVAL", cfg.PollInterval)
	cfg.StationListTTL = getDurationEnvOrDefault("STATION_LIST_TTL", cfg.StationListTTL)
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.JWTSecret)

	return cfg, nil
}

// fileConfig mirrors Config for YAML decoding. Durations are strings in
// time.ParseDuration form and the log level is its zerolog name.
type fileConfig struct {
	Environment      string `yaml:"environment"`
	LogLevel         string `yaml:"logLevel"`
	HTTPTimeout      string `yaml:"httpTimeout"`
	GeocodeBaseURL   string `yaml:"geocodeBaseUrl"`
	GeocodeUserAgent string `yaml:"geocodeUserAgent"`
	GeocodeCacheSize int    `yaml:"geocodeCacheSize"`
	StationsTable    string `yaml:"stationsTable"`
	ReviewsTable     string `yaml:"reviewsTable"`
	ImageBucket      string `yaml:"imageBucket"`
	PollInterval     string `yaml:"pollInterval"`
	StationListTTL   string `yaml:"stationListTtl"`
	ListenAddr       string `yaml:"listenAddr"`
	JWTSecret        string `yaml:"jwtSecret"`
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&c.Environment, fc.Environment)
	if fc.LogLevel != "" {
		WithLogLevel(fc.LogLevel)(c)
	}
	if err := setDuration(&c.HTTPTimeout, fc.HTTPTimeout); err != nil {
		return fmt.Errorf("config file %s: httpTimeout: %w", path, err)
	}
	setString(&c.GeocodeBaseURL, fc.GeocodeBaseURL)
	setString(&c.GeocodeUserAgent, fc.GeocodeUserAgent)
	if fc.GeocodeCacheSize > 0 {
		c.GeocodeCacheSize = fc.GeocodeCacheSize
	}
	setString(&c.StationsTable, fc.StationsTable)
	setString(&c.ReviewsTable, fc.ReviewsTable)
	setString(&c.ImageBucket, fc.ImageBucket)
	if err := setDuration(&c.PollInterval, fc.PollInterval); err != nil {
		return fmt.Errorf("config file %s: pollInterval: %w", path, err)
	}
	if err := setDuration(&c.StationListTTL, fc.StationListTTL); err != nil {
		return fmt.Errorf("config file %s: stationListTtl: %w", path, err)
	}
	setString(&c.ListenAddr, fc.ListenAddr)
	setString(&c.JWTSecret, fc.JWTSecret)
	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value string) error {
	if value == "" {
		return nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = duration
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
