package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service settings, populated from environment variables
// and an optional config.yaml.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Google geocoding configuration.
	GoogleAPIKey     string
	GoogleGeocodeURL string
	GoogleTimeout    time.Duration
	GoogleRPS        int

	// Bias applied to every forward geocode.
	GeocodeCountry string
	GeocodeState   string
	GeocodeKmBias  float64

	// Resolution cache configuration.
	ResolveCacheSize int
	ResolveCacheTTL  time.Duration
	CacheWriteDelay  time.Duration

	// Resolution event publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

var defaults = map[string]any{
	"HTTP_ADDR":          ":8080",
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "json",
	"SHUTDOWN_TIMEOUT":   "10s",
	"GOOGLE_API_KEY":     "",
	"GOOGLE_GEOCODE_URL": "https://maps.googleapis.com/maps/api/geocode/json",
	"GOOGLE_TIMEOUT":     "5s",
	"GOOGLE_RPS":         "10",
	"GEOCODE_COUNTRY":    "US",
	"GEOCODE_STATE":      "",
	"GEOCODE_KM_BIAS":    "50",
	"RESOLVE_CACHE_SIZE": "1000",
	"RESOLVE_CACHE_TTL":  "24h",
	"CACHE_WRITE_DELAY":  "0s",
	"KAFKA_ENABLED":      "false",
	"KAFKA_BROKERS":      "localhost:9092",
	"KAFKA_TOPIC":        "location-resolutions",
}

// Load reads configuration from the environment and an optional config file,
// applying defaults where unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	p := parser{v: v}
	cfg := &Config{
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		ShutdownTimeout:  p.positiveDuration("SHUTDOWN_TIMEOUT"),
		GoogleAPIKey:     v.GetString("GOOGLE_API_KEY"),
		GoogleGeocodeURL: v.GetString("GOOGLE_GEOCODE_URL"),
		GoogleTimeout:    p.positiveDuration("GOOGLE_TIMEOUT"),
		GoogleRPS:        p.positiveInt("GOOGLE_RPS"),
		GeocodeCountry:   strings.ToUpper(v.GetString("GEOCODE_COUNTRY")),
		GeocodeState:     strings.ToUpper(v.GetString("GEOCODE_STATE")),
		GeocodeKmBias:    p.positiveFloat("GEOCODE_KM_BIAS"),
		ResolveCacheSize: p.positiveInt("RESOLVE_CACHE_SIZE"),
		ResolveCacheTTL:  p.duration("RESOLVE_CACHE_TTL"),
		CacheWriteDelay:  p.duration("CACHE_WRITE_DELAY"),
		KafkaEnabled:     p.boolean("KAFKA_ENABLED"),
		KafkaBrokers:     parseBrokers(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:       v.GetString("KAFKA_TOPIC"),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.GoogleGeocodeURL == "" {
		return nil, errors.New("GOOGLE_GEOCODE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

// parser records the first conversion error so Load can report it by key.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) fail(key, value string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %q", key, value)
	}
}

func (p *parser) duration(key string) time.Duration {
	s := p.v.GetString(key)
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		p.fail(key, s)
		return 0
	}
	return d
}

func (p *parser) positiveDuration(key string) time.Duration {
	d := p.duration(key)
	if d == 0 {
		p.fail(key, p.v.GetString(key))
	}
	return d
}

func (p *parser) positiveInt(key string) int {
	s := p.v.GetString(key)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		p.fail(key, s)
		return 0
	}
	return n
}

func (p *parser) positiveFloat(key string) float64 {
	s := p.v.GetString(key)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		p.fail(key, s)
		return 0
	}
	return f
}

func (p *parser) boolean(key string) bool {
	s := p.v.GetString(key)
	b, err := strconv.ParseBool(s)
	if err != nil {
		p.fail(key, s)
		return false
	}
	return b
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
