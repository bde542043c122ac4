package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/storm-radar-etl/internal/domain"
)

// DefaultDataURL is the JSON data-access gateway in front of the Unidata EDEX cloud server.
const DefaultDataURL = "http://edex-cloud.unidata.ucar.edu:9581/services/json"

// Config holds all settings, populated from environment variables.
type Config struct {
	DataURL     string
	DataTimeout time.Duration
	ProductCode string

	Sites        []string
	PollInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Sinks. An empty broker list or archive path disables the sink.
	KafkaBrokers []string
	KafkaTopic   string
	ArchivePath  string

	ProjectionCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
// The product code is validated against catalog.
func Load(catalog domain.Catalog) (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	dataTimeout, err := parsePositiveDuration("DATA_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		DataURL:     strings.TrimRight(sharedcfg.EnvOrDefault("RADAR_DATA_URL", DefaultDataURL), "/"),
		DataTimeout: dataTimeout,
		ProductCode: strings.ToUpper(sharedcfg.EnvOrDefault("PRODUCT_CODE", "N0Q")),

		Sites:        parseSites(sharedcfg.EnvOrDefault("RADAR_SITES", "kmux")),
		PollInterval: pollInterval,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "radar-sweeps"),
		ArchivePath:  os.Getenv("ARCHIVE_PATH"),

		ProjectionCacheSize: parseProjectionCacheSize(),
	}

	if cfg.DataURL == "" {
		return nil, errors.New("RADAR_DATA_URL is required")
	}
	if _, ok := catalog.Lookup(cfg.ProductCode); !ok {
		return nil, errors.New("PRODUCT_CODE " + strconv.Quote(cfg.ProductCode) +
			" is not one of " + strings.Join(catalog.Codes(), ", "))
	}
	if len(cfg.Sites) == 0 {
		return nil, errors.New("RADAR_SITES is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether sweeps are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// ArchiveEnabled reports whether sweeps are written to the SQLite archive.
func (c *Config) ArchiveEnabled() bool { return c.ArchivePath != "" }

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseSites(s string) []string {
	var sites []string
	for _, part := range strings.Split(s, ",") {
		if site := domain.NormalizeSite(part); site != "" {
			sites = append(sites, site)
		}
	}
	return sites
}

func parseProjectionCacheSize() int {
	if s := os.Getenv("PROJECTION_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 4096
}
