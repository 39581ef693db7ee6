package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Lumen Route.
// All configuration is loaded from YAML and can be overridden by
// environment variables.
type Config struct {
	Listen   ListenConfig   `yaml:"listen"`
	Router   RouterConfig   `yaml:"router"`
	Mapping  MappingConfig  `yaml:"mapping"`
	Patch    PatchConfig    `yaml:"patch"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Capture  CaptureConfig  `yaml:"capture"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ListenConfig contains the eHuB feed socket settings.
type ListenConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// FilterUniverse, when set, drops messages whose claimed universe
	// differs. Nil means no filtering.
	FilterUniverse *int `yaml:"filter_universe"`
}

// Addr returns the UDP bind address.
func (l ListenConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

// RouterConfig contains the routing core's runtime options.
type RouterConfig struct {
	EmitIntervalMs           int `yaml:"emit_interval_ms"`
	MaxPPS                   int `yaml:"max_pps"`
	PerUniverseMinIntervalMs int `yaml:"per_universe_min_interval_ms"`
	QueueCapacity            int `yaml:"queue_capacity"`
	ObserverQueueCapacity    int `yaml:"observer_queue_capacity"`
}

// EmitInterval returns the emitter cadence as a Duration.
func (r RouterConfig) EmitInterval() time.Duration {
	return time.Duration(r.EmitIntervalMs) * time.Millisecond
}

// PerUniverseMinInterval returns the per-universe spacing as a Duration.
func (r RouterConfig) PerUniverseMinInterval() time.Duration {
	return time.Duration(r.PerUniverseMinIntervalMs) * time.Millisecond
}

// MappingConfig locates the entity mapping table.
type MappingConfig struct {
	// File is the path of the mapping JSON file.
	File string `yaml:"file"`

	// AllowedControllers, when non-empty, restricts mapping ranges to
	// the listed controller IPs.
	AllowedControllers []string `yaml:"allowed_controllers"`
}

// PatchConfig locates the optional channel patch table.
type PatchConfig struct {
	// File is the path of the patch JSON file. Empty means no patch.
	File string `yaml:"file"`
}

// MQTTConfig contains the status/event publisher settings.
type MQTTConfig struct {
	Enabled         bool                `yaml:"enabled"`
	Broker          MQTTBrokerConfig    `yaml:"broker"`
	Auth            MQTTAuthConfig      `yaml:"auth"`
	QoS             int                 `yaml:"qos"`
	Reconnect       MQTTReconnectConfig `yaml:"reconnect"`
	StatusIntervalS int                 `yaml:"status_interval_s"`
}

// StatusInterval returns the periodic status cadence as a Duration.
func (m MQTTConfig) StatusInterval() time.Duration {
	return time.Duration(m.StatusIntervalS) * time.Second
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains the telemetry sink settings.
type InfluxDBConfig struct {
	Enabled        bool   `yaml:"enabled"`
	URL            string `yaml:"url"`
	Token          string `yaml:"token"`
	Org            string `yaml:"org"`
	Bucket         string `yaml:"bucket"`
	BatchSize      int    `yaml:"batch_size"`
	FlushIntervalS int    `yaml:"flush_interval_s"`
}

// FlushInterval returns the counter flush cadence as a Duration.
func (i InfluxDBConfig) FlushInterval() time.Duration {
	return time.Duration(i.FlushIntervalS) * time.Second
}

// CaptureConfig contains the commissioning capture store settings.
type CaptureConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Listen: ListenConfig{
			Host: "0.0.0.0",
			Port: 5568,
		},
		Router: RouterConfig{
			EmitIntervalMs:        25,
			MaxPPS:                1000,
			QueueCapacity:         1024,
			ObserverQueueCapacity: 1024,
		},
		Mapping: MappingConfig{
			File: "configs/mapping.json",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lumenroute",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			StatusIntervalS: 10,
		},
		InfluxDB: InfluxDBConfig{
			URL:            "http://localhost:8086",
			Bucket:         "lumenroute",
			BatchSize:      100,
			FlushIntervalS: 10,
		},
		Capture: CaptureConfig{
			Path:        "./data/capture.db",
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides.
// Variables follow the pattern LUMENROUTE_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LUMENROUTE_LISTEN_HOST"); v != "" {
		cfg.Listen.Host = v
	}
	if v := os.Getenv("LUMENROUTE_LISTEN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Listen.Port = port
		}
	}
	if v := os.Getenv("LUMENROUTE_MAPPING_FILE"); v != "" {
		cfg.Mapping.File = v
	}
	if v := os.Getenv("LUMENROUTE_PATCH_FILE"); v != "" {
		cfg.Patch.File = v
	}
	if v := os.Getenv("LUMENROUTE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LUMENROUTE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LUMENROUTE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("LUMENROUTE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("LUMENROUTE_CAPTURE_PATH"); v != "" {
		cfg.Capture.Path = v
	}
	if v := os.Getenv("LUMENROUTE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	// Port 0 binds an ephemeral port, which tests rely on.
	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		errs = append(errs, "listen.port must be between 0 and 65535")
	}
	if c.Router.EmitIntervalMs < 1 {
		errs = append(errs, "router.emit_interval_ms must be at least 1")
	}
	if c.Router.MaxPPS < 1 {
		errs = append(errs, "router.max_pps must be at least 1")
	}
	if c.Router.PerUniverseMinIntervalMs < 0 {
		errs = append(errs, "router.per_universe_min_interval_ms must not be negative")
	}
	if c.Router.QueueCapacity < 1 {
		errs = append(errs, "router.queue_capacity must be at least 1")
	}
	if c.Mapping.File == "" {
		errs = append(errs, "mapping.file is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.Capture.Enabled && c.Capture.Path == "" {
		errs = append(errs, "capture.path is required when capture is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
