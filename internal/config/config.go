package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for our application
type Config struct {
	Narodmon      NarodmonConfig      `mapstructure:"narodmon"`
	HomeAssistant HomeAssistantConfig `mapstructure:"homeassistant"`
	Location      LocationConfig      `mapstructure:"location"`
	Schedule      ScheduleConfig      `mapstructure:"schedule"`
	Removal       RemovalConfig       `mapstructure:"removal"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	MQTT          MQTTConfig          `mapstructure:"mqtt"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type NarodmonConfig struct {
	URL            string        `mapstructure:"url"`
	APIKey         string        `mapstructure:"api_key"`
	UUID           string        `mapstructure:"uuid"`
	Lang           string        `mapstructure:"lang"`
	Radius         int           `mapstructure:"radius"`
	UTCOffset      int           `mapstructure:"utc"`
	NearbyTimeout  time.Duration `mapstructure:"nearby_timeout"`
	CatalogTimeout time.Duration `mapstructure:"catalog_timeout"`
	CatalogTTL     time.Duration `mapstructure:"catalog_ttl"`
}

type HomeAssistantConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
	Zone  string `mapstructure:"zone"`
}

// LocationConfig pins the search point. When both values are zero the
// coordinates are read from the Home Assistant zone instead.
type LocationConfig struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type ScheduleConfig struct {
	StartupDelay time.Duration `mapstructure:"startup_delay"`
	Interval     time.Duration `mapstructure:"interval"`
}

type RemovalConfig struct {
	Prefixes []string      `mapstructure:"prefixes"`
	Pause    time.Duration `mapstructure:"pause"`
}

type ServerConfig struct {
	GRPCPort       int      `mapstructure:"grpc_port"`
	HTTPPort       int      `mapstructure:"http_port"`
	Host           string   `mapstructure:"host"`
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
}

// DatabaseConfig selects the optional aggregate history sink. Driver is one
// of "", "timescale" or "influx".
type DatabaseConfig struct {
	Driver            string `mapstructure:"driver"`
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	Name              string `mapstructure:"name"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	SSLMode           string `mapstructure:"ssl_mode"`
	MaxConnections    int    `mapstructure:"max_connections"`
	ConnectionTimeout int    `mapstructure:"connection_timeout"`

	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org"`
	Bucket string `mapstructure:"bucket"`
}

type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	Port        int    `mapstructure:"port"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
//
// A .env file next to the config file, if present, is loaded into the
// environment first. Variables already set in the environment win.
func Load(path string) (*Config, error) {
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// First unmarshal into a map to handle type conversions
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw config: %w", err)
	}

	// Convert the map to YAML again
	data, err = yaml.Marshal(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raw config: %w", err)
	}

	// Expand environment variables
	expandedData := os.ExpandEnv(string(data))

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadConfig(bytes.NewBufferString(expandedData)); err != nil {
		return nil, fmt.Errorf("failed to read expanded config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("narodmon.url", "http://api.narodmon.ru")
	v.SetDefault("narodmon.api_key", "")
	v.SetDefault("narodmon.uuid", "")
	v.SetDefault("narodmon.lang", "ru")
	v.SetDefault("narodmon.radius", 10)
	v.SetDefault("narodmon.utc", 3)
	v.SetDefault("narodmon.nearby_timeout", 15*time.Second)
	v.SetDefault("narodmon.catalog_timeout", 10*time.Second)
	v.SetDefault("narodmon.catalog_ttl", 24*time.Hour)

	v.SetDefault("homeassistant.url", "http://localhost:8123")
	v.SetDefault("homeassistant.token", "")
	v.SetDefault("homeassistant.zone", "zone.home")

	v.SetDefault("schedule.startup_delay", 30*time.Second)
	v.SetDefault("schedule.interval", 30*time.Minute)

	v.SetDefault("removal.prefixes", []string{"sensor.narodmon_", "sensor.test_", "input_text.narodmon_"})
	v.SetDefault("removal.pause", 100*time.Millisecond)

	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.http_port", 9102)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.connection_timeout", 5)
	v.SetDefault("database.bucket", "narodmon")

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.client_id", "narodmon-avg")
	v.SetDefault("mqtt.topic_prefix", "narodmon")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// PostgresDSN builds a lib/pq connection string.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.ConnectionTimeout,
	)
}
