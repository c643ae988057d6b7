package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Workers  WorkersConfig  `yaml:"workers"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver             string        `yaml:"driver"` // "sqlite" or "mysql"
	Path               string        `yaml:"path"`   // sqlite database file
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type StorageConfig struct {
	Backend string             `yaml:"backend"` // "local" or "s3"
	Local   LocalStorageConfig `yaml:"local"`
	S3      S3Config           `yaml:"s3"`
}

type LocalStorageConfig struct {
	Dir string `yaml:"dir"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// IngestConfig holds the upload and parse tuning knobs. The progress steps
// are heuristic ticks, not byte- or row-accurate fractions.
type IngestConfig struct {
	UploadChunkSize   int `yaml:"upload_chunk_size"`   // bytes per tick while streaming an upload
	UploadTickPercent int `yaml:"upload_tick_percent"` // progress added per chunk
	UploadTickCeiling int `yaml:"upload_tick_ceiling"` // upload ticks never pass this
	ParseBatchSize    int `yaml:"parse_batch_size"`    // rows per bulk insert
	ParseTickPercent  int `yaml:"parse_tick_percent"`  // progress added per flushed batch
	ParseTickCeiling  int `yaml:"parse_tick_ceiling"`  // parse ticks never pass this
}

type WorkersConfig struct {
	Parse ParseWorkerConfig `yaml:"parse"`
}

type ParseWorkerConfig struct {
	Count      int `yaml:"count"`
	QueueDepth int `yaml:"queue_depth"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "file-parser-service",
			Version: "1.0.0",
			Env:     "development",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:             "sqlite",
			Path:               "app.db",
			Charset:            "utf8mb4",
			ParseTime:          true,
			Loc:                "UTC",
			MaxConnections:     10,
			MaxIdleConnections: 5,
			ConnectionLifetime: 5 * time.Minute,
		},
		Storage: StorageConfig{
			Backend: "local",
			Local:   LocalStorageConfig{Dir: "uploads"},
		},
		Ingest: IngestConfig{
			UploadChunkSize:   1 << 20,
			UploadTickPercent: 5,
			UploadTickCeiling: 95,
			ParseBatchSize:    500,
			ParseTickPercent:  1,
			ParseTickCeiling:  99,
		},
		Workers: WorkersConfig{
			Parse: ParseWorkerConfig{Count: 4, QueueDepth: 64},
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load returns the defaults overlaid with the YAML file at CONFIG_PATH
// (config.yaml when unset). A missing file at the default path is not an
// error; a missing file at an explicit CONFIG_PATH is.
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	explicit := configPath != ""
	if !explicit {
		configPath = "config.yaml"
	}

	config := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}
