package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	ConfigEnvPrefix    = "BKST"
	StorageDriverPG    = "postgres"
	StorageDriverBolt  = "bolt"
	defaultLogMaxSize  = 10
	defaultBoltTimeout = 5 * time.Second
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string          `yaml:"git_commit" envconfig:"BKST_GIT_COMMIT"`
	GitTag             string          `yaml:"git_tag" envconfig:"BKST_GIT_TAG"`
	BuildTime          string          `yaml:"build_time" envconfig:"BKST_BUILD_TIME"`
	IsProduction       bool            `yaml:"is_production" envconfig:"BKST_IS_PRODUCTION"`
	LogLevel           zapcore.Level   `yaml:"log_level" envconfig:"BKST_LOG_LEVEL"`
	LogFolder          string          `yaml:"log_folder" envconfig:"BKST_LOG_FOLDER"`
	LogMaxSize         int             `yaml:"log_max_size" envconfig:"BKST_LOG_MAX_SIZE"`
	OpsEndpointsEnable bool            `yaml:"ops_endpoints_enable" envconfig:"BKST_OPS_ENDPOINTS_ENABLE"`
	ProfilerEnable     bool            `yaml:"profiler_enable" envconfig:"BKST_PROFILER_ENABLE"`
	SwaggerEnable      bool            `yaml:"swagger_enable" envconfig:"BKST_SWAGGER_ENABLE"`
	Server             ServerConfig    `yaml:"server"`
	Storage            StorageConfig   `yaml:"storage"`
	Postgres           PostgresConfig  `yaml:"postgres"`
	BoltDB             BoltDBConfig    `yaml:"boltdb"`
	Redis              RedisConfig     `yaml:"redis"`
	Events             EventsConfig    `yaml:"events"`
	RateLimit          RateLimitConfig `yaml:"ratelimit"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BKST_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"BKST_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"BKST_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"BKST_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"BKST_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"BKST_SERVER_SHUTDOWN_TIMEOUT"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"BKST_STORAGE_DRIVER"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn" envconfig:"BKST_POSTGRES_DSN" json:"-"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"BKST_POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"BKST_POSTGRES_MAX_IDLE_CONNS"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" envconfig:"BKST_POSTGRES_CONN_MAX_IDLE_TIME"`
	PingTimeout     time.Duration `yaml:"ping_timeout" envconfig:"BKST_POSTGRES_PING_TIMEOUT"`
}

type BoltDBConfig struct {
	FilePath string        `yaml:"filepath" envconfig:"BKST_BOLTDB_FILE_PATH"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"BKST_BOLTDB_TIMEOUT"`
}

type RedisConfig struct {
	Enable        bool          `yaml:"enable" envconfig:"BKST_REDIS_ENABLE"`
	Host          string        `yaml:"host" envconfig:"BKST_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BKST_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BKST_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BKST_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BKST_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BKST_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BKST_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BKST_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BKST_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BKST_REDIS_DATABASE_INDEX"`
}

type EventsConfig struct {
	JournalEnable bool `yaml:"journal_enable" envconfig:"BKST_EVENTS_JOURNAL_ENABLE"`
	JournalSize   int  `yaml:"journal_size" envconfig:"BKST_EVENTS_JOURNAL_SIZE"`
}

type RateLimitConfig struct {
	Enable bool    `yaml:"enable" envconfig:"BKST_RATELIMIT_ENABLE"`
	RPS    float64 `yaml:"rps" envconfig:"BKST_RATELIMIT_RPS"`
	Burst  int     `yaml:"burst" envconfig:"BKST_RATELIMIT_BURST"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = defaultLogMaxSize
	}

	if config.BoltDB.Timeout == 0 {
		config.BoltDB.Timeout = defaultBoltTimeout
	}

	if config.Events.JournalSize <= 0 {
		config.Events.JournalSize = 100
	}

	switch config.Storage.Driver {
	case "":
		config.Storage.Driver = StorageDriverPG
		fallthrough
	case StorageDriverPG:
		if len(config.Postgres.DSN) == 0 {
			return errors.New("make sure to set a valid postgres dsn in configuration file")
		}
	case StorageDriverBolt:
		if len(config.BoltDB.FilePath) == 0 {
			return errors.New("make sure to set a valid boltdb file path in configuration file")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	if config.Redis.Enable && (len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0) {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	// the journal consumer is the only reader of the redis event lists.
	if config.Redis.Enable && !config.Events.JournalEnable {
		return errors.New("redis events queue requires the events journal to be enabled")
	}

	if config.Events.JournalEnable && len(config.BoltDB.FilePath) == 0 {
		return errors.New("events journal requires a boltdb file path")
	}

	if config.RateLimit.Enable && (config.RateLimit.RPS <= 0 || config.RateLimit.Burst <= 0) {
		return errors.New("rate limit requires positive rps and burst values")
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The env file is optional.
func LoadAndInitConfigs(configFile, envFile, gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	if _, serr := os.Stat(envFile); serr == nil {
		if err = godotenv.Load(envFile); err != nil {
			return config, fmt.Errorf("failed to set environment configurations: %s", err)
		}
	}

	// Use environment variables with prefix `BKST`.
	err = LoadConfigEnvs(ConfigEnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
