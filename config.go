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

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string        `yaml:"git_commit" envconfig:"LDK_GIT_COMMIT"`
	GitTag             string        `yaml:"git_tag" envconfig:"LDK_GIT_TAG"`
	BuildTime          string        `yaml:"build_time" envconfig:"LDK_BUILD_TIME"`
	IsProduction       bool          `yaml:"is_production" envconfig:"LDK_IS_PRODUCTION"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"LDK_LOG_LEVEL"`
	LogFile            string        `yaml:"log_file" envconfig:"LDK_LOG_FILE"`
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" envconfig:"LDK_OPS_ENDPOINTS_ENABLE"`
	ProfilerEnable     bool          `yaml:"profiler_enable" envconfig:"LDK_PROFILER_ENABLE"`
	Server             ServerConfig  `yaml:"server"`
	Store              StoreConfig   `yaml:"store"`
	Trail              TrailConfig   `yaml:"trail"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"LDK_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"LDK_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"LDK_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"LDK_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"LDK_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"LDK_SERVER_SHUTDOWN_TIMEOUT"`
}

// StoreConfig describes the flat file holding the full library state.
// The design assumes exactly one active writer process on that file.
type StoreConfig struct {
	FilePath string `yaml:"filepath" envconfig:"LDK_STORE_FILE_PATH"`
}

// TrailConfig describes the embedded circulation audit trail database.
type TrailConfig struct {
	Enable     bool          `yaml:"enable" envconfig:"LDK_TRAIL_ENABLE"`
	FilePath   string        `yaml:"filepath" envconfig:"LDK_TRAIL_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"LDK_TRAIL_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"LDK_TRAIL_BUCKET_NAME"`
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

	if len(config.Store.FilePath) == 0 {
		config.Store.FilePath = "library.json"
	}

	if config.Trail.Enable {
		if len(config.Trail.FilePath) == 0 {
			config.Trail.FilePath = "circulation.trail.db"
		}
		if len(config.Trail.BucketName) == 0 {
			config.Trail.BucketName = "circulation.events"
		}
		if config.Trail.Timeout == 0 {
			config.Trail.Timeout = 5 * time.Second
		}
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The config.env file is optional.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	if _, err = os.Stat("./config.env"); err == nil {
		if err = godotenv.Load("./config.env"); err != nil {
			return config, fmt.Errorf("failed to set environment configurations: %s", err)
		}
	}

	// Use environment variables with prefix `LDK`.
	err = LoadConfigEnvs("LDK", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
