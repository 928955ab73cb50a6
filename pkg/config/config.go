// Package config provides a reusable loader for chaingraphdb configuration
// files and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"chaingraphdb/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for a chaingraphdb process, shared by
// cmd/chaingraph and cmd/chaingraph-server. Load fills it from optional
// YAML files (default.yaml plus an environment-specific file) looked up
// under cmd/config and config; the repository ships no such file.
type Config struct {
	Storage struct {
		DataDir        string `mapstructure:"data_dir" json:"data_dir"`
		BufferPoolSize int    `mapstructure:"buffer_pool_size" json:"buffer_pool_size"`
		Compress       bool   `mapstructure:"compress" json:"compress"`
	} `mapstructure:"storage" json:"storage"`

	Catalog struct {
		Root          string `mapstructure:"root" json:"root"`
		DefaultGraph  string `mapstructure:"default_graph" json:"default_graph"`
	} `mapstructure:"catalog" json:"catalog"`

	Query struct {
		TimeoutMS    int `mapstructure:"timeout_ms" json:"timeout_ms"`
		MaxPathDepth int `mapstructure:"max_path_depth" json:"max_path_depth"`
	} `mapstructure:"query" json:"query"`

	Server struct {
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	} `mapstructure:"server" json:"server"`

	Import struct {
		Parallel   bool `mapstructure:"parallel" json:"parallel"`
		NumWorkers int  `mapstructure:"num_workers" json:"num_workers"`
	} `mapstructure:"import" json:"import"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetDefault("storage.buffer_pool_size", 1024)
	viper.SetDefault("catalog.root", "./data")
	viper.SetDefault("catalog.default_graph", "default")
	viper.SetDefault("server.listen_addr", ":8080")
	viper.SetDefault("logging.level", "info")

	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, utils.Wrap(err, "load config")
		}
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the CHAINGRAPH_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("CHAINGRAPH_ENV", ""))
}
