// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	API struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		Debug   bool          `yaml:"debug"`
	} `yaml:"api"`

	Mock struct {
		Enabled    bool          `yaml:"enabled"`
		MinLatency time.Duration `yaml:"min_latency"`
		MaxLatency time.Duration `yaml:"max_latency"`
		Seed       int64         `yaml:"seed"`
		TokenTTL   time.Duration `yaml:"token_ttl"`
	} `yaml:"mock"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Auth struct {
		Enabled bool     `yaml:"enabled"`
		Tokens  []string `yaml:"tokens"` // Fallback static tokens
	} `yaml:"auth"`

	Tokens struct {
		Backend string `yaml:"backend"` // memory, redis or postgres
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			DB       int    `yaml:"db"`
			Password string `yaml:"password"`
			Prefix   string `yaml:"prefix"`
			KeyTTL   int    `yaml:"key_ttl"` // TTL in seconds, 0 keeps keys forever
		} `yaml:"redis"`
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			Table    string `yaml:"table"`
			Key      string `yaml:"key"`
		} `yaml:"postgres"`
	} `yaml:"tokens"`
}

// env mirrors the subset of Config that may be overridden from the
// environment, e.g. ADMIN_API_BASE_URL or ADMIN_MOCK_ENABLED.
type env struct {
	API struct {
		BaseURL string         `envconfig:"BASE_URL"`
		Timeout *time.Duration `envconfig:"TIMEOUT"`
		Debug   *bool          `envconfig:"DEBUG"`
	} `envconfig:"API"`
	Mock struct {
		Enabled    *bool          `envconfig:"ENABLED"`
		Seed       *int64         `envconfig:"SEED"`
		MinLatency *time.Duration `envconfig:"MIN_LATENCY"`
		MaxLatency *time.Duration `envconfig:"MAX_LATENCY"`
	} `envconfig:"MOCK"`
}

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "ADMIN"

func LoadConfig(filename string) (*Config, error) {
	config := &Config{}
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyEnv() error {
	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return fmt.Errorf("error reading environment: %w", err)
	}
	if e.API.BaseURL != "" {
		c.API.BaseURL = e.API.BaseURL
	}
	if e.API.Timeout != nil {
		c.API.Timeout = *e.API.Timeout
	}
	if e.API.Debug != nil {
		c.API.Debug = *e.API.Debug
	}
	if e.Mock.Enabled != nil {
		c.Mock.Enabled = *e.Mock.Enabled
	}
	if e.Mock.Seed != nil {
		c.Mock.Seed = *e.Mock.Seed
	}
	if e.Mock.MinLatency != nil {
		c.Mock.MinLatency = *e.Mock.MinLatency
	}
	if e.Mock.MaxLatency != nil {
		c.Mock.MaxLatency = *e.Mock.MaxLatency
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080/api"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.Mock.MinLatency == 0 && c.Mock.MaxLatency == 0 {
		c.Mock.MinLatency = 200 * time.Millisecond
		c.Mock.MaxLatency = 700 * time.Millisecond
	}
	if c.Mock.TokenTTL == 0 {
		c.Mock.TokenTTL = 2 * time.Hour
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Tokens.Backend == "" {
		c.Tokens.Backend = "memory"
	}
	if c.Tokens.Redis.Prefix == "" {
		c.Tokens.Redis.Prefix = "admin:"
	}
	if c.Tokens.Postgres.Table == "" {
		c.Tokens.Postgres.Table = "admin_tokens"
	}
	if c.Tokens.Postgres.Key == "" {
		c.Tokens.Postgres.Key = "default"
	}
}
