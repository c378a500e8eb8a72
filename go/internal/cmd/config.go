package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration loaded from config.yaml. Database
// credentials come from the environment, not from the file.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Sweeper struct {
		BatchSize int32 `yaml:"batch_size"`
	} `yaml:"sweeper"`
	Settings struct {
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	} `yaml:"settings"`
	Relay struct {
		PollIntervalSeconds int   `yaml:"poll_interval_seconds"`
		BatchSize           int32 `yaml:"batch_size"`
	} `yaml:"relay"`
	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	var config Config
	config.Server.Port = "8080"
	config.Sweeper.BatchSize = 50
	config.Settings.CacheTTLSeconds = 30
	config.Relay.PollIntervalSeconds = 5
	config.Relay.BatchSize = 100
	config.NATS.URL = "nats://localhost:4222"
	config.NATS.SubjectPrefix = "fantamarket"
	return &config
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

func (c *Config) settingsCacheTTL() time.Duration {
	return time.Duration(c.Settings.CacheTTLSeconds) * time.Second
}

func (c *Config) relayPollInterval() time.Duration {
	return time.Duration(c.Relay.PollIntervalSeconds) * time.Second
}
