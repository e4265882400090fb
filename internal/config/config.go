package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"photo-journal-backend/internal/classifier"
	"photo-journal-backend/internal/notifications"
	"photo-journal-backend/internal/storage"
	"photo-journal-backend/internal/uploader"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig         `yaml:"server"`
	Storage    storage.Config       `yaml:"storage"`
	Uploader   uploader.Config      `yaml:"uploader"`
	Classifier ClassifierConfig     `yaml:"classifier"`
	Enricher   EnricherConfig       `yaml:"enricher"`
	APNs       notifications.Config `yaml:"apns"`
	JWT        JWTConfig            `yaml:"jwt"`
	Log        LogConfig            `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// ClassifierConfig holds vision model settings
type ClassifierConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ToClient converts the YAML shape into the classifier client config.
func (c ClassifierConfig) ToClient() classifier.Config {
	return classifier.Config{
		Endpoint: c.Endpoint,
		APIKey:   c.APIKey,
		Timeout:  time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

// EnricherConfig holds enrichment pipeline settings
type EnricherConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file. ${VAR} references in the file
// are expanded from the environment, so secrets can live in the env or a
// .env file rather than in the config itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
