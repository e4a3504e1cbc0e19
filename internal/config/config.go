package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Trigerxx3/cyber/internal/gemini"
	"github.com/Trigerxx3/cyber/internal/llm"
	"github.com/Trigerxx3/cyber/internal/repository"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yml"

// Config holds application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port" env:"PORT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Production bool `yaml:"production" env:"LOG_PRODUCTION"`
	} `yaml:"log"`

	// Multiple providers configuration
	Providers []llm.ProviderConfig `yaml:"providers"`

	// Single provider config, used when providers is empty
	Gemini struct {
		APIKey            string `yaml:"api_key" env:"GEMINI_API_KEY"`
		ModelName         string `yaml:"model_name" env:"GEMINI_MODEL"`
		MaxRetries        int    `yaml:"max_retries"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"gemini"`

	Store repository.Config `yaml:"store"`

	MaxFailuresBeforeSwitch int `yaml:"max_failures_before_switch"`
}

// Path returns CONFIG_PATH or DefaultPath.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadConfig reads the YAML file at configPath, then applies .env and
// environment overrides. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := &Config{}

	file, err := os.Open(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Expand environment variables in secrets
	for i := range config.Providers {
		config.Providers[i].APIKey = os.ExpandEnv(config.Providers[i].APIKey)
	}
	config.Gemini.APIKey = os.ExpandEnv(config.Gemini.APIKey)
	config.Store.DSN = os.ExpandEnv(config.Store.DSN)
	config.Store.Firestore.ProjectID = os.ExpandEnv(config.Store.Firestore.ProjectID)
	config.Store.Firestore.ClientEmail = os.ExpandEnv(config.Store.Firestore.ClientEmail)
	config.Store.Firestore.PrivateKey = os.ExpandEnv(config.Store.Firestore.PrivateKey)

	setDefaults(config)
	return config, nil
}

func setDefaults(config *Config) {
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 5 * time.Second
	}

	if config.Gemini.ModelName == "" {
		config.Gemini.ModelName = gemini.DefaultModel
	}

	// one attempt per flow call
	if config.Gemini.MaxRetries == 0 {
		config.Gemini.MaxRetries = 1
	}

	if config.Store.Type == "" {
		config.Store.Type = "firestore"
	}

	if config.Store.Path == "" {
		config.Store.Path = "./data/cyber.db"
	}

	if config.MaxFailuresBeforeSwitch == 0 {
		config.MaxFailuresBeforeSwitch = 3
	}
}

// ProviderConfigs returns the provider chain, falling back to the single
// Gemini block when no providers are listed.
func (c *Config) ProviderConfigs() []llm.ProviderConfig {
	if len(c.Providers) > 0 {
		return c.Providers
	}
	if c.Gemini.APIKey == "" {
		return nil
	}
	return []llm.ProviderConfig{{
		Type:              llm.ProviderGemini,
		APIKey:            c.Gemini.APIKey,
		ModelName:         c.Gemini.ModelName,
		MaxRetries:        c.Gemini.MaxRetries,
		RequestsPerMinute: c.Gemini.RequestsPerMinute,
	}}
}
