package config

import (
	"fmt"
	"time"
)

type Config interface {
	EnvConfig
	CorsConfig
	AggregatorConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetSecretKey() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type AggregatorConfig interface {
	GetPlaidClientID() string
	GetPlaidSecret() string
	GetPlaidEnv() string
	GetPlaidBaseURL() string
	GetPlaidTimeout() time.Duration
	GetLinkClientName() string
	GetLinkProducts() []string
	GetLinkCountryCodes() []string
	GetLinkLanguage() string
	GetTransactionWindowDays() int
}

type SecurityConfig interface {
	GetMaxSessionAge() time.Duration
	GetSessionSweepInterval() time.Duration
	GetSessionCookieName() string
	GetLoginUsername() string
	GetLoginPassword() string
}

type mainConfig struct {
	EnvVars
	Cors
	Aggregator
	Security
}

// New builds the configuration from the environment, overlaying the TOML
// file named by CONFIG_FILE when it is set.
func New() (Config, error) {
	file := &File{}
	if path := GetEnv(configFileVar, ""); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("[config New] %w", err)
		}
		file = loaded
	}
	return FromFile(file), nil
}

// FromFile builds a Config with file as the overlay. A nil file means
// environment and defaults only.
func FromFile(file *File) Config {
	if file == nil {
		file = &File{}
	}
	return mainConfig{
		Cors:       Cors{file: file},
		Aggregator: Aggregator{file: file},
		Security:   Security{file: file},
	}
}
