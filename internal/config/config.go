package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API  APIConfig
	Stub StubConfig
	Log  LogConfig
}

type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
}

type StubConfig struct {
	Port int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("API_BASE_URL", "http://localhost:8080")
	viper.SetDefault("API_REQUEST_TIMEOUT", "15s")
	viper.SetDefault("API_RATE_LIMIT", 20)
	viper.SetDefault("API_RATE_BURST", 40)
	viper.SetDefault("STUB_PORT", 8080)
	viper.SetDefault("LOG_LEVEL", "info")

	requestTimeout, err := time.ParseDuration(viper.GetString("API_REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:        viper.GetString("API_BASE_URL"),
			RequestTimeout: requestTimeout,
			RateLimit:      viper.GetFloat64("API_RATE_LIMIT"),
			RateBurst:      viper.GetInt("API_RATE_BURST"),
		},
		Stub: StubConfig{
			Port: viper.GetInt("STUB_PORT"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}
