package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var loadOnce sync.Once

func Config(key string) string {
	loadOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Warn().Msg("Warning: .env file not found, reading from system environment variables")
		}
	})

	return os.Getenv(key)
}

func ConfigDefault(key, def string) string {
	if v := Config(key); v != "" {
		return v
	}
	return def
}

func ConfigInt(key string, def int) int {
	v, err := strconv.Atoi(Config(key))
	if err != nil {
		return def
	}
	return v
}

func ConfigFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(Config(key), 64)
	if err != nil {
		return def
	}
	return v
}

func ConfigDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(Config(key))
	if err != nil {
		return def
	}
	return v
}
