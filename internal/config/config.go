package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// ServiceConfig holds the deployment settings for the game service.
type ServiceConfig struct {
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	// LockTTLSeconds bounds how long a crashed lock holder can block a game.
	LockTTLSeconds int `json:"lock_ttl_seconds"`
	// LockRetryMillis is the fixed delay between lock acquisition attempts.
	LockRetryMillis int `json:"lock_retry_millis"`
	// LockMaxAttempts bounds the acquisition loop.
	LockMaxAttempts int `json:"lock_max_attempts"`
	// CompletedGameTTLHours expires finished games from the store.
	CompletedGameTTLHours int `json:"completed_game_ttl_hours"`
}

var (
	cfg      *ServiceConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadServiceConfig loads the service configuration from the given path.
func LoadServiceConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read service config: %w", err)
			return
		}

		var c ServiceConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal service config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetServiceConfig returns the global service configuration.
func GetServiceConfig() *ServiceConfig {
	return cfg
}

// RedisAddress returns the configured Redis address, or the conventional
// local default when no config is loaded.
func RedisAddress() string {
	if cfg == nil || cfg.RedisAddr == "" {
		return "localhost:6379"
	}
	return cfg.RedisAddr
}

// LockTTL returns the configured lock expiry with a safe default.
func LockTTL() time.Duration {
	if cfg == nil || cfg.LockTTLSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.LockTTLSeconds) * time.Second
}

// LockRetryInterval returns the configured retry delay with a safe default.
func LockRetryInterval() time.Duration {
	if cfg == nil || cfg.LockRetryMillis <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(cfg.LockRetryMillis) * time.Millisecond
}

// LockMaxAttempts returns the configured attempt bound with a safe default.
func LockMaxAttempts() int {
	if cfg == nil || cfg.LockMaxAttempts <= 0 {
		return 50
	}
	return cfg.LockMaxAttempts
}

// CompletedGameTTL returns how long finished games stay in the store.
func CompletedGameTTL() time.Duration {
	if cfg == nil || cfg.CompletedGameTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(cfg.CompletedGameTTLHours) * time.Hour
}
