// Package config provides environment-driven configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrInvalidSetting is returned when an environment value cannot be used.
var ErrInvalidSetting = errors.New("invalid setting")

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt parses the variable named by key as an int, or returns fallback
// if it is unset or empty.
func GetEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s=%q: %v", ErrInvalidSetting, key, value, err)
	}
	return n, nil
}

// GetEnvInt64 parses the variable named by key as an int64.
func GetEnvInt64(key string, fallback int64) (int64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s=%q: %v", ErrInvalidSetting, key, value, err)
	}
	return n, nil
}

// GetEnvFloat parses the variable named by key as a float64.
func GetEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s=%q: %v", ErrInvalidSetting, key, value, err)
	}
	return f, nil
}
