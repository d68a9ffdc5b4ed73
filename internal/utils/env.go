package utils

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file when one exists. Missing
// files are fine in production where the environment is set directly.
func LoadEnv() error {
	return godotenv.Load()
}

// GetEnv returns an environment variable or a default.
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvInt returns an environment variable parsed as an int, or a
// default when unset or unparseable.
func GetEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
