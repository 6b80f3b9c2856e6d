package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

// Port returns the listen address, ":8080" unless APP_PORT says otherwise.
func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return ":8080"
	}
	if port[0] != ':' {
		return ":" + port
	}
	return port
}

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

func lookupDuration(key string, fallback time.Duration) (time.Duration, error) {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// lookupSecret reads KEY from the environment or, failing that, from the
// file named by KEY_FILE. Surrounding whitespace is dropped.
func lookupSecret(key string) (string, bool, error) {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v), true, nil
	}
	path, ok := os.LookupEnv(key + "_FILE")
	if !ok {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(string(data)), true, nil
}

// CorsOrigins lists the origins in CORS_ALLOWED_ORIGINS; empty allows all.
func CorsOrigins() []string {
	s, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS")
	if !ok || s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
