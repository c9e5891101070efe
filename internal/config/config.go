// Package config loads server configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the serving-layer settings. The detection core takes no
// configuration of its own; everything tunable per request travels in
// DetectionParameters.
type Config struct {
	Port            int
	SceneDir        string
	RequestTimeout  int // seconds; runs past this are abandoned, not interrupted
	PreviewMaxDim   int // longest edge of preview thumbnails in pixels
	AllowedOrigin   string
	ShutdownTimeout int // seconds
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnvAsInt("PORT", 8000),
		SceneDir:        getEnv("SCENE_DIR", "./scenes"),
		RequestTimeout:  getEnvAsInt("REQUEST_TIMEOUT", 120),
		PreviewMaxDim:   getEnvAsInt("PREVIEW_MAX_DIM", 512),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "*"),
		ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
