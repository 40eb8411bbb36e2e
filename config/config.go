package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-level settings. Court geometry and physics tuning
// live in the game package; everything here is deployment surface.
type Config struct {
	Addr         string
	StaticDir    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load reads an optional .env file and resolves settings from the
// environment with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment variables from .env")
	}
	return Config{
		Addr:         getEnv("ADDR", ":8080"),
		StaticDir:    getEnv("STATIC_DIR", "./public"),
		ReadTimeout:  getEnvSeconds("READ_TIMEOUT_SECONDS", 15),
		WriteTimeout: getEnvSeconds("WRITE_TIMEOUT_SECONDS", 15),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvSeconds(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		log.Printf("Invalid value for %s: %q, using default %ds", key, v, def)
	}
	return time.Duration(def) * time.Second
}
