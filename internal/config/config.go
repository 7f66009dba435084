// Package config loads application configuration from environment variables,
// with an optional .env file for development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port         string // HTTP listen port
	StoreBackend string // "jsonfile" or "sqlite"
	StorePath    string // JSON document path (jsonfile backend)
	DBPath       string // database path (sqlite backend)
	OMDBAPIKey   string // OMDB API credential
	OMDBBaseURL  string // override for tests; empty means the public API
	TemplateDir  string
	StaticDir    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win over
// it, which is godotenv's default.
func Load() *Config {
	// Missing .env is fine — production sets real env vars.
	_ = godotenv.Load()

	return &Config{
		Port:         envOrDefault("PORT", "8080"),
		StoreBackend: envOrDefault("STORE_BACKEND", "jsonfile"),
		StorePath:    envOrDefault("STORE_PATH", "data/movies.json"),
		DBPath:       envOrDefault("DB_PATH", "data/movies.db"),
		OMDBAPIKey:   os.Getenv("OMDB_API_KEY"),
		OMDBBaseURL:  os.Getenv("OMDB_BASE_URL"),
		TemplateDir:  envOrDefault("TEMPLATE_DIR", "web/templates"),
		StaticDir:    envOrDefault("STATIC_DIR", "web/static"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
