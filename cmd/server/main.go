// Command server runs the movie-list web application.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/movielist/internal/config"
	"github.com/sakif/movielist/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	if cfg.OMDBAPIKey == "" {
		logger.Warn("OMDB_API_KEY not set — movies will be added without metadata")
	}

	// Both backends keep their data under a common directory; create it up
	// front so first-run works out of the box.
	for _, p := range []string{cfg.StorePath, cfg.DBPath} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logger.Error("failed to create data directory",
					slog.String("dir", dir),
					slog.String("error", err.Error()),
				)
				os.Exit(1)
			}
		}
	}

	srv, err := server.New(server.Config{
		Port:         cfg.Port,
		StoreBackend: cfg.StoreBackend,
		StorePath:    cfg.StorePath,
		DBPath:       cfg.DBPath,
		OMDBAPIKey:   cfg.OMDBAPIKey,
		OMDBBaseURL:  cfg.OMDBBaseURL,
		TemplateDir:  cfg.TemplateDir,
		StaticDir:    cfg.StaticDir,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
