package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"pet-studio/internal/config"
	"pet-studio/internal/platform/logger"
	"pet-studio/internal/router"
)

func main() {
	_ = godotenv.Load() // .env opcional para dev

	lg := logger.NewFromEnv()

	cfg, err := config.FromEnv()
	if err != nil {
		lg.Error("invalid config", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r := router.NewRouter(router.Options{Config: cfg, Log: lg})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lg.Info("starting server", map[string]any{"addr": addr, "flow": string(cfg.Flow)})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
