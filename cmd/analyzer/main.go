package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/taratriia/market-analyzer/internal/clients"
	"github.com/taratriia/market-analyzer/internal/config"
	"github.com/taratriia/market-analyzer/internal/session"
)

func main() {
	// 1. Setup
	godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	// 2. Process-wide collaborator handles (lazily initialized, once each)
	registry := clients.NewRegistry(cfg)
	orc := session.NewOrchestrator(cfg, registry, logger)

	// 3. Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/analyze", session.Handler(orc, logger))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Reddit Market Analyzer API. Connect to /ws/analyze via WebSocket.",
		})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}

	// 4. Graceful Shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		srv.Shutdown(context.Background())
	}()

	logger.Info("Starting analyzer", "port", cfg.Port, "mode", cfg.CollectorMode, "model", cfg.AIModel)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
