// File path: cmd/shopsense/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nicodishanthj/shopsense/internal/api"
	"github.com/nicodishanthj/shopsense/internal/common"
	"github.com/nicodishanthj/shopsense/internal/llm"
	"github.com/nicodishanthj/shopsense/internal/recommend"
	"github.com/nicodishanthj/shopsense/internal/search"
	"github.com/nicodishanthj/shopsense/internal/sqlite"
)

func main() {
	logger := common.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.Warn("shopsense: .env file not loaded", "error", err)
	} else {
		logger.Info("shopsense: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	dbPath := flag.String("db", "", "path to the SQLite catalog database (defaults to configuration)")
	flag.Parse()

	logger.Info("shopsense: startup initiated", "addr", *addr)

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		logger.Error("shopsense: store open failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer store.Close()

	pipelineCfg, err := recommend.LoadConfig()
	if err != nil {
		logger.Error("shopsense: pipeline config load failed", "error", err)
		fmt.Println("pipeline config error:", err)
		os.Exit(1)
	}

	provider := llm.NewProvider(pipelineCfg.EmbedDim)
	searchClient, err := search.NewFromEnv(ctx)
	if err != nil {
		logger.Error("shopsense: search client init failed", "error", err)
		fmt.Println("search client error:", err)
		os.Exit(1)
	}
	if !searchClient.Available() {
		logger.Warn("shopsense: hybrid search unavailable; recommendations will fall back to catalog defaults")
	}

	cache := recommend.NewCacheFromEnv(pipelineCfg.CacheTTL)
	pipeline := recommend.New(store, provider, searchClient, cache, pipelineCfg)

	server, err := api.NewServer(store, pipeline)
	if err != nil {
		logger.Error("shopsense: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("shopsense: listening", "addr", *addr, "provider", provider.Name())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shopsense: shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shopsense: shutdown incomplete", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("shopsense: server failed", "error", err)
			os.Exit(1)
		}
	}
}
