package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"npcforge/internal/adapter"
	"npcforge/internal/character"
	"npcforge/internal/chat"
	"npcforge/internal/discovery"
	"npcforge/internal/gamevars"
	"npcforge/internal/prompts"
	"npcforge/internal/scheduler"
	"npcforge/pkg/config"
	"npcforge/pkg/logger"
)

func main() {
	// Load configuration first so the logger can pick up the log file
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env, cfg.LogFile); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting npcforge server...")

	// Initialize dependencies
	store := character.NewStore()
	engine := discovery.NewEngine(store)
	llmAdapter := adapter.NewLLMAdapter(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelID)
	promptLoader := prompts.NewLoader(cfg.PromptFile)
	varStore := gamevars.NewStore()
	chatSvc := chat.NewService(store, llmAdapter, promptLoader, varStore)
	refresher := scheduler.New(store, engine, cfg.SnapshotInterval, cfg.DiscoveryInterval)

	// Background refresh runs until shutdown
	schedCtx, stopSched := context.WithCancel(context.Background())
	defer stopSched()
	go func() {
		if err := refresher.Run(schedCtx); err != nil && err != context.Canceled {
			log.Error("Background refresh stopped", zap.Error(err))
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(log, store, engine, chatSvc)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stopSched()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
