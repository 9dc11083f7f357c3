package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/api"
	"meal-planner/internal/core/ai/cache"
	"meal-planner/internal/core/ai/openrouter"
	"meal-planner/internal/core/ai/provider"
	"meal-planner/internal/core/ai/queue"
	"meal-planner/internal/core/ai/service"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/store"
	"meal-planner/internal/pkg/common"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, common.LogFileConfig{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	db, err := store.Open(cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	aiSvc, err := newAIService(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize AI service", zap.Error(err))
	}
	defer aiSvc.Close()

	p := planner.New(db, db, db, aiSvc, planner.OptionsFromConfig(cfg))

	router := api.SetupRouter(cfg, api.Deps{
		Planner: p,
		DB:      db,
		Queue:   aiSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("name", cfg.App.Name),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// newAIService 提供者 → 快取 → 隊列
func newAIService(cfg *config.Config) (*service.Service, error) {
	client := openrouter.NewClient(provider.Config{
		APIKey:      cfg.OpenRouter.APIKey,
		Model:       cfg.OpenRouter.Model,
		BaseURL:     cfg.OpenRouter.BaseURL,
		Referer:     cfg.OpenRouter.Referer,
		Title:       cfg.OpenRouter.Title,
		MaxTokens:   cfg.OpenRouter.MaxTokens,
		Temperature: cfg.OpenRouter.Temperature,
		TopP:        cfg.OpenRouter.TopP,
		Timeout:     cfg.OpenRouter.Timeout,
		MaxRetries:  cfg.OpenRouter.MaxRetries,
	})

	results, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	q := queue.NewManager(client, cfg.AI.Workers, cfg.AI.MaxQueueSize)
	return service.NewService(client, results, q)
}
