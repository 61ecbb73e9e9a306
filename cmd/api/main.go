package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/arunalab/aruna/backend/internal/analysis/risk"
	"github.com/arunalab/aruna/backend/internal/config"
	"github.com/arunalab/aruna/backend/internal/handler"
	"github.com/arunalab/aruna/backend/internal/knowledge"
	"github.com/arunalab/aruna/backend/internal/observability"
	conversation "github.com/arunalab/aruna/backend/internal/service/conversation"
	"github.com/arunalab/aruna/backend/internal/service/reasoner"
	"github.com/arunalab/aruna/backend/internal/storage"
	memorystore "github.com/arunalab/aruna/backend/internal/storage/memory"
	sqlitestore "github.com/arunalab/aruna/backend/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Knowledge base is required: the service cannot answer without it.
	kb, err := knowledge.Load(cfg.Knowledge.Dir)
	if err != nil {
		logger.Fatal("failed to load knowledge base",
			zap.String("dir", cfg.Knowledge.Dir),
			zap.Error(err))
	}
	logger.Info("knowledge base loaded", zap.String("dir", cfg.Knowledge.Dir))

	var store storage.Store
	if cfg.Storage.Path != "" {
		sqlStore, err := sqlitestore.Open(cfg.Storage.Path)
		if err != nil {
			logger.Fatal("failed to open database",
				zap.String("path", cfg.Storage.Path),
				zap.Error(err))
		}
		defer sqlStore.Close()
		store = sqlStore
		logger.Info("using sqlite store", zap.String("path", cfg.Storage.Path))
	} else {
		store = memorystore.NewStore()
		logger.Info("using in-memory store")
	}

	var gen conversation.Reasoner
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			logger.Warn("failed to initialize chat model, running template-only",
				zap.Error(err))
		} else {
			reasonerCfg := reasoner.Config{
				MaxAttempts: cfg.Reasoner.MaxAttempts,
				BackoffBase: cfg.Reasoner.BackoffBase,
				BackoffCap:  cfg.Reasoner.BackoffCap,
				CallTimeout: cfg.Reasoner.CallTimeout,
			}
			svc, err := reasoner.NewService(ctx, chatModel, kb, reasonerCfg, logger)
			if err != nil {
				logger.Warn("failed to initialize reasoner, running template-only",
					zap.Error(err))
			} else {
				gen = svc
				logger.Info("reasoner initialized", zap.String("model", cfg.AI.Model))
			}
		}
	} else {
		logger.Info("ark credentials not configured, running template-only")
	}

	convSvc := conversation.NewService(store, kb, risk.NewClassifier(), gen, conversation.Config{
		StoryMinLength:  cfg.Session.StoryMinLength,
		TipCount:        cfg.Session.TipCount,
		SessionTTL:      cfg.Session.TTL,
		DefaultLanguage: cfg.Session.DefaultLanguage,
	}, logger)

	router := handler.NewRouter(convSvc)

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
