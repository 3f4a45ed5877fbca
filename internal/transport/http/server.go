package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nightlog/internal/cache"
	"nightlog/internal/config"
	"nightlog/internal/database"
	"nightlog/internal/handler"
	"nightlog/internal/queue"
	appredis "nightlog/internal/redis"
	"nightlog/internal/repository"
	"nightlog/internal/service"
	"nightlog/internal/worker"
)

// Run wires the whole application together and serves until SIGINT/SIGTERM.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database and apply migrations
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// 3. Connect to Redis. Optional: without it the app runs with no
	// insights cache and no async welcome emails.
	var redisClient *appredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = appredis.NewClient(cfg.RedisURL)
		if err == nil {
			err = redisClient.Ping(context.Background())
		}
		if err != nil {
			log.Printf("Redis unavailable, continuing without cache/queue: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	dreamRepo := repository.NewDreamRepository(db)

	// 5. Redis-backed infrastructure
	var insightsCache cache.InsightsCache
	var publisher queue.Publisher
	var consumer queue.Consumer
	if redisClient != nil {
		insightsCache = cache.NewInsightsCache(redisClient.Client)
		publisher = queue.NewPublisher(redisClient.Client)
		consumer = queue.NewConsumer(redisClient.Client)
	}

	// 6. Services
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo, publisher)
	dreamService := service.NewDreamService(dreamRepo, insightsCache)
	insightsService := service.NewInsightsService(dreamRepo, insightsCache)
	analysisService := service.NewAnalysisService(dreamRepo, service.NewGeminiClient(cfg.GeminiAPIKey))
	emailService := service.NewEmailService(cfg)

	mediaService, err := service.NewMediaService(context.Background(), cfg)
	if err != nil {
		log.Printf("Avatar uploads disabled: %v", err)
		mediaService = nil
	}

	// 7. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if consumer != nil {
		manager := worker.NewManager(consumer, worker.NewHandler(emailService), worker.DefaultManagerConfig())
		if err := manager.Start(ctx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer manager.Stop()
	}

	sweeper := worker.NewTrashSweeper(
		dreamRepo,
		time.Duration(cfg.TrashSweepInterval)*time.Minute,
		time.Duration(cfg.TrashRetentionDays)*24*time.Hour,
	)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// 8. Router and HTTP server
	router := NewRouter(RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userService, authService, cfg),
		DreamHandler:    handler.NewDreamHandler(dreamService),
		UserHandler:     handler.NewUserHandler(userService, mediaService),
		InsightsHandler: handler.NewInsightsHandler(insightsService),
		AnalysisHandler: handler.NewAnalysisHandler(analysisService),
		JWTSecret:       cfg.JWTSecret,
		ClientURL:       cfg.ClientURL,
	})

	server := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s (env=%s)", cfg.ServerPort, cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	// 9. Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
