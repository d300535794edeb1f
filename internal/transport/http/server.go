package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelshelf/internal/cache"
	"pixelshelf/internal/config"
	"pixelshelf/internal/database"
	"pixelshelf/internal/handler"
	"pixelshelf/internal/queue"
	"pixelshelf/internal/realtime"
	"pixelshelf/internal/redis"
	"pixelshelf/internal/repository"
	"pixelshelf/internal/service"
	"pixelshelf/internal/worker"
)

// Run wires the whole application and serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	txRunner := database.NewTxRunner(db)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	followRepo := repository.NewFollowRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	// Redis-backed infrastructure
	feedCache := cache.NewFeedCache(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Websocket hub for live notifications
	hub := realtime.NewHub()
	go hub.Run(ctx)

	// Services
	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		log.Printf("[Server] Media storage disabled: %v", err)
		mediaService = nil
	}

	authService := service.NewAuthService(refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo, followRepo, mediaService)
	followService := service.NewFollowService(followRepo, userRepo, txRunner, publisher)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, hub)
	commentService := service.NewCommentService(commentRepo, assetRepo, txRunner, publisher)
	assetService := service.NewAssetService(assetRepo, projectRepo, userRepo, txRunner, mediaService, publisher)
	projectService := service.NewProjectService(projectRepo, userRepo, txRunner)
	feedService := service.NewFeedService(feedCache, assetRepo, followRepo)
	searchService := service.NewSearchService(userRepo, assetRepo, projectRepo, followRepo)
	billingService := service.NewBillingService(subscriptionRepo, userRepo, notificationService, cfg)

	// Activity workers: feed fan-out and notification creation
	workerHandler := worker.NewHandler(feedCache, followRepo, assetRepo, assetRepo)
	workerHandler.SetNotificationCreator(notificationService)

	manager := worker.NewManager(consumer, workerHandler, worker.ManagerConfig{
		WorkerCount: cfg.WorkerCount,
	})
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}

	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService),
		UserHandler:         handler.NewUserHandler(userService, followService),
		FollowHandler:       handler.NewFollowHandler(followService),
		NotificationHandler: handler.NewNotificationHandler(notificationService, hub),
		CommentHandler:      handler.NewCommentHandler(commentService),
		AssetHandler:        handler.NewAssetHandler(assetService, userService),
		ProjectHandler:      handler.NewProjectHandler(projectService, userService),
		FeedHandler:         handler.NewFeedHandler(feedService),
		SearchHandler:       handler.NewSearchHandler(searchService),
		PaymentHandler:      handler.NewPaymentHandler(billingService),
		JWTSecret:           cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("[Server] Received %s, shutting down", sig)
	}

	// Drain in-flight requests first, then stop workers and the hub
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}

	manager.Stop()
	cancel()
	hub.Wait()

	log.Printf("[Server] Shutdown complete")
	return nil
}
