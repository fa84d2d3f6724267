package main

import (
	"context"
	"log"

	"parley-chat/config"
	"parley-chat/internal/events"
	"parley-chat/internal/handler"
	"parley-chat/internal/proxy"
	"parley-chat/internal/redis"
	"parley-chat/internal/repository"
	"parley-chat/internal/server"
	"parley-chat/internal/services"
	"parley-chat/internal/websocket"
	"parley-chat/pkg/database"
	"parley-chat/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	if err := run(cfg, l); err != nil {
		l.Error("server exited with error", zap.Error(err))
		l.Sync()
		log.Fatal(err)
	}
}

func run(cfg *config.Config, l *logger.Logger) error {
	ctx := context.Background()

	if cfg.DBEmbedded {
		pg, err := database.StartEmbedded(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := pg.Stop(); err != nil {
				l.Warn("failed to stop embedded postgres", zap.Error(err))
			}
		}()
		l.Info("embedded postgres started", zap.String("port", cfg.DBPort))
	}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.ApplyMigrations(db); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, redis.ConfigFrom(cfg))
	if err != nil {
		return err
	}
	defer redisClient.Close()

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	access := proxy.NewAccessControl(chatRepo)
	dispatcher := events.NewDispatcher(redis.NewPublisher(redisClient), l)
	defer dispatcher.Wait()

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	chatService := services.NewChatService(chatRepo, userRepo, access, l)
	messageService := services.NewMessageService(messageRepo, access, dispatcher).
		WithPageSizes(cfg.MessagePageSize, cfg.MessagePageSizeMax)

	hub := websocket.NewHub()
	authorizer := websocket.NewChannelAuthorizer(access)
	bridge := websocket.NewRedisBridge(redis.NewSubscriber(redisClient), hub, l)

	rateCfg := redis.DefaultRateLimitConfig()
	rateCfg.MessageLimit = cfg.MessagesPerMinute
	limiter := redis.NewRateLimiter(redisClient, rateCfg)

	srv := server.New(cfg, l, hub,
		server.HealthCheck{Name: "database", Check: func(ctx context.Context) error { return database.HealthCheck(ctx, db) }},
		server.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redis.HealthCheck(ctx, redisClient) }},
	)
	srv.SetupRoutes(&server.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService),
		User:         handler.NewUserHandler(userService),
		Chat:         handler.NewChatHandler(chatService),
		Message:      handler.NewMessageHandler(messageService),
		Broadcasting: handler.NewBroadcastingHandler(authorizer),
		WebSocket:    websocket.NewHandler(authService, hub, authorizer, l),
	}, authService, limiter)

	return srv.Run(ctx,
		func(ctx context.Context) error {
			hub.Run(ctx)
			return nil
		},
		bridge.Run,
	)
}
