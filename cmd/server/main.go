package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/binamralamsal/quiz-score-maintainer/internal/cache"
	"github.com/binamralamsal/quiz-score-maintainer/internal/config"
	"github.com/binamralamsal/quiz-score-maintainer/internal/database"
	"github.com/binamralamsal/quiz-score-maintainer/internal/directory"
	"github.com/binamralamsal/quiz-score-maintainer/internal/services"
	"github.com/binamralamsal/quiz-score-maintainer/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	if cfg.BotToken == "" {
		logger.Fatal().Msg("BOT_TOKEN is required")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Msg("database connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, leaderboard cache disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
			logger.Info().Msg("connected to redis")
		}
	}
	boardCache := cache.NewBoard(redisClient)

	var dir services.DirectoryClient
	if cfg.DirectoryBaseURL != "" {
		dir = directory.NewClient(cfg.DirectoryBaseURL, cfg.DirectoryToken)
	} else {
		logger.Warn().Msg("DIRECTORY_BASE_URL not set, handle entries will be skipped")
	}

	resolver := services.NewResolverService(dir, logger)
	scoreService := services.NewScoreService(db, resolver, boardCache, logger)
	boardService := services.NewLeaderboardService(db, boardCache)

	client := telegram.NewClient(cfg.BotToken)
	handler := telegram.NewUpdateHandler(client, scoreService, boardService, logger)

	if err := client.SetMyCommands(ctx, []telegram.BotCommand{
		{Command: "addscore", Description: "Add score of a quiz."},
		{Command: "quizboard", Description: "Show leaderboard of quiz."},
		{Command: "quizzes", Description: "Show quizzes of this group."},
		{Command: "quiztags", Description: "Show quiztags of quiz."},
		{Command: "removescore", Description: "Remove score of a quiz."},
	}); err != nil {
		logger.Warn().Err(err).Msg("setMyCommands failed")
	}

	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.WebhookBaseURL != "" {
		webhookURL := fmt.Sprintf("%s/webhook", cfg.WebhookBaseURL)
		if err := client.SetWebhook(ctx, webhookURL, cfg.WebhookSecret); err != nil {
			logger.Fatal().Err(err).Msg("setWebhook failed")
		}
		r.POST("/webhook", telegram.NewWebhook(handler, cfg.WebhookSecret).Handle)
		logger.Info().Str("url", webhookURL).Msg("webhook registered")
	} else {
		if err := client.DeleteWebhook(ctx); err != nil {
			logger.Warn().Err(err).Msg("deleteWebhook failed")
		}
		poller := telegram.NewPoller(client, handler, cfg.PollTimeout, logger)
		go poller.Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.ServerPort).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
