package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quizhost/quiz_bot/internal/config"
	"github.com/quizhost/quiz_bot/internal/database"
	"github.com/quizhost/quiz_bot/pkg/logger"
	"github.com/quizhost/quiz_bot/telegram"
)

func main() {
	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	logger.Init()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}
	if err := cfg.ValidateProductionSecurity(); err != nil {
		logger.Fatal("Insecure production config", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	bot, err := telegram.InitBot(cfg, db)
	if err != nil {
		logger.Fatal("Failed to initialize bot", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Bot starting", "env", cfg.AppEnv)
	bot.Start(ctx)
	logger.Info("Bot stopped")
}
