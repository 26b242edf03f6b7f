package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"golact/adapters/api"
	"golact/adapters/characteristics"
	"golact/adapters/fitting"
	"golact/adapters/icar"
	"golact/adapters/milkbot"
	"golact/adapters/postgres"
	"golact/internal"
	"golact/internal/config"
	"golact/ports"
)

func main() {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)
	logger := internal.NewDefaultLogger()

	mbClient := milkbot.NewClient(milkbot.Config{
		BaseURL:   cfg.MilkBot.BaseURL,
		EUBaseURL: cfg.MilkBot.EUBaseURL,
		Timeout:   cfg.MilkBot.Timeout,
	})

	fits := fitting.NewEngine(mbClient)
	chars := characteristics.NewEngine(characteristics.NewCache(), fits)
	tim := icar.NewCalculator(logger)

	var repo ports.YieldRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("failed to prepare database schema: %v", err)
		}
		repo = postgres.NewYieldRepository(db)
		logger.Info("database persistence enabled")
	} else {
		logger.Info("DATABASE_URL not set, persistence disabled")
	}

	server := api.NewServer(api.Deps{
		Fits:    fits,
		Chars:   chars,
		TIM:     tim,
		MilkBot: mbClient,
		Repo:    repo,
		APIKey:  cfg.MilkBot.APIKey,
		Log:     logger,
	})

	logger.Info("starting server on port %s", cfg.Server.Port)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
