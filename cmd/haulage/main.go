package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/xraph/haulage/internal/config"
	"github.com/xraph/haulage/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		if lerr := logger.Setup(logger.DefaultConfig()); lerr != nil {
			log.Fatalf("Failed to initialize logger: %v", lerr)
		}
		lg := logger.WithComponent("main")
		lg.Fatal().Err(err).Msg("Could not load configuration")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	Execute(cfg)
}
