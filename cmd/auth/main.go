package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/shopfront/internal/auth/app"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
