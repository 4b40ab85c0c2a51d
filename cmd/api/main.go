package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"studiodesk/internal/app"
	"studiodesk/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Fatalf("application finished with error: %v", err)
	}
}
