package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/yungbote/docvault-backend/internal/app"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := app.Run(); err != nil {
		log.Fatalf("application failed: %v", err)
	}
}
