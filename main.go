package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"menu-costing/app"
	"menu-costing/db"
)

func main() {
	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	if os.Getenv("ENV") != "production" {
		// Use Overload to ensure .env values override system environment variables
		envPath := ".env"
		if err := godotenv.Overload(envPath); err != nil {
			log.Printf("Warning: .env file not found at %s, using system environment variables", envPath)
		} else {
			log.Printf("Successfully loaded environment variables from %s (overriding system variables)", envPath)
		}
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// Initialize application
	if err := app.Initialize(cfg); err != nil {
		log.Fatal(err)
	}
	defer db.CloseDB()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
	addr := "0.0.0.0:" + cfg.Port
	log.Printf("Server starting on %s", addr)
	log.Printf("Cost a sale: POST http://localhost:%s/admin/sales/cost", cfg.Port)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
