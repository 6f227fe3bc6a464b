package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"dummycoder/internal/config"
	"dummycoder/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	server, err := appContainer.NewServer()
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("Upload limit %d MB, default separator %q, conflict policy %s",
		appConfig.Upload.MaxSizeMB, appConfig.Encoding.DefaultSeparator, appConfig.Encoding.ConflictPolicy)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
