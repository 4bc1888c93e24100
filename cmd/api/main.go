package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brainbox-api/internal/config"
	"github.com/brainbox-api/internal/infrastructure/dynamo"
	"github.com/brainbox-api/internal/infrastructure/smtp"
	snsinfra "github.com/brainbox-api/internal/infrastructure/sns"
	transporthttp "github.com/brainbox-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// SMTP mailer (nil when unconfigured — the flow degrades to code disclosure).
	mailer := smtp.NewMailer(cfg)
	if mailer == nil {
		log.Println("WARN: no SMTP host configured, codes will be disclosed to callers")
	}

	// SNS ops alerts (optional — graceful fallback to log-only).
	var alerts snsinfra.AlertPublisher
	if cfg.SNSAlertTopicARN != "" {
		if p, err := snsinfra.NewPublisher(cfg); err == nil {
			alerts = p
		} else {
			log.Printf("WARN: SNS alert publisher not available: %v", err)
		}
	}

	deps := &transporthttp.Deps{
		Challenges:  dynamo.NewChallengeRepo(dynamoClient, cfg.DynamoTables.Challenges),
		ResetTokens: dynamo.NewResetTokenRepo(dynamoClient, cfg.DynamoTables.ResetTokens),
		Users:       dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		Deliveries:  dynamo.NewDeliveryRepo(dynamoClient, cfg.DynamoTables.Deliveries),
		Mailer:      mailer,
		Alerts:      alerts,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
