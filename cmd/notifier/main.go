package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/example/minishop/internal/email"
	"github.com/example/minishop/internal/infrastructure/kafka"
	"github.com/example/minishop/internal/notification"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kafkaBrokersStr := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokersStr == "" {
		log.Fatal("[Notifier] KAFKA_BROKERS environment variable is required")
	}
	kafkaTopic := getEnv("KAFKA_TOPIC", "minishop-orders")
	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	smtpFrom := getEnv("SMTP_FROM", "orders@minishop.local")

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] minishop order notifier")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka topic: %s", kafkaTopic)
	log.Printf("[Notifier] SMTP: %s:%s", smtpHost, smtpPort)

	emailService := email.NewService(smtpHost, smtpPort, smtpFrom)
	handler := notification.NewHandler(emailService)

	consumer := kafka.NewConsumer(strings.Split(kafkaBrokersStr, ","), kafkaTopic, "minishop-notifier")
	defer consumer.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Println("[Notifier] Consuming order events...")
		err := consumer.Consume(ctx, handler.HandleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("[Notifier] Consumer error: %v", err)
	}
	log.Println("[Notifier] Shut down")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
