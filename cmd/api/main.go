package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/minishop/internal/api"
	"github.com/example/minishop/internal/auth"
	"github.com/example/minishop/internal/infrastructure/kafka"
	"github.com/example/minishop/internal/infrastructure/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Configuration from environment variables
	listenAddr := getEnv("LISTEN_ADDR", ":8080")
	postgresConnStr := os.Getenv("DATABASE_URL")
	kafkaBrokersStr := os.Getenv("KAFKA_BROKERS")
	kafkaTopic := getEnv("KAFKA_TOPIC", "minishop-orders")
	adminEmail := getEnv("ADMIN_EMAIL", "admin@minishop.local")
	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("[API] JWT_SECRET environment variable is required")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("[API] JWT_SECRET must be at least 32 characters long")
	}
	if adminHash == "" {
		log.Fatal("[API] ADMIN_PASSWORD_HASH environment variable is required")
	}

	log.Println("[API] ========================================")
	log.Println("[API] minishop order service")
	log.Println("[API] ========================================")

	// Stores: PostgreSQL when configured, in-memory dev mode otherwise.
	var (
		orderStore   store.OrderStore
		catalogStore store.CatalogStore
	)
	if postgresConnStr != "" {
		db, err := store.ConnectPostgres(postgresConnStr)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()
		if err := store.InitSchema(db); err != nil {
			log.Fatalf("[API] Failed to initialize schema: %v", err)
		}
		pg := store.NewPostgresStore(db)
		orderStore, catalogStore = pg, pg
		log.Println("[API] Connected to PostgreSQL")
	} else {
		mem := store.NewMemoryStore()
		store.SeedDemoData(mem)
		orderStore, catalogStore = mem, mem
		log.Println("[API] No DATABASE_URL set, using in-memory store with demo catalog")
	}

	// Kafka eventing is optional; without brokers the API simply does
	// not publish.
	var events api.EventPublisher
	if kafkaBrokersStr != "" {
		producer := kafka.NewProducer(strings.Split(kafkaBrokersStr, ","), kafkaTopic)
		defer producer.Close()
		events = producer
		log.Printf("[API] Publishing order events to %s", kafkaTopic)
	} else {
		log.Println("[API] No KAFKA_BROKERS set, order events disabled")
	}

	jwtService := auth.NewJWTService(jwtSecret, 15*time.Minute)

	router := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(orderStore, catalogStore, events),
		AuthHandlers: api.NewAuthHandlers(jwtService, adminEmail, adminHash),
		JWTService:   jwtService,
	})

	server := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[API] Server started on %s", listenAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("[API] Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("[API] Server error: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
