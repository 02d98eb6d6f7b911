package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"order-service/handlers"
	"order-service/internal/orders"
	"order-service/internal/products"
	"order-service/internal/stores/kafka"
	"order-service/internal/stores/orderdb"
	"order-service/pkg/logkey"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/joho/godotenv"
)

func main() {
	if err := startApp(); err != nil {
		slog.Error("service stopped", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3002"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	// Order store: construct, connect, use, close. No package-level handles.
	store, err := orderdb.NewConf(redisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to order store: %w", err)
	}
	defer store.Close()
	slog.Info("connected to redis order store")

	// Inventory client: discovered through Consul unless a static URL is set.
	productServiceURL := os.Getenv("PRODUCT_SERVICE_URL")
	var consulClient *consulapi.Client
	if productServiceURL == "" {
		consulClient, err = consulapi.NewClient(consulapi.DefaultConfig())
		if err != nil {
			return fmt.Errorf("failed to create consul client: %w", err)
		}
	}
	serviceName := os.Getenv("PRODUCT_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "products"
	}
	inv, err := products.NewConf(consulClient, serviceName, productServiceURL)
	if err != nil {
		return fmt.Errorf("failed to create inventory client: %w", err)
	}

	// Kafka is optional; without brokers the service runs but publishes
	// no order events.
	var kafkaConf *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConf, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			return fmt.Errorf("failed to create kafka client: %w", err)
		}
		defer kafkaConf.Close()
		slog.Info("kafka producer enabled")
	} else {
		slog.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	o, err := orders.NewConf(store, inv)
	if err != nil {
		return fmt.Errorf("failed to create order orchestrator: %w", err)
	}

	api := handlers.API("/orders", o, kafkaConf)
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("order service running", slog.String("port", port))
		serverErr <- srv.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-shutdownCtx.Done():
		slog.Info("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		// Let in-flight stock settlements land before the store closes.
		o.Wait()
	}
	return nil
}
