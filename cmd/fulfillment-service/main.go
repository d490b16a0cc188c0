package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartfox/fulfillment-service/internal/client"
	"github.com/cartfox/fulfillment-service/internal/config"
	"github.com/cartfox/fulfillment-service/internal/delivery/http/handlers"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/kafka"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/metrics"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/migrate"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/notifier"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/repository"
	"github.com/cartfox/fulfillment-service/internal/usecase/fulfillment"
	"github.com/cartfox/fulfillment-service/internal/usecase/inventory"
	"github.com/cartfox/fulfillment-service/internal/usecase/webhook"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if cfg.Migrations.Path != "" {
		if err := migrate.RunMigrations(db, cfg.Migrations.Path); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	publisher := kafka.NewPublisher(brokers, cfg.KafkaService.Topic)
	defer publisher.Close()

	// Init metrics
	fulfillmentMetrics := metrics.NewFulfillmentMetrics()

	// Init repositories
	orderRepo := repository.NewDefaultOrderRepository(db)
	inventoryRepo := repository.NewDefaultInventoryRepository(db)
	webhookEventRepo := repository.NewDefaultWebhookEventRepository(db)

	// Init collaborator clients
	gatewayClient := client.NewHTTPGatewayClient(
		cfg.PaymentGateway.BaseURL,
		cfg.PaymentGateway.APIKey,
		cfg.PaymentGateway.WebhookSecret,
	)
	catalogClient := client.NewHTTPCatalogClient(
		fmt.Sprintf("http://%s:%s", cfg.CatalogService.Host, cfg.CatalogService.Port),
	)
	orderNotifier := notifier.NewHTTPOrderNotifier(cfg.Notifier.CallbackURL)

	// Init ledgers and orchestrator
	webhookLedger := webhook.NewLedger(webhookEventRepo)
	inventoryLedger := inventory.NewLedger(inventoryRepo, fulfillmentMetrics)
	uc := fulfillment.NewDefaultFulfillmentUsecase(
		orderRepo,
		webhookLedger,
		inventoryLedger,
		gatewayClient,
		catalogClient,
		orderNotifier,
		publisher,
		fulfillmentMetrics,
	)

	// Init HTTP delivery
	webhookHandler := handlers.NewWebhookHandler(gatewayClient, uc, fulfillmentMetrics)
	orderHandler := handlers.NewOrderHandler(uc)

	mux := http.NewServeMux()
	mux.HandleFunc("/webhooks/payment", webhookHandler.HandlePaymentWebhook)
	mux.HandleFunc("/orders/", orderHandler.HandleOrders)
	mux.HandleFunc("/orders/status-batch", orderHandler.ValidateBatch)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Retry orders parked on inventory shortfall
	go uc.StartPendingInventoryWorker(context.Background(), 30*time.Second)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	log.Printf("fulfillment service started on %s\n", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
