package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cartcache "github.com/artelar/shop/internal/cart/cache"
	cartrepo "github.com/artelar/shop/internal/cart/repository"
	cartservice "github.com/artelar/shop/internal/cart/service"
	h "github.com/artelar/shop/internal/http"
	"github.com/artelar/shop/internal/media"
	"github.com/artelar/shop/internal/notification"
	"github.com/artelar/shop/internal/notification/consumer"
	"github.com/artelar/shop/internal/notification/publisher"
	orderrepo "github.com/artelar/shop/internal/order/repository"
	orderservice "github.com/artelar/shop/internal/order/service"
	"github.com/artelar/shop/internal/payment"
	"github.com/artelar/shop/internal/shipping"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	MongoURI            string
	MongoDatabase       string
	MongoConnectTimeout time.Duration
	MongoMaxPoolSize    uint64
	RedisAddr           string
	RedisPassword       string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	KafkaBrokers string

	AdminEmail string
	AdminToken string

	PaymentBaseURL     string
	PaymentAccessToken string
	WebhookSecret      string

	ShippingBaseURL  string
	ShippingAPIKey   string
	OriginPostalCode string

	MailerBaseURL string
	MailerAPIKey  string

	MediaBaseURL      string
	MediaUploadPreset string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		MongoURI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGODB_DATABASE", "artelar"),
		MongoConnectTimeout: 10 * time.Second,
		MongoMaxPoolSize:    100,
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "artelar"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/order/repository/migrations"),

		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),

		AdminEmail: getEnv("ADMIN_EMAIL", "pedidos@artelar.com.br"),
		AdminToken: getEnv("ADMIN_TOKEN", ""),

		PaymentBaseURL:     getEnv("PAYMENT_BASE_URL", "https://api.mercadopago.com"),
		PaymentAccessToken: getEnv("PAYMENT_ACCESS_TOKEN", ""),
		WebhookSecret:      getEnv("PAYMENT_WEBHOOK_SECRET", ""),

		ShippingBaseURL:  getEnv("SHIPPING_BASE_URL", "https://melhorenvio.com.br"),
		ShippingAPIKey:   getEnv("SHIPPING_API_KEY", ""),
		OriginPostalCode: getEnv("ORIGIN_POSTAL_CODE", "38400-000"),

		MailerBaseURL: getEnv("MAILER_BASE_URL", "http://localhost:8090"),
		MailerAPIKey:  getEnv("MAILER_API_KEY", ""),

		MediaBaseURL:      getEnv("MEDIA_BASE_URL", "https://api.cloudinary.com/v1_1/artelar"),
		MediaUploadPreset: getEnv("MEDIA_UPLOAD_PRESET", "quadros"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("artelar shop starting...")
	var wg sync.WaitGroup

	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cart storage
	mongoDB, err := cartrepo.ConnectMongoDB(ctx, cartrepo.MongoConfig{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		ConnectTimeout: cfg.MongoConnectTimeout,
		MaxPoolSize:    cfg.MongoMaxPoolSize,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if errDisc := mongoDB.Client().Disconnect(context.Background()); errDisc != nil {
			log.Printf("mongodb disconnect: %v", errDisc)
		}
	}()

	cartRepository := cartrepo.NewMongoRepository(mongoDB)
	if indexer, ok := cartRepository.(interface{ CreateIndexes(context.Context) error }); ok {
		if errIdx := indexer.CreateIndexes(ctx); errIdx != nil {
			log.Fatalf("Failed to create cart indexes: %v", errIdx)
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if errPing := redisClient.Ping(ctx).Err(); errPing != nil {
		log.Fatalf("Failed to connect to Redis: %v", errPing)
	}
	defer redisClient.Close()

	cartSvc := cartservice.NewCartService(cartRepository, cartcache.NewRedisCache(redisClient))

	// Order storage
	dbPort, err := strconv.Atoi(cfg.DBPort)
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}
	creds := &orderrepo.Credentials{
		Host:              cfg.DBHost,
		Port:              dbPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}

	orderRepository, err := orderrepo.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer orderRepository.Close()

	if errMig := orderRepository.RunMigrations(creds); errMig != nil {
		log.Fatalf("Failed to run migrations: %v", errMig)
	}
	log.Println("Database migrations completed")

	orderSvc := orderservice.NewOrderService(orderRepository, cfg.AdminEmail)

	// Collaborators
	paymentClient := payment.NewHTTPClient(cfg.PaymentBaseURL, cfg.PaymentAccessToken)
	shippingQuoter := shipping.NewHTTPQuoter(cfg.ShippingBaseURL, cfg.ShippingAPIKey)
	uploader := media.NewHTTPUploader(cfg.MediaBaseURL, cfg.MediaUploadPreset)
	mailer := notification.NewHTTPMailer(cfg.MailerBaseURL, cfg.MailerAPIKey)

	// Notification pipeline: outbox rows drain to Kafka, the consumer
	// turns them into outbound mail.
	brokers := strings.Split(cfg.KafkaBrokers, ",")

	poller := publisher.NewOutboxPoller(orderRepository, brokers...)
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()

	mailConsumer := consumer.NewConsumer(mailer, brokers...)
	wg.Add(1)
	go func() {
		defer wg.Done()
		mailConsumer.Run(ctx)
	}()

	// Handlers
	cartHandler := h.NewCartHandler(cartSvc)
	pricingHandler := h.NewPricingHandler()
	shippingHandler := h.NewShippingHandler(cartSvc, shippingQuoter, cfg.OriginPostalCode)
	checkoutHandler := h.NewCheckoutHandler(cartSvc, orderSvc, paymentClient)
	webhookHandler := h.NewWebhookHandler(orderSvc, paymentClient, cfg.WebhookSecret)
	ordersHandler := h.NewOrdersHandler(orderSvc)
	adminHandler := h.NewAdminHandler(orderSvc)
	uploadHandler := h.NewUploadHandler(uploader)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/process-payment", checkoutHandler.ProcessPayment)
		r.Post("/webhook", webhookHandler.HandlePaymentWebhook)
		r.Post("/upload-image", uploadHandler.Upload)

		r.Route("/v1", func(r chi.Router) {
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Post("/configured-items", cartHandler.AddConfiguredItem)
				r.Put("/items/{item_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{item_id}", cartHandler.RemoveItem)
			})

			r.Post("/quote", pricingHandler.Quote)
			r.Get("/sizes", pricingHandler.Sizes)

			r.Post("/shipping/quote", shippingHandler.Quote)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersHandler.ListByEmail)
				r.Get("/{id}", ordersHandler.GetByID)
				r.Post("/{id}/refund", ordersHandler.RequestRefund)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.AdminAuthMiddleware(cfg.AdminToken))
				r.Get("/orders", adminHandler.ListOrders)
				r.Put("/orders/{id}/status", adminHandler.UpdateStatus)
				r.Put("/orders/{id}/tracking", adminHandler.SetTrackingCode)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "artelar-shop"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if errSrv := srv.ListenAndServe(); errSrv != nil && !errors.Is(errSrv, http.ErrServerClosed) {
			log.Fatalf("server error: %v", errSrv)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if errShut := srv.Shutdown(shutdownCtx); errShut != nil {
		log.Printf("server forced to shutdown: %v", errShut)
	}

	cancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("background workers stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("background workers didn't stop in time")
	}

	mailConsumer.Close()
	log.Println("server exited")
}
