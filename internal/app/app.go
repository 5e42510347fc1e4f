package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsio "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/tiendalia/cart-service/internal/adapter/client"
	"github.com/tiendalia/cart-service/internal/adapter/email"
	mongoadapter "github.com/tiendalia/cart-service/internal/adapter/mongo"
	natsadapter "github.com/tiendalia/cart-service/internal/adapter/nats"
	redisadapter "github.com/tiendalia/cart-service/internal/adapter/redis"
	"github.com/tiendalia/cart-service/internal/app/config"
	"github.com/tiendalia/cart-service/internal/platform/logger"
	httpport "github.com/tiendalia/cart-service/internal/port/http"
	"github.com/tiendalia/cart-service/internal/service"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	cfg         *config.Config
	log         logger.Logger
	server      *httpport.Server
	mongoClient *mongo.Client
	redisClient *redis.Client
	natsConn    *natsio.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s", cfg.Env, cfg.HTTPServer.Port)

	appLogger.Info("Initializing Redis client...")
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}

	appLogger.Info("Initializing NATS connection...")
	natsConn, err := natsadapter.NewConnection(cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize NATS connection: %w", err)
	}
	publisher, err := natsadapter.NewPublisher(natsConn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
	}

	catalogClient, err := client.NewCatalogClient(client.CatalogClientConfig{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
	}

	var confirmation service.ConfirmationSender
	if cfg.SMTP.Enabled() {
		sender, errSMTP := email.NewSMTPSender(cfg.SMTP, appLogger)
		if errSMTP != nil {
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", errSMTP)
		}
		confirmation = service.NewConfirmationSender(sender, appLogger)
	} else {
		appLogger.Warn("SMTP is not configured, order confirmation emails are disabled")
	}

	storageFactory := redisadapter.NewCartStorageFactory(redisClient, cfg.Cart.TTL)
	productCache := redisadapter.NewProductCache(redisClient)
	orderRepo := mongoadapter.NewOrderRepository(mongoClient, cfg.MongoDB)

	cartManager := service.NewCartManager(storageFactory, appLogger)
	cartService := service.NewCartService(cartManager, catalogClient, productCache, appLogger, service.CartServiceConfig{
		ProductCacheTTL: cfg.ProductCache.TTL,
	})
	orderService := service.NewOrderService(orderRepo, cartManager, publisher, confirmation, appLogger)

	handler := httpport.NewHandler(cartService, orderService, appLogger)
	server := httpport.NewServer(appLogger, cfg.HTTPServer.Port, cfg.HTTPServer.ReadTimeout, cfg.HTTPServer.WriteTimeout, httpport.NewRouter(handler))
	appLogger.Info("HTTP server instance created")

	return &App{
		cfg:         cfg,
		log:         appLogger,
		server:      server,
		mongoClient: mongoClient,
		redisClient: redisClient,
		natsConn:    natsConn,
	}, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	}

	a.log.Info("Closing connections...")

	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		}
	}

	a.log.Info("Application shut down successfully")
}
