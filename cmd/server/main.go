package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/flangoapp/flango-pos-service/config"
	"github.com/flangoapp/flango-pos-service/pkg/broker"
	"github.com/flangoapp/flango-pos-service/pkg/cache"
	"github.com/flangoapp/flango-pos-service/pkg/database/postgres"
	"github.com/flangoapp/flango-pos-service/pkg/i18n"
	"github.com/flangoapp/flango-pos-service/pkg/logger"
	"github.com/flangoapp/flango-pos-service/pkg/search"

	catH "github.com/flangoapp/flango-pos-service/internal/catalog/handler"
	catRepoPkg "github.com/flangoapp/flango-pos-service/internal/catalog/repository"
	catUCPkg "github.com/flangoapp/flango-pos-service/internal/catalog/usecase"

	salesH "github.com/flangoapp/flango-pos-service/internal/sales/handler"
	salesRepoPkg "github.com/flangoapp/flango-pos-service/internal/sales/repository"
	salesUCPkg "github.com/flangoapp/flango-pos-service/internal/sales/usecase"

	"github.com/flangoapp/flango-pos-service/internal/limits"
	limitsRepoPkg "github.com/flangoapp/flango-pos-service/internal/limits/repository"
	limitsUCPkg "github.com/flangoapp/flango-pos-service/internal/limits/usecase"

	"github.com/flangoapp/flango-pos-service/internal/checkout"
	checkoutH "github.com/flangoapp/flango-pos-service/internal/checkout/handler"
	depositListenerPkg "github.com/flangoapp/flango-pos-service/internal/deposit/listener"
	"github.com/flangoapp/flango-pos-service/internal/model"
	"github.com/flangoapp/flango-pos-service/internal/order"
	"github.com/flangoapp/flango-pos-service/internal/policy"
	"github.com/flangoapp/flango-pos-service/internal/refill"
	"github.com/flangoapp/flango-pos-service/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 1.5 Initialize i18n (embedded English catalog)
	i18n.Init()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     false,
		DisableStacktrace: false,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	salesRepo := salesRepoPkg.NewPGRepository(db)
	limitsRepo := limitsRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer",
		zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 5.8 Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (reporting index disabled)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Initialize session and UseCases
	sess := session.New(cfg.Cafe.ClubID)

	salesCache := cache.NewMemoryStore(time.Duration(cfg.Cafe.SalesCacheTTLSecs)*time.Second, nil)
	salesUC := salesUCPkg.NewSalesUseCase(salesRepo, salesCache, esClient, appLogger)
	catUC := catUCPkg.NewCatalogUseCase(catRepo, redisClient, esClient, appLogger)
	limitsUC := limitsUCPkg.NewLimitsUseCase(limitsRepo, catUC, salesUC, limitsUCPkg.Config{
		FailOpenWithoutClub: cfg.Cafe.FailOpenWithoutClub,
	}, appLogger)

	snapshot := limits.NewSnapshotHolder(limitsUC, appLogger,
		time.Duration(cfg.Cafe.SnapshotDebounceMs)*time.Millisecond)

	cart := order.NewCart(cfg.Cafe.MaxItemsPerOrder)
	refillEval := refill.NewEvaluator(salesUC)
	orderSvc := order.NewService(cart, sess, catUC, snapshot, refillEval, appLogger)
	policyChecker := policy.NewChecker(salesUC, catUC)

	checkoutSvc := checkout.NewService(sess, orderSvc, limitsUC, snapshot, policyChecker, salesUC, redisClient, checkout.Config{
		MaxOverdraft: cfg.Cafe.MaxOverdraft,
		SugarPolicy:  sugarPolicyFromConfig(cfg.Cafe),
	}, appLogger)

	// 6.5 Initialize Listeners
	depositListener := depositListenerPkg.NewDepositListener(kafkaConsumer, checkoutSvc, salesUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go depositListener.Start(ctx)

	// 7. Initialize Handlers and Router
	catHandler := catH.NewCatalogHandler(catUC, sess, snapshot, appLogger)
	salesHandler := salesH.NewSalesHandler(salesUC, checkoutSvc, sess, appLogger)
	checkoutHandler := checkoutH.NewCheckoutHandler(checkoutSvc, orderSvc, salesUC, sess, snapshot, appLogger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(session.OperatorMiddleware)

	catHandler.RegisterRoutes(r)
	salesHandler.RegisterRoutes(r)
	checkoutHandler.RegisterRoutes(r)

	// 8. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	server := &http.Server{
		Addr:    port,
		Handler: r,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	appLogger.Info("Server stopped")
}

func sugarPolicyFromConfig(cfg config.CafeConfig) *model.SugarPolicy {
	if !cfg.SugarPolicyEnabled() {
		return nil
	}
	p := &model.SugarPolicy{BlockUnhealthy: cfg.BlockUnhealthy}
	if cfg.MaxUnhealthyPerDay >= 0 {
		max := cfg.MaxUnhealthyPerDay
		p.MaxUnhealthyPerDay = &max
	}
	if cfg.MaxUnhealthyPerItem >= 0 {
		max := cfg.MaxUnhealthyPerItem
		p.MaxUnhealthyPerProductPerDay = &max
	}
	return p
}
