package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Daddtdrey/eatai/internal/cart"
	"github.com/Daddtdrey/eatai/internal/catalog"
	"github.com/Daddtdrey/eatai/internal/checkout"
	"github.com/Daddtdrey/eatai/internal/config"
	"github.com/Daddtdrey/eatai/internal/httpapi"
	"github.com/Daddtdrey/eatai/internal/notify"
	"github.com/Daddtdrey/eatai/internal/orders"
	"github.com/Daddtdrey/eatai/internal/outbox"
	"github.com/Daddtdrey/eatai/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "server").Logger()

func main() {
	cfg := config.Load()

	roles, err := config.LoadRoles(cfg.RolesFilePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load roles file")
	}

	// Postgres holds products and orders; they must share one database so
	// checkout can decrement stock and create the order in a single
	// transaction.
	cred := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsDirPath,
	}
	repo, err := repository.NewRepository(cred)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer repo.Close()

	if err := repo.RunMigrations(cred); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	mongoDB, err := cart.ConnectMongoDB(startupCtx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer mongoDB.Client().Disconnect(context.Background())

	if err := cart.EnsureIndexes(startupCtx, mongoDB); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure cart indexes")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		// Cache misses degrade to the repositories, so Redis being down is
		// survivable at startup.
		logger.Warn().Err(err).Msg("redis unreachable, caches will degrade")
	}

	// Services
	checkoutService := checkout.NewService(repo)
	ordersService := orders.NewService(repo)
	catalogService := catalog.NewService(repo, catalog.NewRedisCache(redisClient))
	cartService := cart.NewService(cart.NewMongoRepository(mongoDB), cart.NewRedisCache(redisClient))

	// Background workers
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := outbox.NewPoller(repo, cfg.KafkaBrokers...)
	go poller.Run(rootCtx)

	consumer := notify.NewConsumer(notify.NewGatewayPusher(cfg.PushGatewayURL), cfg.KafkaBrokers...)
	go consumer.Run(rootCtx)
	defer consumer.Close()

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Roles:          roles,
		Checkout:       httpapi.NewCheckoutHandler(checkoutService, cartService),
		Orders:         httpapi.NewOrdersHandler(ordersService),
		Products:       httpapi.NewProductsHandler(catalogService),
		Cart:           httpapi.NewCartHandler(cartService, catalogService),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "eatai"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")
	cancel()

	ctx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
