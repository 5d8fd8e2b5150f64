package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avolkov/marketplace-order-service/internal/app"
	"github.com/avolkov/marketplace-order-service/internal/auth"
	"github.com/avolkov/marketplace-order-service/internal/config"
	"github.com/avolkov/marketplace-order-service/internal/handler"
	"github.com/avolkov/marketplace-order-service/internal/postgres"
	"github.com/avolkov/marketplace-order-service/internal/realtime"
	"github.com/avolkov/marketplace-order-service/internal/repo"
	"github.com/avolkov/marketplace-order-service/internal/service"
	"github.com/avolkov/marketplace-order-service/internal/stream"
	"github.com/avolkov/marketplace-order-service/pkg/cache"
	"github.com/avolkov/marketplace-order-service/pkg/trm"

	"github.com/joho/godotenv"
)

// @title           Marketplace Order Service API
// @version         1.0
// @description     Order lifecycle and real-time notification API
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	orderRepo := repo.NewOrderRepo(db)
	deliveryRepo := repo.NewDeliveryRepo(db)
	shopRepo := repo.NewShopRepo(db)
	txManager := trm.NewManager(db)

	productCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	catalog := service.NewCachedCatalog(shopRepo, productCache)

	registry := realtime.NewRegistry(logger)
	dispatcher := realtime.NewDispatcher(logger, registry)

	var publisher service.Publisher = stream.NopPublisher{}
	var streamCloser *stream.Publisher
	if conf.Stream.Enabled {
		streamCloser = stream.NewPublisher(logger, conf.Stream)
		publisher = streamCloser
		logger.Info("order-events feed enabled")
	}

	resolver, err := auth.ParseStaticResolver(conf.Auth.Tokens)
	panicIfErr("invalid auth tokens", err)

	orderService := service.NewOrderService(
		logger, txManager, orderRepo, deliveryRepo, shopRepo,
		catalog, dispatcher, publisher, conf.Pricing,
	)
	deliveryService := service.NewDeliveryService(
		logger, txManager, orderRepo, deliveryRepo, shopRepo,
		orderService, dispatcher, publisher,
	)

	orderHandler := handler.NewOrderHandler(logger, resolver, orderService)
	deliveryHandler := handler.NewDeliveryHandler(logger, resolver, deliveryService)
	wsHandler := handler.NewWSHandler(logger, resolver, registry)

	application := app.New(logger, conf)
	application.SetHTTPHandlers(orderHandler, deliveryHandler, wsHandler)
	application.SetStarters(janitorStarter{cache: productCache})
	if streamCloser != nil {
		application.SetClosers(streamCloser)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", application.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", application.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}

type janitorStarter struct {
	cache *cache.LRUCache
}

func (s janitorStarter) Start(ctx context.Context) error {
	s.cache.StartJanitor(ctx)
	return nil
}
