package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/francoabl/HuertoHogar/configs"
	"github.com/francoabl/HuertoHogar/internal/adapter/cache"
	"github.com/francoabl/HuertoHogar/internal/adapter/http"
	"github.com/francoabl/HuertoHogar/internal/adapter/http/middleware"
	"github.com/francoabl/HuertoHogar/internal/adapter/kafka"
	"github.com/francoabl/HuertoHogar/internal/adapter/queue"
	"github.com/francoabl/HuertoHogar/internal/adapter/repo"
	"github.com/francoabl/HuertoHogar/internal/logging"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, "./logs/app.log")
	log := logging.New("app")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("mysql ping: %w", err)
	}

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	inventory := repo.NewMySQLInventory(db)
	cartRepo := repo.NewMySQLCart(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisStatusCache(rdb, cfg.Cache.StatusTTL)
	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	// use cases
	checkout := usecase.NewCheckout(orderRepo, cartRepo, inventory, inventory, idem, producer, statusCache)
	lifecycle := usecase.NewLifecycle(orderRepo, inventory, producer, statusCache)

	// register queue-handler
	if err := setupQueue(ch, statusCache); err != nil {
		return nil, nil, err
	}

	// register kafka-listener
	stopKafka, err := setupKafkaListener(cfg, lifecycle)
	if err != nil {
		return nil, nil, err
	}

	// init handlers + routers + middleware
	h := http.NewOrderHandler(checkout, lifecycle)
	th := http.NewTokenHandler(cfg)
	auth := middleware.NewAuthz(cfg)
	router := http.NewRouter(h, th, auth)

	log.Info("startup complete", "env_http_addr", cfg.App.HTTPAddr)

	cleanup := func() {
		stopKafka()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel, statusCache usecase.StatusCache) error {
	h := queue.NewStatusSyncHandler(statusCache)

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register("order.created.q", queue.JSONHandler[usecase.CreatedMsg]{HandleFunc: h.HandleCreated})
	router.Register("order.cancelled.q", queue.JSONHandler[usecase.CancelledMsg]{HandleFunc: h.HandleCancelled})

	return router.Start()
}

func setupKafkaListener(cfg configs.Config, lifecycle *usecase.Lifecycle) (func(), error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, fmt.Errorf("kafka group: %w", err)
	}

	h := kafka.NewPaymentResultHandler(lifecycle)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.TopicPaymentResults}, h.Handle)
	consumer.Logger = logging.New("kafka-consumer")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka-consumer").Error("consumer stopped", "error", err)
		}
	}()

	return func() {
		cancel()
		_ = grp.Close()
	}, nil
}
