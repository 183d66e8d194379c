package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/aq2208/gstore-api/configs"
	"github.com/aq2208/gstore-api/internal/adapter/cache"
	"github.com/aq2208/gstore-api/internal/adapter/http"
	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	"github.com/aq2208/gstore-api/internal/adapter/invoice"
	"github.com/aq2208/gstore-api/internal/adapter/kafka"
	"github.com/aq2208/gstore-api/internal/adapter/memory"
	"github.com/aq2208/gstore-api/internal/adapter/payment"
	"github.com/aq2208/gstore-api/internal/adapter/queue"
	"github.com/aq2208/gstore-api/internal/adapter/repo"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/security"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
	wg     sync.WaitGroup
}

// Wait blocks until background workers have stopped (after ctx cancel).
func (a *App) Wait() { a.wg.Wait() }

// ports is the set of adapters selected by storage.driver.
type ports struct {
	catalog usecase.CatalogRepo
	orders  usecase.OrderRepo
	outbox  usecase.OutboxRepo
	tx      usecase.TxRunner
	carts   usecase.CartStore
	idem    usecase.IdempotencyStore
	cache   usecase.OrderCache
}

func InitWithConfig(ctx context.Context, cfg configs.Config) (*App, func(), error) {
	log := logging.New("bootstrap")
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	var p ports
	switch cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()
		memory.Seed(store)
		p = ports{
			catalog: store, orders: store, outbox: store.Outbox(), tx: store,
			carts: memory.NewCartStore(), idem: memory.NewIdempotencyStore(), cache: memory.NewStatusCache(),
		}
		log.Warn("using in-memory storage; data is lost on restart")
	default:
		db, err := openMySQL(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = db.Close() })

		// init redis
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("redis ping: %w", err))
		}

		p = ports{
			catalog: repo.NewMySQLCatalogRepo(db),
			orders:  repo.NewMySQLOrderRepo(db),
			outbox:  repo.NewMySQLOutboxRepo(db),
			tx:      repo.NewMySQLTxRunner(db),
			carts:   cache.NewRedisCartStore(rdb, cfg.Session.TTL),
			idem:    cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL),
			cache:   cache.NewRedisCache(rdb, cfg.Cache.TTL),
		}
	}

	// payment keys
	km, err := security.NewKeyMaterial(cfg)
	if err != nil {
		return fail(err)
	}
	signer, err := security.NewPaymentSigner(km)
	if err != nil {
		return fail(err)
	}
	var gateway usecase.PaymentGateway
	switch cfg.Payment.Provider {
	case "razorpay":
		gateway = payment.NewRazorpayClient(cfg.Payment.BaseURL, km.KeyID, string(km.KeySecret), cfg.Payment.Timeout)
	default:
		gateway = payment.NewSandboxGateway()
	}
	if cfg.Payment.SimulateCheckout {
		log.Warn("payment.simulate_checkout is on: orders are created paid")
	}

	// usecases
	cartUC := usecase.NewCart(p.catalog, p.carts)
	checkoutUC := usecase.NewCheckout(cartUC, p.carts, p.orders, p.outbox, p.tx, p.idem, usecase.CheckoutOptions{
		Currency:     cfg.Payment.Currency,
		SimulatePaid: cfg.Payment.SimulateCheckout,
	})
	startUC := usecase.NewStartPayment(p.orders, gateway, cfg.Payment.Currency, km.KeyID)
	confirmUC := usecase.NewConfirmPayment(p.orders, signer, p.carts, p.outbox, p.tx, p.cache)
	queryUC := usecase.NewOrderQuery(p.orders, p.cache)
	invoiceUC := usecase.NewInvoices(p.orders, cfg.Payment.Currency)

	app := &App{}

	// register [queue-handler] + outbox relay
	if cfg.Rabbit.Enabled {
		closeRabbit, err := setupQueue(ctx, cfg, app, p)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, closeRabbit)
	}

	// register kafka-listener
	if cfg.Kafka.Enabled {
		closeKafka, err := setupKafkaListener(ctx, cfg, app, confirmUC)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, closeKafka)
	}

	// init handlers + routers + middleware
	timeout := cfg.HTTP.RequestTimeout
	h := http.Handlers{
		Catalog:  http.NewCatalogHandler(p.catalog, timeout),
		Cart:     http.NewCartHandler(cartUC, timeout),
		Checkout: http.NewCheckoutHandler(checkoutUC, timeout),
		Payment:  http.NewPaymentHandler(startUC, confirmUC, timeout),
		Order:    http.NewOrderHandler(queryUC, invoiceUC, invoice.NewPDFRenderer("GST"), timeout),
		Token:    http.NewTokenHandler(cfg),
	}
	if cfg.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.Router = http.NewRouter(h, middleware.NewAuthz(cfg), http.RouterOptions{
		Session: middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		},
	})

	return app, cleanup, nil
}

func openMySQL(ctx context.Context, cfg configs.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	if cfg.MySQL.Migrate {
		if err := repo.Migrate(pingCtx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func setupQueue(ctx context.Context, cfg configs.Config, app *App, p ports) (func(), error) {
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	pubCh, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	producer, err := queue.NewRabbitProducer(pubCh, cfg.Rabbit.Exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	// consumers get their own channel; the publisher one is in confirm mode
	subCh, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	router := queue.NewRouter(subCh,
		queue.WithPrefetch(cfg.Rabbit.Prefetch),
		queue.WithTimeout(cfg.HTTP.RequestTimeout),
		queue.WithRequeue(true),
		queue.WithLogger(logging.New("rmq-consumer")),
	)
	queue.NewOrderEventsHandler(p.cache).Register(router)
	if err := router.Start(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	relay := queue.NewOutboxRelay(p.outbox, producer, cfg.Outbox.Interval, cfg.Outbox.BatchSize)
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		relay.Run(ctx)
	}()

	return func() { _ = conn.Close() }, nil
}

func setupKafkaListener(ctx context.Context, cfg configs.Config, app *App, confirm *usecase.ConfirmPayment) (func(), error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, fmt.Errorf("kafka group: %w", err)
	}

	h := kafka.NewPaymentCallbackHandler(confirm)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.TopicPayments}, h.Handle)

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka").Error("payment consumer stopped", "err", err)
		}
	}()

	return func() { _ = grp.Close() }, nil
}
