package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/eventease/internal/config"
	"github.com/kirinyoku/eventease/internal/mq"
	"github.com/kirinyoku/eventease/internal/postgres"
	redisx "github.com/kirinyoku/eventease/internal/redis"
	postgresrepo "github.com/kirinyoku/eventease/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/eventease/internal/repository/redis"
	"github.com/kirinyoku/eventease/internal/service"
	"github.com/kirinyoku/eventease/internal/service/auth"
	"github.com/kirinyoku/eventease/internal/service/bookings"
	"github.com/kirinyoku/eventease/internal/service/payment"
	"github.com/kirinyoku/eventease/internal/service/reconcile"
	"github.com/kirinyoku/eventease/internal/session"
	httpgin "github.com/kirinyoku/eventease/internal/transport/http/gin"
	"github.com/kirinyoku/eventease/internal/worker/ticketmail"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	services   *service.Services
	pool       *pgxpool.Pool
	rdb        *redis.Client
	pubsub     *redisx.EventsPubSub
	amqpConn   *amqp.Connection
	publisher  *mq.Publisher
	mailer     *ticketmail.Worker
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.New"

	a := &App{cfg: cfg, logger: logger}

	pool, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN(),
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to initialize postgres: %w", op, err)
	}
	a.pool = pool

	if err := postgres.Migrate(ctx, pool); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb, err := redisx.New(ctx, redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: failed to initialize redis: %w", op, err)
	}
	a.rdb = rdb

	var publisher bookings.ConfirmationPublisher
	if cfg.RabbitMQ.URL != "" {
		if err := a.initMQ(); err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = a.publisher
	} else {
		logger.Warn("RABBITMQ_URL not set, booking confirmations are not queued")
	}

	gateway, err := newGateway(cfg.Payment)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pool)
	cache := redisrepo.New(rdb)
	a.pubsub = redisx.NewEventsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "login", cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
	idempotency := redisrepo.NewIdempotencyStore(rdb, cfg.Auth.IdempotencyTTL)
	sessions := session.NewManager(redisrepo.NewSessionStore(rdb), []byte(cfg.Session.Secret), cfg.Session.TTL, logger)

	// Initialize services
	services, err := service.NewServices(service.Deps{
		Store:     store,
		Cache:     cache,
		PubSub:    a.pubsub,
		Limiter:   limiter,
		Locker:    idempotency,
		Publisher: publisher,
		Gateway:   gateway,
		Sessions:  sessions,
	}, service.Config{
		Auth:      auth.Config{AdminCode: cfg.Auth.AdminCode},
		Reconcile: reconcile.Config{LockTTL: cfg.Auth.ReconcileLockTTL},
		PublicURL: cfg.Server.PublicURL,
	}, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.services = services

	router := httpgin.NewRouter(services, httpgin.Options{CookieSecure: cfg.Session.CookieSecure}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return a, nil
}

func (a *App) initMQ() error {
	conn, err := mq.NewConn(a.cfg.RabbitMQ.URL)
	if err != nil {
		return fmt.Errorf("failed to initialize rabbitmq: %w", err)
	}
	a.amqpConn = conn

	if err := mq.InitQueues(conn); err != nil {
		return err
	}

	publisher, err := mq.NewPublisher(conn)
	if err != nil {
		return err
	}
	a.publisher = publisher

	a.mailer = ticketmail.New(conn, ticketmail.LogMailer{Logger: a.logger}, a.logger)

	return nil
}

func newGateway(cfg config.PaymentConfig) (payment.Gateway, error) {
	switch cfg.Mode {
	case config.PaymentModeHosted:
		return payment.NewHostedGateway(cfg.CheckoutURL)
	default:
		return payment.MockGateway{}, nil
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	// Drop cached events changed by other instances
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, eventID uuid.UUID) {
			if err := a.services.Catalog.Invalidate(ctx, eventID); err != nil {
				a.logger.Warn("invalidate event cache", slog.String("event_id", eventID.String()), slog.Any("err", err))
			}
		})
		return ignoreCanceled(err)
	})

	if a.mailer != nil {
		g.Go(func() error {
			return ignoreCanceled(a.mailer.Run(gCtx))
		})
	}

	return g.Wait()
}

func (a *App) close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.amqpConn != nil {
		_ = a.amqpConn.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
