package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	postgresrepo "github.com/kirinyoku/eventease/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/eventease/internal/repository/redis"
	"github.com/kirinyoku/eventease/internal/service/admin"
	"github.com/kirinyoku/eventease/internal/service/auth"
	"github.com/kirinyoku/eventease/internal/service/bookings"
	"github.com/kirinyoku/eventease/internal/service/catalog"
	"github.com/kirinyoku/eventease/internal/service/lifecycle"
	"github.com/kirinyoku/eventease/internal/service/payment"
	"github.com/kirinyoku/eventease/internal/service/reconcile"
	"github.com/kirinyoku/eventease/internal/service/registration"
)

type Auth interface {
	Register(ctx context.Context, in auth.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password, rlKey string) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.Profile, error)
}

type Catalog interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type Registration interface {
	Check(ctx context.Context, sess *domain.Session, eventID uuid.UUID) (registration.Decision, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, sess domain.Session, p reconcile.ReturnParams, loc *time.Location) (reconcile.Outcome, error)
}

type Lifecycle interface {
	View(ctx context.Context, userID uuid.UUID, loc *time.Location) lifecycle.View
}

type Payment interface {
	StartCheckout(ctx context.Context, sess *domain.Session, eventID uuid.UUID) (string, error)
}

type Admin interface {
	DeleteEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
	Dashboard(ctx context.Context) ([]domain.Event, []domain.Registration, error)
	EventRegistrations(ctx context.Context, eventID uuid.UUID) (*domain.Event, []domain.Registration, error)
}

// Sessions is the tab-scoped session manager.
type Sessions interface {
	Set(ctx context.Context, sess domain.Session) (string, error)
	Get(ctx context.Context, token string) (domain.Session, bool)
	Clear(ctx context.Context, token string) error
	Refresh(ctx context.Context, token, displayName string) error
}

type Services struct {
	Auth         Auth
	Catalog      Catalog
	Registration Registration
	Reconcile    Reconciler
	Lifecycle    Lifecycle
	Payment      Payment
	Admin        Admin
	Sessions     Sessions
}

type Config struct {
	Auth      auth.Config
	Catalog   catalog.Config
	Reconcile reconcile.Config
	PublicURL string
}

// Deps are the infrastructure the services are built on. Cache, PubSub,
// Limiter, Locker and Publisher may be nil.
type Deps struct {
	Store     *postgresrepo.Store
	Cache     *redisrepo.Cache
	PubSub    admin.ChangePublisher
	Limiter   auth.Limiter
	Locker    reconcile.Locker
	Publisher bookings.ConfirmationPublisher
	Gateway   payment.Gateway
	Sessions  Sessions
}

func NewServices(deps Deps, cfg Config, logger *slog.Logger) (*Services, error) {
	bookingsSvc := bookings.New(deps.Store, deps.Publisher, logger)
	catalogSvc := catalog.New(deps.Store.Events(), deps.Cache, cfg.Catalog)
	gate := registration.NewGate(bookingsSvc)
	lifecycleSvc := lifecycle.New(bookingsSvc, logger)

	paymentSvc, err := payment.New(gate, catalogSvc, deps.Gateway, cfg.PublicURL, logger)
	if err != nil {
		return nil, err
	}

	var cache admin.CacheInvalidator
	if deps.Cache != nil {
		cache = deps.Cache
	}

	return &Services{
		Auth:         auth.New(deps.Store.Users(), deps.Limiter, cfg.Auth),
		Catalog:      catalogSvc,
		Registration: gate,
		Reconcile:    reconcile.New(bookingsSvc, lifecycleSvc, deps.Locker, logger, cfg.Reconcile),
		Lifecycle:    lifecycleSvc,
		Payment:      paymentSvc,
		Admin:        admin.New(deps.Store, cache, deps.PubSub, logger),
		Sessions:     deps.Sessions,
	}, nil
}
