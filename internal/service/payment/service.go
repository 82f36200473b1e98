package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	"github.com/kirinyoku/eventease/internal/domain"
	"github.com/kirinyoku/eventease/internal/service/catalog"
	"github.com/kirinyoku/eventease/internal/service/registration"
)

type RegistrationChecker interface {
	Check(ctx context.Context, sess *domain.Session, eventID uuid.UUID) (registration.Decision, error)
}

type EventGetter interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

type Service struct {
	gate      RegistrationChecker
	events    EventGetter
	gateway   Gateway
	publicURL *url.URL
	logger    *slog.Logger
}

func New(
	gate RegistrationChecker,
	events EventGetter,
	gateway Gateway,
	publicURL string,
	logger *slog.Logger,
) (*Service, error) {
	const op = "payment.New"

	u, err := url.Parse(publicURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Service{
		gate:      gate,
		events:    events,
		gateway:   gateway,
		publicURL: u,
		logger:    logger,
	}, nil
}

// ReturnURLs builds where the provider sends the browser after checkout.
func (s *Service) ReturnURLs(eventID uuid.UUID) (success, cancel string) {
	su := s.publicURL.JoinPath("dashboard")
	su.RawQuery = url.Values{
		"status":  {"success"},
		"eventId": {eventID.String()},
	}.Encode()

	cu := s.publicURL.JoinPath("events", eventID.String())
	cu.RawQuery = url.Values{"status": {"cancel"}}.Encode()

	return su.String(), cu.String()
}

// StartCheckout opens a checkout for eventID and returns the redirect.
// A failing registration check does not block checkout; duplicates are
// still rejected when the booking is created.
//
// Returns:
//   - error: payment.ErrLoginRequired when sess is nil.
//   - error: payment.ErrAlreadyRegistered when the user holds a booking.
//   - error: payment.ErrEventNotFound when the event does not exist.
//   - error: payment.ErrCheckoutFailed when the gateway fails.
func (s *Service) StartCheckout(ctx context.Context, sess *domain.Session, eventID uuid.UUID) (string, error) {
	const op = "service.payment.StartCheckout"

	if sess == nil {
		return "", fmt.Errorf("%s: %w", op, ErrLoginRequired)
	}

	decision, err := s.gate.Check(ctx, sess, eventID)
	if err != nil {
		s.logger.Warn("registration check failed, continuing",
			slog.String("event_id", eventID.String()),
			slog.Any("err", err),
		)
		decision = registration.DecisionProceed
	}

	switch decision {
	case registration.DecisionProceed:
	case registration.DecisionAlreadyRegistered:
		return "", fmt.Errorf("%s: %w", op, ErrAlreadyRegistered)
	case registration.DecisionLoginRequired:
		return "", fmt.Errorf("%s: %w", op, ErrLoginRequired)
	default:
		return "", fmt.Errorf("%s: unexpected decision %q", op, decision)
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	success, cancel := s.ReturnURLs(eventID)

	redirect, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		UserID:     sess.UserID,
		EventID:    event.ID,
		Title:      event.Title,
		PriceCents: event.PriceCents,
		SuccessURL: success,
		CancelURL:  cancel,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrCheckoutFailed, err)
	}

	return redirect, nil
}
