package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	UserID     uuid.UUID
	EventID    uuid.UUID
	Title      string
	PriceCents int
	SuccessURL string
	CancelURL  string
}

// Gateway opens a checkout and returns where to send the browser.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
}

// MockGateway approves every checkout by sending the browser straight to
// the success URL.
type MockGateway struct{}

func (MockGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (string, error) {
	if req.SuccessURL == "" {
		return "", errors.New("missing success url")
	}

	return req.SuccessURL, nil
}

// HostedGateway redirects to an external checkout page that sends the
// browser back to one of the return URLs.
type HostedGateway struct {
	checkoutURL *url.URL
}

func NewHostedGateway(checkoutURL string) (*HostedGateway, error) {
	const op = "payment.NewHostedGateway"

	u, err := url.Parse(checkoutURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: checkout url must be absolute", op)
	}

	return &HostedGateway{checkoutURL: u}, nil
}

func (g *HostedGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (string, error) {
	u := *g.checkoutURL

	q := u.Query()
	q.Set("client_reference_id", req.UserID.String())
	q.Set("event_id", req.EventID.String())
	q.Set("title", req.Title)
	q.Set("amount", strconv.Itoa(req.PriceCents))
	q.Set("success_url", req.SuccessURL)
	q.Set("cancel_url", req.CancelURL)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
