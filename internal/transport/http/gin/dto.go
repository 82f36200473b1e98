package httpgin

import (
	"github.com/kirinyoku/eventease/internal/domain"
	"github.com/kirinyoku/eventease/internal/service/lifecycle"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	FullName  string `json:"full_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Phone     string `json:"phone"`
	AdminCode string `json:"admin_code"`
}

type UpdateProfileRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Phone      string `json:"phone"`
	ProfilePic string `json:"profile_pic"`
}

type ErrorResponse struct {
	Error      string `json:"error"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// RedirectResponse tells a script client where to navigate next.
type RedirectResponse struct {
	Message    string `json:"message,omitempty"`
	RedirectTo string `json:"redirect_to"`
}

type LoginResponse struct {
	// Token is kept by the tab in sessionStorage and sent back as a
	// bearer token.
	Token      string         `json:"token"`
	Welcome    string         `json:"welcome"`
	User       domain.Profile `json:"user"`
	RedirectTo string         `json:"redirect_to"`
}

type PageView struct {
	Page    string          `json:"page"`
	Session *domain.Session `json:"session,omitempty"`
}

type HomeView struct {
	Session  *domain.Session `json:"session"`
	Featured []domain.Event  `json:"featured"`
}

type AboutView struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type EventDetailView struct {
	Event      *domain.Event `json:"event"`
	Registered bool          `json:"registered"`
	Action     string        `json:"action"`
	// Stale is set when the event could not be read and only its id is known.
	Stale bool `json:"stale,omitempty"`
}

type PaymentSummaryView struct {
	EventID    string `json:"event_id"`
	Title      string `json:"title"`
	PriceCents int    `json:"price_cents"`
	Stale      bool   `json:"stale,omitempty"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type DashboardView struct {
	Notice string `json:"notice,omitempty"`
	lifecycle.View
}

type ProfileResponse struct {
	Profile    domain.Profile `json:"profile"`
	RedirectTo string         `json:"redirect_to,omitempty"`
	// Stale is set when the profile was rebuilt from the session alone.
	Stale bool `json:"stale,omitempty"`
}

type AdminEventRow struct {
	Event         domain.Event `json:"event"`
	Registrations int          `json:"registrations"`
}

type AdminDashboardView struct {
	Events             []AdminEventRow       `json:"events"`
	Registrations      []domain.Registration `json:"registrations"`
	TotalRegistrations int                   `json:"total_registrations"`
}

type EventRegistrationsView struct {
	Event         *domain.Event         `json:"event"`
	Registrations []domain.Registration `json:"registrations"`
	Stale         bool                  `json:"stale,omitempty"`
}

type DeleteEventResponse struct {
	OrphanedBookings int64 `json:"orphaned_bookings"`
}
