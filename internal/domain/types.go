package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts only the two known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Access is the level a route requires.
type Access int

const (
	AccessPublic Access = iota
	AccessAnyAuthenticated
	AccessAdminOnly
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessAnyAuthenticated:
		return "any_authenticated"
	case AccessAdminOnly:
		return "admin_only"
	default:
		return fmt.Sprintf("access(%d)", int(a))
	}
}

// Session is the identity bound to one browser tab.
type Session struct {
	UserID      uuid.UUID `json:"user_id"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"display_name"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Venue       string    `json:"venue"`
	PriceCents  int       `json:"price_cents"`
	Category    string    `json:"category"`
	ImageRef    string    `json:"image_ref"`
}

type PaymentStatus string

const (
	PaymentPaid PaymentStatus = "PAID"
)

// StatusOrPaid reads a stored status; bookings recorded without one were paid.
func StatusOrPaid(s string) PaymentStatus {
	if s == "" {
		return PaymentPaid
	}
	return PaymentStatus(s)
}

// Booking references its event; Event is nil once the event was deleted.
type Booking struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	Event         *Event        `json:"event"`
	CreatedAt     time.Time     `json:"created_at"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// Orphaned reports whether the referenced event no longer exists.
func (b Booking) Orphaned() bool {
	return b.Event == nil
}

type User struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	Phone        string
	ProfilePic   string
	Role         Role
	PasswordHash []byte
	CreatedAt    time.Time
}

// Profile is the public projection of a User.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	ProfilePic string    `json:"profile_pic"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Phone:      u.Phone,
		ProfilePic: u.ProfilePic,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
	}
}

type ProfileUpdate struct {
	FullName   string
	Email      string
	Phone      string
	ProfilePic string
}

// Registration is a booking as seen from the admin side.
type Registration struct {
	BookingID     uuid.UUID     `json:"booking_id"`
	Event         *Event        `json:"event"`
	User          *Profile      `json:"user"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}
