package mq

import (
	"time"

	"github.com/google/uuid"
)

// Booking confirmations flow from the bookings service to the ticket
// mailer through one durable queue.
const (
	BookingConfirmedQueue = "bookings.confirmed.ticket"
)

type BookingConfirmedMessage struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	EventID    uuid.UUID `json:"event_id"`
	EventTitle string    `json:"event_title"`
	EventDate  time.Time `json:"event_date"`
	Venue      string    `json:"venue"`
	BookedAt   time.Time `json:"booked_at"`
}
