package bookings

import "errors"

var (
	ErrAlreadyBooked = errors.New("event already booked by user")
	ErrEventNotFound = errors.New("event not found")
	ErrUserNotFound  = errors.New("user not found")
)
