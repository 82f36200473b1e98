package redisx

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "eventease:v1"

func KeyEventsList() string {
	return ns + ":events:list"
}

func KeyEvent(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s", ns, eventID)
}

func KeySession(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", ns, sessionID)
}

func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

// KeyIdemBooking guards booking creation for one (user, event) pair.
func KeyIdemBooking(userID, eventID uuid.UUID) string {
	return fmt.Sprintf("%s:idem:booking:%s:%s", ns, userID, eventID)
}

func ChannelEventsChanged() string {
	return ns + ":events:changed"
}
