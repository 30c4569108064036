package state

import (
	"github.com/google/uuid"
)

// SessionID identifies this editing session in logs and analytics events.
var SessionID = uuid.NewString()

func newStrokeID() string {
	return uuid.NewString()
}
