package wren

import (
	"time"

	"github.com/google/uuid"
)

// NewRequestID generates a globally unique, time-sortable UUIDv7 (RFC 9562)
// used to correlate one research() call's tool trace and logs.
func NewRequestID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NowUnix returns the current time as Unix seconds.
func NowUnix() int64 {
	return time.Now().Unix()
}
