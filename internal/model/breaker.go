package model

import "time"

// BreakerState is the state of a circuit breaker.
type BreakerState string

const (
	BreakerClosed   BreakerState = "CLOSED"
	BreakerOpen     BreakerState = "OPEN"
	BreakerHalfOpen BreakerState = "HALF_OPEN"
)

// BreakerStats is a point in time snapshot of a breaker.
type BreakerStats struct {
	Name             string       `json:"name"`
	State            BreakerState `json:"state"`
	FailureCount     int          `json:"failureCount"`
	FailureThreshold int          `json:"failureThreshold"`
	LastFailureTime  *time.Time   `json:"lastFailureTime,omitempty"`
	ResetTimeout     string       `json:"resetTimeout"`
}
