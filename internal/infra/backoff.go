package infra

import (
	"math"
	"time"
)

const (
	backoffBase = 1 * time.Second
	backoffMax  = 60 * time.Second
)

// CalculateBackoff returns the exponential reconnect delay for the
// current retry attempt, capped at backoffMax.
func CalculateBackoff(retryCount int) time.Duration {
	// Cap retry count to prevent overflow (2^6 = 64 seconds > max 60s)
	if retryCount > 6 {
		return backoffMax
	}
	delay := backoffBase * time.Duration(math.Pow(2, float64(retryCount)))
	if delay > backoffMax {
		delay = backoffMax
	}
	return delay
}
