package httpx

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// StatusConnFailed is the sentinel status for a transport-level
// connection failure (timeout, refused connection, DNS error). It is
// always retryable and never surfaced to callers directly.
const StatusConnFailed = 0

// Policy defines retry-with-backoff behavior for a single call.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     float64 // fraction of the delay, in [0,1]
}

// Backoff returns the sleep before retry attempt (0-indexed):
// min(BaseDelay*2^attempt, MaxDelay) perturbed by up to ±Jitter of
// itself, floored at zero.
func (p Policy) Backoff(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	delay += delay * p.Jitter * (2*rand.Float64() - 1)
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Call performs one attempt and reports its HTTP status and raw body.
// StatusConnFailed with a nil body signals a connection failure.
type Call func(ctx context.Context) (status int, body []byte)

// Retryer reruns a call according to its Policy. The backoff sleep is
// local to the caller and context-aware.
type Retryer struct {
	policy Policy
}

// NewRetryer creates a Retryer with the given policy.
func NewRetryer(policy Policy) *Retryer {
	return &Retryer{policy: policy}
}

// Policy returns the retryer's policy. Stage clients reuse it for their
// own business-level backoff loops.
func (r *Retryer) Policy() Policy { return r.policy }

// Run executes call until it returns 2xx, the status is not retryable,
// or MaxRetries is exhausted. It returns the last observed status and
// body along with the number of retries consumed (0 on first-try
// success). Context cancellation during a backoff sleep returns the
// last observed result.
func (r *Retryer) Run(ctx context.Context, call Call, retryable func(status int) bool) (int, []byte, int) {
	retries := 0
	for {
		status, body := call(ctx)
		if status >= 200 && status < 300 {
			return status, body, retries
		}
		if retries >= r.policy.MaxRetries || !retryable(status) {
			return status, body, retries
		}
		select {
		case <-ctx.Done():
			return status, body, retries
		case <-time.After(r.policy.Backoff(retries)):
		}
		retries++
	}
}
