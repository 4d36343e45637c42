package services

import (
	"time"
)

// RetryPolicy bounds retries for reconciliation reads. MaxAttempts counts
// retries after the first try; Backoff is the pause between attempts.
// Money writes are never routed through a policy.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Do runs fn until it succeeds or the attempts are spent, returning the
// last error.
func (p RetryPolicy) Do(fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 0 {
		attempts = 0
	}
	var err error
	for i := 0; i <= attempts; i++ {
		if i > 0 && p.Backoff > 0 {
			time.Sleep(p.Backoff)
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
