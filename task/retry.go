package task

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

const DEFAULT_RETRY_INTERVAL = time.Second
const DEFAULT_BACKOFF_RATE = 2.0

type RetryPolicy struct {
	ErrorEquals []ErrorKind
	// MaxAttempts counts retries after the first attempt.
	MaxAttempts int
	Interval    time.Duration
	BackoffRate float64
}

func (p RetryPolicy) Matches(kind ErrorKind) bool {
	if kind == ERROR_TERMINAL {
		return false
	}
	for _, k := range p.ErrorEquals {
		if k == kind || k == ERROR_ALL {
			return true
		}
	}
	return false
}

// Delay returns the wait before retry n, counted from 1.
func (p RetryPolicy) Delay(n int) time.Duration {
	b := p.newBackOff()
	b.Reset()
	var d time.Duration
	for i := 0; i < n; i++ {
		d = b.NextBackOff()
	}
	return d
}

func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	interval := p.Interval
	if interval <= 0 {
		interval = DEFAULT_RETRY_INTERVAL
	}
	rate := p.BackoffRate
	if rate < 1 {
		rate = DEFAULT_BACKOFF_RATE
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.Multiplier = rate
	b.RandomizationFactor = 0
	b.MaxInterval = 24 * time.Hour
	b.MaxElapsedTime = 0
	return b
}

// policyBackOff picks the backoff of the first policy matching the last
// error. Every policy keeps its own attempt budget.
type policyBackOff struct {
	policies []RetryPolicy
	backoffs []backoff.BackOff
	lastErr  *error
}

func newPolicyBackOff(policies []RetryPolicy, lastErr *error) *policyBackOff {
	pb := &policyBackOff{
		policies: policies,
		lastErr:  lastErr,
	}
	for _, p := range policies {
		pb.backoffs = append(pb.backoffs, backoff.WithMaxRetries(p.newBackOff(), uint64(p.MaxAttempts)))
	}
	return pb
}

func (pb *policyBackOff) NextBackOff() time.Duration {
	kind := KindOf(*pb.lastErr)
	for i, p := range pb.policies {
		if p.Matches(kind) {
			return pb.backoffs[i].NextBackOff()
		}
	}
	return backoff.Stop
}

func (pb *policyBackOff) Reset() {
	for _, b := range pb.backoffs {
		b.Reset()
	}
}

type RetryNotify func(attempt int, err error, next time.Duration)

// Retry runs op until it succeeds, the policies give up or ctx is done. It
// returns the number of attempts made and the last error seen.
func Retry(ctx context.Context, policies []RetryPolicy, op func(attempt int) error, notify RetryNotify) (int, error) {
	var lastErr error
	attempts := 0
	operation := func() error {
		attempts++
		err := op(attempts)
		lastErr = err
		if err != nil && KindOf(err) == ERROR_TERMINAL {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.WithContext(newPolicyBackOff(policies, &lastErr), ctx)
	err := backoff.RetryNotify(operation, b, func(err error, next time.Duration) {
		if notify != nil {
			notify(attempts, err, next)
		}
	})
	if err == nil {
		return attempts, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return attempts, ctxErr
	}
	return attempts, lastErr
}
