// Package retry runs an operation under an explicit attempt budget with
// classified errors and a pluggable clock.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
)

// Action tells the policy what to do after a failed attempt.
type Action int

const (
	// Abort stops immediately and returns the error.
	Abort Action = iota
	// RetryAfterBackoff waits Backoff.Duration(attempt) before the next attempt.
	RetryAfterBackoff
	// RetryAfterDelay waits the fixed Delay before the next attempt.
	RetryAfterDelay
)

func (a Action) String() string {
	switch a {
	case Abort:
		return "abort"
	case RetryAfterBackoff:
		return "backoff"
	case RetryAfterDelay:
		return "delay"
	default:
		return "unknown"
	}
}

// Backoff computes the wait after a failed attempt (1-based).
type Backoff interface {
	Duration(attempt int) time.Duration
	// Max is the upper bound of Duration for the same attempt.
	Max(attempt int) time.Duration
}

// Linear waits attempt×Step plus a uniform jitter in [0, Jitter).
type Linear struct {
	Step   time.Duration
	Jitter time.Duration
	// Rand returns a value in [0, 1). Nil uses math/rand/v2.
	Rand func() float64
}

// Duration implements Backoff.
func (l Linear) Duration(attempt int) time.Duration {
	d := time.Duration(attempt) * l.Step
	if l.Jitter > 0 {
		rnd := l.Rand
		if rnd == nil {
			rnd = rand.Float64
		}
		d += time.Duration(rnd() * float64(l.Jitter))
	}
	return d
}

// Max implements Backoff.
func (l Linear) Max(attempt int) time.Duration {
	return time.Duration(attempt)*l.Step + l.Jitter
}

// Policy describes how many times to run an operation and how long to wait
// between runs. The zero value runs the operation once.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	Delay       time.Duration
	// Classify maps an attempt error to an Action. Nil retries everything
	// after Delay.
	Classify func(error) Action
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
	Clock   clockwork.Clock
}

// Do calls fn until it succeeds, the attempt budget is spent, the classifier
// aborts, or ctx is done. It returns the number of attempts made and the
// last error. No wait follows the final attempt.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (int, error) {
	maxAttempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, errors.Join(err, lastErr)
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == maxAttempts {
			break
		}

		action := p.classify(lastErr)
		if action == Abort {
			return attempt, lastErr
		}

		wait := p.wait(action, attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr, wait)
		}
		if err := p.sleep(ctx, wait); err != nil {
			return attempt, errors.Join(err, lastErr)
		}
	}
	return maxAttempts, lastErr
}

// MaxWait is the longest total time Do can spend waiting between attempts.
func (p Policy) MaxWait() time.Duration {
	var total time.Duration
	for attempt := 1; attempt < max(p.MaxAttempts, 1); attempt++ {
		d := p.Delay
		if p.Backoff != nil {
			d = max(d, p.Backoff.Max(attempt))
		}
		total += d
	}
	return total
}

func (p Policy) classify(err error) Action {
	if p.Classify == nil {
		return RetryAfterDelay
	}
	return p.Classify(err)
}

func (p Policy) wait(action Action, attempt int) time.Duration {
	if action == RetryAfterBackoff && p.Backoff != nil {
		return p.Backoff.Duration(attempt)
	}
	return p.Delay
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	t := clock.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Chan():
		return nil
	}
}
