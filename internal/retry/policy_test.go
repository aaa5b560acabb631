package retry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	errOverload  = errors.New("overloaded")
	errTransport = errors.New("transport")
	errFatal     = errors.New("fatal")
)

func classify(err error) Action {
	switch {
	case errors.Is(err, errOverload):
		return RetryAfterBackoff
	case errors.Is(err, errTransport):
		return RetryAfterDelay
	default:
		return Abort
	}
}

// driveClock advances clk every time something waits on it, until the test ends.
func driveClock(t *testing.T, clk *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			if err := clk.BlockUntilContext(ctx, 1); err != nil {
				return
			}
			clk.Advance(time.Hour)
		}
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

type recorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recorder) onRetry(_ int, _ error, wait time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, wait)
}

func newPolicy(t *testing.T, rec *recorder) Policy {
	clk := clockwork.NewFakeClock()
	driveClock(t, clk)
	return Policy{
		MaxAttempts: 3,
		Backoff:     Linear{Step: 2 * time.Second, Jitter: time.Second, Rand: func() float64 { return 0.5 }},
		Delay:       time.Second,
		Classify:    classify,
		OnRetry:     rec.onRetry,
		Clock:       clk,
	}
}

func TestDo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		errs         []error
		wantAttempts int
		wantErr      error
		wantWaits    []time.Duration
	}{
		{
			name:         "first attempt succeeds",
			errs:         []error{nil},
			wantAttempts: 1,
		},
		{
			name:         "overload then success",
			errs:         []error{errOverload, nil},
			wantAttempts: 2,
			wantWaits:    []time.Duration{2500 * time.Millisecond},
		},
		{
			name:         "overload exhausts budget without final wait",
			errs:         []error{errOverload, errOverload, errOverload},
			wantAttempts: 3,
			wantErr:      errOverload,
			wantWaits:    []time.Duration{2500 * time.Millisecond, 4500 * time.Millisecond},
		},
		{
			name:         "transport errors use fixed delay",
			errs:         []error{errTransport, errTransport, nil},
			wantAttempts: 3,
			wantWaits:    []time.Duration{time.Second, time.Second},
		},
		{
			name:         "fatal aborts immediately",
			errs:         []error{errFatal},
			wantAttempts: 1,
			wantErr:      errFatal,
		},
		{
			name:         "fatal after overload",
			errs:         []error{errOverload, errFatal},
			wantAttempts: 2,
			wantErr:      errFatal,
			wantWaits:    []time.Duration{2500 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &recorder{}
			p := newPolicy(t, rec)

			calls := 0
			attempts, err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
				calls++
				assert.Equal(t, calls, attempt)
				return tt.errs[attempt-1]
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantAttempts, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantWaits, rec.waits)
		})
	}
}

func TestDoStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	clk := clockwork.NewFakeClock()
	p := Policy{MaxAttempts: 3, Delay: time.Minute, Clock: clk}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var attempts int
	var err error
	go func() {
		defer close(done)
		attempts, err = p.Do(ctx, func(context.Context, int) error { return errTransport })
	}()

	require.NoError(t, clk.BlockUntilContext(context.Background(), 1))
	cancel()
	<-done

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errTransport)
}

func TestDoWithDoneContextMakesNoAttempt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := Policy{MaxAttempts: 3}.Do(ctx, func(context.Context, int) error {
		t.Fatal("operation must not run")
		return nil
	})
	assert.Zero(t, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestZeroPolicyRunsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	attempts, err := Policy{}.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errTransport
	})
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, errTransport)
}

func TestMaxWaitBoundsObservedWaits(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	p := newPolicy(t, rec)
	p.Backoff = Linear{Step: 2 * time.Second, Jitter: time.Second, Rand: func() float64 { return 0.999 }}

	_, err := p.Do(context.Background(), func(context.Context, int) error { return errOverload })
	require.ErrorIs(t, err, errOverload)

	var total time.Duration
	for _, w := range rec.waits {
		total += w
	}
	assert.Equal(t, 8*time.Second, p.MaxWait())
	assert.LessOrEqual(t, total, p.MaxWait())
}

func TestLinear(t *testing.T) {
	t.Parallel()

	l := Linear{Step: 2 * time.Second, Jitter: time.Second, Rand: func() float64 { return 0.25 }}
	assert.Equal(t, 2250*time.Millisecond, l.Duration(1))
	assert.Equal(t, 4250*time.Millisecond, l.Duration(2))
	assert.Equal(t, 5*time.Second, l.Max(2))

	noJitter := Linear{Step: time.Second}
	assert.Equal(t, 3*time.Second, noJitter.Duration(3))

	random := Linear{Step: time.Second, Jitter: time.Second}
	for range 100 {
		d := random.Duration(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 2*time.Second)
	}
}
