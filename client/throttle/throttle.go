package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrInvalidLimit  = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// throttle is an http.RoundTripper, using the time/rate token
// bucket limiter to restrict outbound calls.
type throttle struct {
	limiter *rate.Limiter
	limit   rate.Limit
	burst   int
	next    http.RoundTripper
	logFn   func() *slog.Logger
}

// NewRoundTripper returns an http.RoundTripper that throttles outbound
// requests using a token bucket limiter. Use rate.Every(interval) for a
// minimum spacing between requests, or a plain rate.Limit for a
// requests-per-second cap. logFn lazily resolves the logger at request
// time, making option ordering irrelevant; a nil-returning logFn
// disables the wait logging.
func NewRoundTripper(limit rate.Limit, burst int, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if limit <= 0 || burst <= 0 {
		return nil, fmt.Errorf("limit[%v] and burst[%d] %w", limit, burst, ErrInvalidLimit)
	}

	t := &throttle{
		limiter: rate.NewLimiter(limit, burst),
		limit:   limit,
		burst:   burst,
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.limiter == nil {
		return t.next.RoundTrip(r)
	}

	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	// Tokens is used for the exhaustion check rather than Allow, which
	// would consume a token on top of the Wait below.
	var waited time.Duration
	logger := t.logFn()
	if logger != nil && t.limiter.Tokens() < 1 {
		logger.Info("throttle tokens exhausted", "rate", float64(t.limit), "burst", t.burst, "path", r.URL.Path)

		defer func() {
			logger.Info("throttle wait complete", "waited", waited.String(), "rate", float64(t.limit), "burst", t.burst)
		}()
	}

	start := time.Now()

	err := t.limiter.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}
