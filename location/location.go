package location

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
)

// Coordinates is a device position fix.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Options controls one position request.
type Options struct {
	HighAccuracy bool
	// Timeout bounds how long the provider may take to produce a fix.
	Timeout time.Duration
	// MaximumAge is the oldest acceptable cached fix.
	MaximumAge time.Duration
}

// Provider produces a single position fix. Implementations must honor ctx
// cancellation; the acquirer wraps every attempt in a deadline.
type Provider interface {
	Position(ctx context.Context, opts Options) (Coordinates, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, opts Options) (Coordinates, error)

func (f ProviderFunc) Position(ctx context.Context, opts Options) (Coordinates, error) {
	return f(ctx, opts)
}

// Error is a terminal location-acquisition failure. The caller must let
// the submitter proceed with manual address entry.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("unable to acquire location: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// attempts is the fixed two-tier policy: a normal attempt first, then one
// relaxed retry with a longer timeout and a wider cached-fix window.
var attempts = []Options{
	{HighAccuracy: false, Timeout: 15 * time.Second, MaximumAge: 60 * time.Second},
	{HighAccuracy: false, Timeout: 20 * time.Second, MaximumAge: 300 * time.Second},
}

// Acquirer retrieves device coordinates with the two-attempt policy.
// Total worst-case wait is bounded by the sum of the attempt timeouts.
type Acquirer struct {
	provider Provider
}

// NewAcquirer creates an acquirer over the given provider.
func NewAcquirer(provider Provider) *Acquirer {
	return &Acquirer{provider: provider}
}

// Acquire requests a position fix, retrying exactly once with the relaxed
// policy. Permission denial, timeout, and unavailability are all handled
// the same way: fall through to the next attempt, then fail.
func (a *Acquirer) Acquire(ctx context.Context) (Coordinates, error) {
	var lastErr error
	for i, opts := range attempts {
		attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		coords, err := a.provider.Position(attemptCtx, opts)
		cancel()
		if err == nil {
			return coords, nil
		}
		lastErr = err
		if i == 0 {
			log.WithError(err).Warnf("location attempt failed, retrying with relaxed policy")
		}
		if ctx.Err() != nil {
			break
		}
	}
	return Coordinates{}, &Error{Reason: lastErr.Error(), Err: lastErr}
}
