package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"resume-builder/internal/domain"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings mirrors the circuit breaker section of the config.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// Fallback asks a remote enhancer first and answers from the local heuristic
// whenever the remote call fails, times out or the breaker is open. Callers
// never see ServiceUnavailable.
type Fallback struct {
	remote  Enhancer
	local   Enhancer
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[domain.Suggestion]
	logger  *slog.Logger
}

func NewFallback(remote, local Enhancer, timeout time.Duration, bs BreakerSettings, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        "remote-enhancer",
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= bs.MinRequests && failureRatio >= bs.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &Fallback{
		remote:  remote,
		local:   local,
		timeout: timeout,
		cb:      gobreaker.NewCircuitBreaker[domain.Suggestion](settings),
		logger:  logger,
	}
}

func (f *Fallback) Enhance(ctx context.Context, req domain.EnhancementRequest) (domain.Suggestion, error) {
	rctx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	s, err := f.cb.Execute(func() (domain.Suggestion, error) {
		return f.remote.Enhance(rctx, req)
	})
	if err == nil {
		return s, nil
	}

	var ee *domain.EnhanceError
	if !errors.As(err, &ee) {
		ee = &domain.EnhanceError{Kind: domain.ServiceUnavailable, Cause: err}
	}
	f.logger.Warn("remote enhancer unavailable, using heuristic",
		"kind", ee.Kind, "field_kind", req.Kind, "breaker", f.cb.State().String(), "error", ee.Cause)

	s, err = f.local.Enhance(ctx, req)
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("local enhancer: %w", err)
	}
	return s, nil
}

// State reports the breaker state for health output.
func (f *Fallback) State() string { return f.cb.State().String() }
