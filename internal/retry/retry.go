// Package retry waits for a backing service to answer at startup, with
// exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/logger"
)

// Policy defines connection retry behavior.
type Policy struct {
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // warn after this many attempts
}

// DefaultPolicy is used by backends that expose no retry settings.
var DefaultPolicy = Policy{
	ConnectTimeout: 30 * time.Second,
	RetryInterval:  2 * time.Second,
	MaxWait:        10 * time.Second,
	PingTimeout:    5 * time.Second,
	WarnThreshold:  3,
}

// Validate ensures all values are usable.
func (p Policy) Validate() error {
	if p.ConnectTimeout <= 0 {
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", p.ConnectTimeout)
	}
	if p.RetryInterval <= 0 {
		return fmt.Errorf("RetryInterval must be > 0, got %v", p.RetryInterval)
	}
	if p.MaxWait <= 0 {
		return fmt.Errorf("MaxWait must be > 0, got %v", p.MaxWait)
	}
	if p.PingTimeout <= 0 {
		return fmt.Errorf("PingTimeout must be > 0, got %v", p.PingTimeout)
	}
	if p.WarnThreshold < 0 {
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", p.WarnThreshold)
	}
	return nil
}

// Pinger is one reachability check.
type Pinger func(ctx context.Context) error

// attemptLogger handles all connection logging for one backend.
type attemptLogger struct {
	log     logger.Logger
	backend string
	addr    string
}

func (al *attemptLogger) start(timeout time.Duration) {
	al.log.Info("connecting to "+al.backend,
		logger.String("addr", al.addr),
		logger.Duration("timeout", timeout))
}

func (al *attemptLogger) success(attempts int, elapsed time.Duration) {
	if attempts > 1 {
		al.log.Warn("connected to "+al.backend+" after retry",
			logger.String("addr", al.addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	al.log.Info("connected to "+al.backend, logger.String("addr", al.addr))
}

func (al *attemptLogger) timeout(attempts int, timeout time.Duration, err error) {
	al.log.Error(al.backend+" unavailable - failed to connect after timeout",
		logger.String("addr", al.addr),
		logger.Int("attempts", attempts),
		logger.Duration("timeout", timeout),
		logger.Error(err))
}

func (al *attemptLogger) retry(attempt int, remaining, next time.Duration, warnThreshold int, err error) {
	switch {
	case remaining < 10*time.Second:
		al.log.Error(al.backend+" still down - retrying but timeout approaching",
			logger.String("addr", al.addr),
			logger.Int("attempt", attempt),
			logger.Duration("remaining", remaining),
			logger.Duration("next_retry_in", next),
			logger.Error(err))
	case attempt <= warnThreshold:
		al.log.Warn(al.backend+" connection failed, retrying",
			logger.String("addr", al.addr),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", next),
			logger.Error(err))
	default:
		al.log.Error(al.backend+" still unavailable - connection attempts failing",
			logger.String("addr", al.addr),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", next),
			logger.Error(err))
	}
}

// Connect pings until the backend answers or the policy's ConnectTimeout
// runs out. backend and addr only feed the logs and the returned error.
func Connect(ctx context.Context, backend, addr string, ping Pinger, p Policy, log logger.Logger) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid %s retry policy: %w", backend, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.ConnectTimeout)
	defer cancel()

	al := &attemptLogger{log: log, backend: backend, addr: addr}
	al.start(p.ConnectTimeout)

	attempt := 0
	wait := p.RetryInterval

	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, p.PingTimeout)
		err := ping(pingCtx)
		pingCancel()

		if err == nil {
			al.success(attempt, p.ConnectTimeout-timeLeft(ctx))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			al.timeout(attempt, p.ConnectTimeout, err)
			return fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				backend, addr, attempt, p.ConnectTimeout, err)

		case <-timer.C:
			al.retry(attempt, timeLeft(ctx), wait, p.WarnThreshold, err)
			wait = nextWait(wait, p.MaxWait)
		}
	}
}

// nextWait doubles wait, capped at limit.
func nextWait(wait, limit time.Duration) time.Duration {
	wait *= 2
	if wait > limit {
		return limit
	}
	return wait
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
