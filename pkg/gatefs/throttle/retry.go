package throttle

import (
	"context"
	"math/rand"
	"time"
)

// retry runs fn under cfg's retry policy. Only descriptor-exhaustion
// failures are re-attempted; the final error is returned unchanged so
// callers see the same shape the underlying primitive produced.
func retry(ctx context.Context, cfg Config, operation string, notifier Notifier, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if Classify(err) != ClassRetryable || attempt >= cfg.MaxRetries {
			return err
		}

		delay := backoffDelay(cfg, attempt)
		if notifier != nil {
			notifier.NotifyRetry(RetryEvent{
				Operation: operation,
				Attempt:   attempt,
				Delay:     delay,
				Err:       err,
			})
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// backoffDelay computes min(base*2^attempt + uniform(0,base), max).
// Exponential growth drains descriptor pressure while the jitter keeps
// many throttled operations from retrying in lockstep.
func backoffDelay(cfg Config, attempt int) time.Duration {
	// Past ~30 doublings the exponential term exceeds any sane MaxDelay;
	// clamp early to avoid shift overflow.
	if attempt > 30 {
		return cfg.MaxDelay
	}
	backoff := cfg.BaseDelay << uint(attempt)
	if backoff <= 0 || backoff >= cfg.MaxDelay {
		return cfg.MaxDelay
	}
	backoff += time.Duration(rand.Int63n(int64(cfg.BaseDelay)))
	if backoff > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return backoff
}
