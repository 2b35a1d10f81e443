package youtube

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
)

type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries:  3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

// do paces fn through the client's limiter and retries transient failures
// with exponential backoff.
func do[T any](ctx context.Context, c *Client, fn func() (T, error)) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		if attempt >= c.retry.MaxRetries || !isRetryable(err) {
			return zero, err
		}

		wait := backoff(c.retry, attempt)
		c.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"wait":    wait,
		}).WithError(err).Debug("retrying youtube call")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

func backoff(rc RetryConfig, attempt int) time.Duration {
	multiplier := rc.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	wait := time.Duration(float64(rc.InitialWait) * math.Pow(multiplier, float64(attempt)))
	if rc.MaxWait > 0 && wait > rc.MaxWait {
		wait = rc.MaxWait
	}
	return wait
}

func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
