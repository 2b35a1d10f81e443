package youtube

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestBackoff(t *testing.T) {
	rc := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, backoff(rc, 0))
	assert.Equal(t, 200*time.Millisecond, backoff(rc, 1))
	assert.Equal(t, 400*time.Millisecond, backoff(rc, 2))
	assert.Equal(t, time.Second, backoff(rc, 10))

	rc.Multiplier = 0
	assert.Equal(t, 100*time.Millisecond, backoff(rc, 3))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"unavailable", &googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		{"wrapped server error", errors.Wrap(&googleapi.Error{Code: http.StatusInternalServerError}, "videos"), true},
		{"quota exceeded", &googleapi.Error{Code: http.StatusForbidden}, false},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, false},
		{"connection refused", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "youtube.test"}, true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}
