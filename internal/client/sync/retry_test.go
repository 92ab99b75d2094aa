package sync

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shelfsync/internal/client/remote"
)

func TestRetryController_ShouldRetry(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantDelay time.Duration
		wantRetry bool
	}{
		{
			name:      "backend supplied delay",
			err:       &remote.Error{Code: remote.CodeRateLimited, RetryAfter: 3 * time.Second},
			wantDelay: 3 * time.Second,
			wantRetry: true,
		},
		{
			name:      "wrapped remote error",
			err:       errors.Join(errors.New("modify"), &remote.Error{Code: remote.CodeServiceUnavailable, RetryAfter: time.Second}),
			wantDelay: time.Second,
			wantRetry: true,
		},
		{
			name: "transient code without delay",
			err:  &remote.Error{Code: remote.CodeNetworkFailure},
		},
		{
			name: "not a remote error",
			err:  errors.New("disk full"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := newTestQueue(t)
			r := NewRetryController(q, testLogger())

			var scheduled []time.Duration
			r.afterFunc = func(d time.Duration, f func()) { scheduled = append(scheduled, d) }

			delay, ok := r.ShouldRetry(tt.err)
			assert.Equal(t, tt.wantRetry, ok)
			assert.Equal(t, tt.wantDelay, delay)
			assert.Equal(t, tt.wantRetry, q.isSuspended())
			if tt.wantRetry {
				assert.Equal(t, []time.Duration{tt.wantDelay}, scheduled)
			} else {
				assert.Empty(t, scheduled)
			}
		})
	}
}

func TestRetryController_ResumesAfterLongestDelay(t *testing.T) {
	q, _ := newTestQueue(t)
	r := NewRetryController(q, testLogger())

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	var timers []func()
	r.afterFunc = func(d time.Duration, f func()) { timers = append(timers, f) }

	_, ok := r.ShouldRetry(&remote.Error{Code: remote.CodeRateLimited, RetryAfter: 10 * time.Second})
	require.True(t, ok)
	_, ok = r.ShouldRetry(&remote.Error{Code: remote.CodeRateLimited, RetryAfter: 2 * time.Second})
	require.True(t, ok)

	// Короткий таймер не снимает более длинную паузу
	now = now.Add(2 * time.Second)
	timers[1]()
	assert.True(t, q.isSuspended())

	now = now.Add(8 * time.Second)
	timers[0]()
	assert.False(t, q.isSuspended())
}

func TestRetryController_RealTimer(t *testing.T) {
	q, _ := newTestQueue(t)
	r := NewRetryController(q, testLogger())

	_, ok := r.ShouldRetry(&remote.Error{Code: remote.CodeRateLimited, RetryAfter: 10 * time.Millisecond})
	require.True(t, ok)
	assert.True(t, q.isSuspended())
	assert.Eventually(t, func() bool { return !q.isSuspended() }, time.Second, 5*time.Millisecond)
}
