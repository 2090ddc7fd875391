package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrFetch,
		ErrDelivery,
		ErrMalformed,
		ErrUnavailable,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestFetchError(t *testing.T) {
	t.Run("cause is the underlying message", func(t *testing.T) {
		cause := NewMalformedError("search response", "best_flights is empty")
		err := NewFetchError(cause)

		assert.Equal(t, "search response: best_flights is empty", err.Error())
		assert.True(t, IsFetch(err))
		assert.True(t, IsMalformed(err))
	})

	t.Run("context deadline is preserved", func(t *testing.T) {
		err := NewFetchError(fmt.Errorf("calling search: %w", context.DeadlineExceeded))

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.ErrorIs(t, err, ErrFetch)
		assert.Contains(t, err.Error(), "deadline exceeded")
	})

	t.Run("nil error still yields a fetch error", func(t *testing.T) {
		err := NewFetchError(nil)

		require.Error(t, err)
		assert.True(t, IsFetch(err))
		assert.Equal(t, "unknown error", err.Error())
	})

	t.Run("already a fetch error is not wrapped twice", func(t *testing.T) {
		inner := NewFetchError(errors.New("boom"))
		outer := NewFetchError(fmt.Errorf("ctx: %w", inner))

		var fe *FetchError
		require.ErrorAs(t, outer, &fe)
		assert.Equal(t, "boom", fe.Cause)
	})
}

func TestDeliveryError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
	}{
		{
			name:        "status with reason",
			err:         NewDeliveryStatusError("sendgrid", 500, "internal error"),
			expectedMsg: "sendgrid delivery failed with status 500: internal error",
		},
		{
			name:        "status only",
			err:         NewDeliveryStatusError("sendgrid", 401, ""),
			expectedMsg: "sendgrid delivery failed with status 401",
		},
		{
			name:        "transport error",
			err:         NewDeliveryError("smtp", errors.New("535 authentication failed")),
			expectedMsg: "smtp delivery failed: 535 authentication failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
			assert.True(t, IsDelivery(tt.err))
			assert.False(t, IsFetch(tt.err))
		})
	}
}

func TestDeliveryError_ErrorsAs(t *testing.T) {
	err := fmt.Errorf("cycle: %w", NewDeliveryStatusError("sendgrid", 500, "oops"))

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "sendgrid", de.Transport)
	assert.Equal(t, 500, de.StatusCode)
}

func TestUnavailableError(t *testing.T) {
	assert.Equal(t, `service "serpapi" unavailable: timeout`, NewUnavailableError("serpapi", "timeout").Error())
	assert.Equal(t, `service "serpapi" unavailable`, NewUnavailableError("serpapi", "").Error())
	assert.True(t, IsUnavailable(NewUnavailableError("serpapi", "")))
}
