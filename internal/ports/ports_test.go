package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChecker implements HealthChecker for testing.
type stubChecker struct {
	name string
	err  error
}

func (s *stubChecker) Name() string {
	return s.name
}

func (s *stubChecker) Check(context.Context) error {
	return s.err
}

// slowChecker blocks until its context is done or delay elapses.
type slowChecker struct {
	name  string
	delay time.Duration
}

func (s *slowChecker) Name() string {
	return s.name
}

func (s *slowChecker) Check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
		return nil
	}
}

func TestNewHealthRegistry_DefaultTimeout(t *testing.T) {
	registry := NewHealthRegistry(0)

	require.NotNil(t, registry)
	assert.Equal(t, DefaultCheckTimeout, registry.checkTimeout)
	assert.Empty(t, registry.checkers)
}

func TestRegister_DuplicateName(t *testing.T) {
	registry := NewHealthRegistry(time.Second)

	require.NoError(t, registry.Register(&stubChecker{name: "serpapi"}))

	err := registry.Register(&stubChecker{name: "serpapi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "serpapi")
}

func TestCheckAll_NoCheckers(t *testing.T) {
	result := NewHealthRegistry(time.Second).CheckAll(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Empty(t, result.Checks)
	assert.False(t, result.Timestamp.IsZero())
}

func TestCheckAll_MixedResults(t *testing.T) {
	registry := NewHealthRegistry(time.Second)
	require.NoError(t, registry.Register(&stubChecker{name: "serpapi"}))
	require.NoError(t, registry.Register(&stubChecker{name: "sendgrid", err: errors.New("credentials rejected")}))

	result := registry.CheckAll(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	require.Len(t, result.Checks, 2)
	assert.Equal(t, HealthStatusHealthy, result.Checks["serpapi"].Status)
	assert.Empty(t, result.Checks["serpapi"].Message)
	assert.Equal(t, HealthStatusUnhealthy, result.Checks["sendgrid"].Status)
	assert.Equal(t, "credentials rejected", result.Checks["sendgrid"].Message)
}

func TestCheckAll_PerCheckTimeout(t *testing.T) {
	registry := NewHealthRegistry(20 * time.Millisecond)
	require.NoError(t, registry.Register(&slowChecker{name: "slow", delay: time.Second}))
	require.NoError(t, registry.Register(&stubChecker{name: "fast"}))

	start := time.Now()
	result := registry.CheckAll(context.Background())

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["slow"].Message, "deadline exceeded")
	assert.Equal(t, HealthStatusHealthy, result.Checks["fast"].Status)
}

func TestCheckAll_ContextCancelled(t *testing.T) {
	registry := NewHealthRegistry(time.Second)
	require.NoError(t, registry.Register(&slowChecker{name: "slow", delay: 100 * time.Millisecond}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["slow"].Message, "context canceled")
}
