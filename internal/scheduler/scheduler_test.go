package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-route-service/internal/logger"
)

// fixedDelaySchedule fires a fixed interval after every reference time.
type fixedDelaySchedule struct {
	delay time.Duration
}

func (s fixedDelaySchedule) Next(t time.Time) time.Time {
	return t.Add(s.delay)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate("59 23 * * 0"))
	require.NoError(t, Validate("*/5 * * * *"))
	assert.Error(t, Validate("not a cron"))
	assert.Error(t, Validate("61 * * * *"))
}

func TestArmRejectsInvalidExpression(t *testing.T) {
	s := New(func(context.Context) {}, logger.NopLogger{})
	require.Error(t, s.Arm("banana"))
}

func TestTriggerFires(t *testing.T) {
	var fired atomic.Int32
	s := New(func(context.Context) { fired.Add(1) }, logger.NopLogger{})
	defer s.Disarm()

	s.armSchedule(fixedDelaySchedule{delay: 10 * time.Millisecond})

	assert.Eventually(t, func() bool { return fired.Load() >= 2 },
		2*time.Second, 5*time.Millisecond)
}

func TestRearmReplacesPreviousTrigger(t *testing.T) {
	var fired atomic.Int32
	s := New(func(context.Context) { fired.Add(1) }, logger.NopLogger{})
	defer s.Disarm()

	s.armSchedule(fixedDelaySchedule{delay: 5 * time.Millisecond})
	assert.Eventually(t, func() bool { return fired.Load() >= 1 },
		2*time.Second, time.Millisecond)

	// The old loop must be fully stopped before the new one starts; with
	// an hour-delay schedule armed, no further runs may happen.
	s.armSchedule(fixedDelaySchedule{delay: time.Hour})

	before := fired.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, fired.Load(), "old trigger kept firing after re-arm")
}

func TestDisarmStopsFiring(t *testing.T) {
	var fired atomic.Int32
	s := New(func(context.Context) { fired.Add(1) }, logger.NopLogger{})

	s.armSchedule(fixedDelaySchedule{delay: 5 * time.Millisecond})
	assert.Eventually(t, func() bool { return fired.Load() >= 1 },
		2*time.Second, time.Millisecond)

	s.Disarm()
	before := fired.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, fired.Load())

	// Disarm is idempotent.
	s.Disarm()
}
