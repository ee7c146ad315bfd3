package timer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodebooks/kernel/internal/kernelerr"
)

func alwaysSettled() bool { return true }

func TestDrainWaitsForTimeout(t *testing.T) {
	c := New(nil)
	var fired int32
	c.SetTimeout(10*time.Millisecond, func() error {
		atomic.StoreInt32(&fired, 1)
		return nil
	})

	stage, ok := c.Drain(context.Background(), time.Now().Add(2*time.Second), alwaysSettled)
	require.True(t, ok)
	assert.Equal(t, StageIntervals, stage)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestDrainGivesIntervalsOneFirstTick(t *testing.T) {
	c := New(nil)
	var ticks int32
	c.SetInterval(5*time.Millisecond, func() error {
		atomic.AddInt32(&ticks, 1)
		return nil
	})

	// The interval is never cleared, so the intervals stage (which waits
	// for no interval to remain pending) runs out of budget.
	stage, ok := c.Drain(context.Background(), time.Now().Add(200*time.Millisecond), alwaysSettled)
	require.False(t, ok)
	assert.Equal(t, StageIntervals, stage)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&ticks), int32(1))
	assert.Equal(t, 0, c.FirstTickPendingCount())
}

func TestClearTimeoutPreventsInvocation(t *testing.T) {
	c := New(nil)
	var fired int32
	h := c.SetTimeout(5*time.Millisecond, func() error {
		atomic.StoreInt32(&fired, 1)
		return nil
	})
	c.ClearTimeout(h)

	_, ok := c.Drain(context.Background(), time.Now().Add(50*time.Millisecond), alwaysSettled)
	require.True(t, ok)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestDrainTimesOutDuringTimeoutStage(t *testing.T) {
	c := New(nil)
	c.SetTimeout(time.Second, func() error { return nil })

	stage, ok := c.Drain(context.Background(), time.Now().Add(20*time.Millisecond), alwaysSettled)
	require.False(t, ok)
	assert.Equal(t, StageTimeouts, stage)
}

func TestDrainWaitsOnPromiseStageUntilSettled(t *testing.T) {
	c := New(nil)
	var settled int32
	c.SetTimeout(10*time.Millisecond, func() error {
		atomic.StoreInt32(&settled, 1)
		return nil
	})

	stage, ok := c.Drain(context.Background(), time.Now().Add(2*time.Second), func() bool {
		return atomic.LoadInt32(&settled) == 1
	})
	require.True(t, ok)
	assert.Equal(t, StageIntervals, stage)
}

func TestAsyncErrorIsRecordedAndEchoed(t *testing.T) {
	var echoedName, echoedMessage string
	c := New(func(name, message string) {
		echoedName = name
		echoedMessage = message
	})
	c.SetTimeout(5*time.Millisecond, func() error {
		return &kernelerr.AsyncError{Name: "ReferenceError", Message: "boom"}
	})

	_, ok := c.Drain(context.Background(), time.Now().Add(200*time.Millisecond), alwaysSettled)
	require.True(t, ok)

	errs := c.AsyncErrors()
	require.Len(t, errs, 1)
	assert.Equal(t, "ReferenceError", errs[0].Name)
	assert.Equal(t, "boom", errs[0].Message)
	assert.Equal(t, "ReferenceError", echoedName)
	assert.Equal(t, "boom", echoedMessage)
}
