package timemanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTime_EmitsDateTimeChangedImmediately(t *testing.T) {
	tm := New()
	var got time.Time
	var calls int
	tm.OnDateTimeChanged(func(dt time.Time) {
		calls++
		got = dt
	})

	target := time.Date(2026, 1, 15, 10, 15, 0, 0, time.UTC)
	tm.SetTime(target)

	require.Equal(t, 1, calls)
	assert.True(t, target.Equal(got))
}

func TestSetTime_AdjustsCurrentDateTime(t *testing.T) {
	tm := New()
	target := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	tm.SetTime(target)

	now := tm.CurrentDateTime()
	assert.WithinDuration(t, target, now, 2*time.Second)
}

func TestSetTime_SequentialAdvanceFiresOncePerCall(t *testing.T) {
	tm := New()
	var seen []time.Time
	tm.OnDateTimeChanged(func(dt time.Time) { seen = append(seen, dt) })

	base := time.Date(2026, 1, 1, 10, 14, 0, 0, time.UTC)
	tm.SetTime(base)
	tm.SetTime(base.Add(time.Minute))
	tm.SetTime(base.Add(2 * time.Minute))

	require.Len(t, seen, 3)
	assert.Equal(t, 14, seen[0].Minute())
	assert.Equal(t, 15, seen[1].Minute())
	assert.Equal(t, 16, seen[2].Minute())
}

func TestTick_DoesNotFireDateTimeChanged(t *testing.T) {
	tm := New()
	var ticks, dtChanges int
	tm.OnTick(func() { ticks++ })
	tm.OnDateTimeChanged(func(time.Time) { dtChanges++ })

	tm.Tick()
	tm.Tick()

	assert.Equal(t, 2, ticks)
	assert.Equal(t, 0, dtChanges)
}

func TestStop_Idempotent(t *testing.T) {
	tm := New()
	assert.NotPanics(t, func() {
		tm.Stop()
		tm.Stop()
	})
}
