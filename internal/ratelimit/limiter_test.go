package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_AdmitsUnderLimit(t *testing.T) {
	w := NewWindow(time.Second, 3)

	for i := 0; i < 3; i++ {
		_, ok := w.canHitAt(0)
		require.True(t, ok, "hit %d should be admitted", i)
		w.hitAt(0)
	}

	_, ok := w.canHitAt(0)
	assert.False(t, ok, "4th hit in the same instant should be deferred")
}

func TestWindow_SlidesOutOldHits(t *testing.T) {
	w := NewWindow(time.Second, 1)

	w.hitAt(0)
	_, ok := w.canHitAt(500 * time.Millisecond)
	assert.False(t, ok, "still within the 1s window")

	_, ok = w.canHitAt(time.Second + time.Millisecond)
	assert.True(t, ok, "hit has aged out of the window")
}

func TestWindow_WaitIsBoundedByBucketWidth(t *testing.T) {
	w := NewWindow(time.Second, 1)
	w.hitAt(0)

	wait, ok := w.canHitAt(10 * time.Millisecond)
	require.False(t, ok)
	assert.LessOrEqual(t, wait, time.Second+w.slotSize)
	assert.Greater(t, wait, time.Duration(0))
}

func TestWindow_RingDoesNotGrowUnbounded(t *testing.T) {
	w := NewWindow(20*time.Second, 1000000)

	for i := 0; i < 1000; i++ {
		at := time.Duration(i) * time.Millisecond
		w.hitAt(at)
	}

	assert.LessOrEqual(t, len(w.slots), CAP)
}

func TestGroup_AdmitsOnlyWhenAllWindowsAdmit(t *testing.T) {
	g := NewGroup().
		AddWindow(time.Second, 10).
		AddWindow(time.Minute, 1)

	_, admitted := g.HitAt(0)
	require.True(t, admitted)

	wait, admitted := g.HitAt(time.Millisecond)
	assert.False(t, admitted, "per-minute window should block the second hit")
	assert.Greater(t, wait, time.Duration(0))
}

func TestGroup_DeferredHitRecordsNothing(t *testing.T) {
	g := NewGroup().AddWindow(time.Second, 1)

	_, admitted := g.HitAt(0)
	require.True(t, admitted)

	_, admitted = g.HitAt(time.Millisecond)
	require.False(t, admitted)

	// A later admission at the same instant should still be blocked by
	// exactly one recorded hit, not two.
	_, admitted = g.HitAt(2 * time.Millisecond)
	assert.False(t, admitted)
}
