package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPickRepresentative_SpreadAndDeterminism(t *testing.T) {
	starts := stepTimes(at(9, 0), at(13, 30), 30*time.Minute) // 10 starts
	assert.Len(t, starts, 10)

	first := PickRepresentative(starts, 3)
	second := PickRepresentative(starts, 3)

	assert.Equal(t, first, second)
	// Bands of 90 minutes: [09:00,10:30) [10:30,12:00) [12:00,13:30]
	assert.Equal(t, []time.Time{at(9, 0), at(10, 30), at(12, 0)}, first)
}

func TestPickRepresentative_NoBackfill(t *testing.T) {
	starts := []time.Time{at(9, 0), at(9, 15), at(9, 30), at(16, 45), at(17, 0)}

	got := PickRepresentative(starts, 4)

	// Middle bands are empty and stay empty.
	assert.Equal(t, []time.Time{at(9, 0), at(16, 45)}, got)
}

func TestPickRepresentative_ReturnsAllWhenFew(t *testing.T) {
	starts := []time.Time{at(12, 0), at(9, 0)}

	assert.Equal(t, starts, PickRepresentative(starts, 5))
	assert.Equal(t, starts, PickRepresentative(starts, 3))
	assert.Equal(t, starts, PickRepresentative(starts, 0))
	assert.Empty(t, PickRepresentative(nil, 3))
}

func TestPickRepresentative_ExactlyMaxCountStillBanded(t *testing.T) {
	starts := []time.Time{at(9, 0), at(9, 15), at(9, 30), at(17, 0)}

	got := PickRepresentative(starts, 4)

	// Bands of 2h: the morning cluster collapses to its earliest start.
	assert.Equal(t, []time.Time{at(9, 0), at(17, 0)}, got)
}

func TestPickRepresentative_DoesNotMutateInput(t *testing.T) {
	starts := []time.Time{at(11, 0), at(9, 0), at(10, 0), at(12, 0)}
	snapshot := append([]time.Time(nil), starts...)

	got := PickRepresentative(starts, 2)

	assert.Equal(t, snapshot, starts)
	assert.Equal(t, []time.Time{at(9, 0), at(11, 0)}, got)
}

func TestPickRepresentative_WideRange(t *testing.T) {
	start := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2150, 1, 1, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2050, 6, 1, 0, 0, 0, 0, time.UTC)

	got := PickRepresentative([]time.Time{start, mid, mid.Add(time.Hour), end}, 3)

	assert.Equal(t, []time.Time{start, mid, end}, got)
}
