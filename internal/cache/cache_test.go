package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecents_TouchReportsHotness(t *testing.T) {
	c := New(4)

	assert.False(t, c.Touch("p1", 1))
	assert.True(t, c.Touch("p1", 1))
	assert.False(t, c.Touch("p1", 2))
}

func TestRecents_EvictsOldestFirst(t *testing.T) {
	c := New(2)

	c.Touch("p1", 1)
	c.Touch("p1", 2)
	c.Touch("p1", 3)

	// Page 1 was the oldest and got evicted; touching it again is a miss.
	assert.False(t, c.Touch("p1", 1))
	assert.True(t, c.Touch("p1", 3))
	assert.Equal(t, 2, c.Len())
}

func TestRecents_ForgetDropsOnlyThatPaper(t *testing.T) {
	c := New(8)

	c.Touch("p1", 1)
	c.Touch("p1", 2)
	c.Touch("p2", 1)

	c.Forget("p1")

	assert.False(t, c.Touch("p1", 1))
	assert.True(t, c.Touch("p2", 1))
}

func TestRecents_ZeroCapacityClamped(t *testing.T) {
	c := New(0)
	assert.False(t, c.Touch("p1", 1))
	assert.True(t, c.Touch("p1", 1))
	assert.Equal(t, 1, c.Len())
}
