package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNodeAlive(t *testing.T) {
	now := time.Now().Unix()
	n := Node{LastSeen: now - 5}

	assert.True(t, n.Alive(now, 10))
	assert.False(t, n.Alive(now, 4))
	// The boundary counts as alive.
	assert.True(t, n.Alive(now, 5))
}

func TestEventTime(t *testing.T) {
	e := Event{Timestamp: 1700000100.5}
	got := e.Time()
	assert.Equal(t, int64(1700000100), got.Unix())
	assert.InDelta(t, 500*time.Millisecond, time.Duration(got.Nanosecond()), float64(time.Millisecond))
}
