package testutil

import (
	"math/rand"
)

// DefaultSeed is the seed used by the buffer test suites so runs are reproducible.
const DefaultSeed = 127

// RandomDataLength is the element count most buffer tests work with.
const RandomDataLength = 100

// RandomInts returns n pseudo-random non-negative ints from a source seeded with seed.
// The same (n, seed) pair always yields the same slice.
func RandomInts(n int, seed int64) []int {
	r := rand.New(rand.NewSource(seed))
	out := make([]int, n)
	for i := range out {
		out[i] = r.Int()
	}
	return out
}

// Sequence returns [start, start+1, ..., start+n-1].
func Sequence(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// TestStrings contains plain string payloads for generic-type buffer tests.
var TestStrings = []string{
	"first",
	"second",
	"third",
	"fourth",
	"fifth",
}

// GenericEvent is a core generic event structure for testing struct element types.
type GenericEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
	Timestamp int64          `json:"timestamp"`
}

// NewGenericEvent creates a new generic test event.
func NewGenericEvent(id, eventType string, timestamp int64) *GenericEvent {
	return &GenericEvent{
		EventID:   id,
		EventType: eventType,
		Data:      make(map[string]any),
		Timestamp: timestamp,
	}
}
