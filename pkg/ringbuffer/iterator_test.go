package ringbuffer

import (
	"slices"
	"testing"

	"github.com/c360/cyclicbuffer/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wrappedBuffer(t *testing.T) *RingBuffer[int] {
	t.Helper()
	buf, err := New[int](5)
	require.NoError(t, err)
	_, err = buf.InsertAll(testutil.Sequence(1, 8)...)
	require.NoError(t, err)
	require.False(t, buf.IsLinearized())
	return buf
}

func TestIterator(t *testing.T) {
	buf := wrappedBuffer(t)

	it := buf.Iter()
	assert.Equal(t, -1, it.Index())

	var got []int
	for it.Next() {
		assert.Equal(t, len(got), it.Index())
		got = append(got, it.Value())
	}
	assert.Equal(t, []int{4, 5, 6, 7, 8}, got)
	assert.False(t, it.Next(), "exhausted iterator stays exhausted")

	it.Reset()
	require.True(t, it.Next())
	assert.Equal(t, 4, it.Value())
}

func TestIterator_ResetPicksUpChanges(t *testing.T) {
	buf := wrappedBuffer(t)
	it := buf.Iter()

	require.NoError(t, buf.PopFront())
	require.NoError(t, buf.PopFront())
	it.Reset()

	var got []int
	for it.Next() {
		got = append(got, it.Value())
	}
	assert.Equal(t, []int{6, 7, 8}, got)
}

func TestIterator_Empty(t *testing.T) {
	buf, err := New[int](3)
	require.NoError(t, err)

	it := buf.Iter()
	assert.False(t, it.Next())

	zero, err := New[int](0)
	require.NoError(t, err)
	assert.False(t, zero.Iter().Next())
}

func TestAll(t *testing.T) {
	buf := wrappedBuffer(t)

	var positions, values []int
	for i, v := range buf.All() {
		positions = append(positions, i)
		values = append(values, v)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, positions)
	assert.Equal(t, []int{4, 5, 6, 7, 8}, values)
}

func TestValues(t *testing.T) {
	buf := wrappedBuffer(t)
	assert.Equal(t, buf.Linearize(), slices.Collect(buf.Values()))

	var firstTwo []int
	for v := range buf.Values() {
		if len(firstTwo) == 2 {
			break
		}
		firstTwo = append(firstTwo, v)
	}
	assert.Equal(t, []int{4, 5}, firstTwo)
}

func TestBackward(t *testing.T) {
	buf := wrappedBuffer(t)

	var positions, values []int
	for i, v := range buf.Backward() {
		positions = append(positions, i)
		values = append(values, v)
		if i == 2 {
			break
		}
	}
	assert.Equal(t, []int{4, 3, 2}, positions)
	assert.Equal(t, []int{8, 7, 6}, values)
}
