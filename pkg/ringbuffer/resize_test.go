package ringbuffer

import (
	"testing"

	cerrors "github.com/c360/cyclicbuffer/errors"
	"github.com/c360/cyclicbuffer/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResize_Grow(t *testing.T) {
	data := testutil.RandomInts(80, testutil.DefaultSeed)

	buf, err := New[int](80)
	require.NoError(t, err)
	_, err = buf.InsertAll(data...)
	require.NoError(t, err)
	require.NoError(t, buf.SetCapacity(100))

	expected, err := New[int](100)
	require.NoError(t, err)
	_, err = expected.InsertAll(data...)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		require.NoError(t, expected.Insert(5))
	}

	require.NoError(t, buf.Resize(100, 5))

	assert.True(t, Equal(expected, buf))
	assert.True(t, buf.IsFull())
	assert.Equal(t, 0, buf.Head())
	checkInvariants(t, buf)
}

func TestResize_Shrink(t *testing.T) {
	buf, err := New[int](5)
	require.NoError(t, err)
	_, err = buf.InsertAll(testutil.Sequence(1, 7)...)
	require.NoError(t, err)
	head := buf.Head()

	require.NoError(t, buf.Resize(2, 0))

	assert.Equal(t, []int{3, 4}, buf.Linearize())
	assert.Equal(t, head, buf.Head(), "Resize never moves head")
	checkInvariants(t, buf)
}

func TestResize_IgnoresOverwritePolicy(t *testing.T) {
	buf, err := New[int](3, WithOverwrite(false))
	require.NoError(t, err)
	require.NoError(t, buf.Insert(1))

	require.NoError(t, buf.Resize(3, 8))
	assert.Equal(t, []int{1, 8, 8}, buf.Linearize())
}

func TestResizeFront_Grow(t *testing.T) {
	data := testutil.RandomInts(80, testutil.DefaultSeed)

	buf, err := New[int](100)
	require.NoError(t, err)
	_, err = buf.InsertAll(data...)
	require.NoError(t, err)

	require.NoError(t, buf.ResizeFront(100, 5))

	got := buf.Linearize()
	for i := 0; i < 20; i++ {
		assert.Equal(t, 5, got[i])
	}
	assert.Equal(t, data, got[20:])
	assert.Equal(t, 80, buf.Head())
	assert.Equal(t, 80, buf.Tail())
	checkInvariants(t, buf)
}

func TestResizeFront_HeadArithmetic(t *testing.T) {
	buf, err := New[int](5)
	require.NoError(t, err)
	_, err = buf.InsertAll(1, 2)
	require.NoError(t, err)
	tail := buf.Tail()

	require.NoError(t, buf.ResizeFront(4, 0))

	assert.Equal(t, []int{0, 0, 1, 2}, buf.Linearize())
	assert.Equal(t, 3, buf.Head())
	assert.Equal(t, tail, buf.Tail(), "ResizeFront keeps the tail")
	checkInvariants(t, buf)

	require.NoError(t, buf.ResizeFront(1, 0))
	assert.Equal(t, []int{2}, buf.Linearize())
	assert.Equal(t, 1, buf.Head())
	assert.Equal(t, tail, buf.Tail())
}

func TestResize_Errors(t *testing.T) {
	buf, err := New[int](4)
	require.NoError(t, err)
	_, err = buf.InsertAll(1, 2)
	require.NoError(t, err)

	for name, resize := range map[string]func(int, int) error{
		"Resize":      buf.Resize,
		"ResizeFront": buf.ResizeFront,
	} {
		err := resize(-1, 0)
		require.ErrorIs(t, err, cerrors.ErrNegativeSize, name)

		err = resize(5, 0)
		require.ErrorIs(t, err, cerrors.ErrInvalidSize, name)
		assert.True(t, cerrors.IsInvalid(err), name)
	}

	assert.Equal(t, []int{1, 2}, buf.Linearize())
}

func TestResize_ToZero(t *testing.T) {
	buf, err := New[int](3)
	require.NoError(t, err)
	_, err = buf.InsertAll(1, 2, 3, 4)
	require.NoError(t, err)

	require.NoError(t, buf.ResizeFront(0, 0))
	assert.True(t, buf.IsEmpty())
	checkInvariants(t, buf)

	_, err = buf.InsertAll(1, 2, 3, 4)
	require.NoError(t, err)
	require.NoError(t, buf.Resize(0, 0))
	assert.True(t, buf.IsEmpty())
	checkInvariants(t, buf)
}
