package iterator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newOverlay(over, base *sliceIter) *Overlay[*sliceIter, *sliceIter] {
	iter := new(Overlay[*sliceIter, *sliceIter])
	iter.Load(over, base)
	return iter
}

// TestOverlayShadowing verifies that overlay values win over base values and
// tombstones hide base keys in both directions.
func TestOverlayShadowing(t *testing.T) {
	over := newSliceIter("b", "B2", "c", "<del>", "e", "E", "x", "<del>")
	base := newSliceIter("a", "A", "b", "B", "c", "C", "d", "D")
	iter := newOverlay(over, base)

	require.Equal(t, []string{"a=A", "b=B2", "d=D", "e=E"}, collect(iter))
	require.Equal(t, []string{"e=E", "d=D", "b=B2", "a=A"}, collectReverse(iter))
	require.NoError(t, iter.Error())
}

// TestOverlayDirectionChange walks back and forth across shadowed and
// deleted keys.
func TestOverlayDirectionChange(t *testing.T) {
	over := newSliceIter("b", "<del>", "c", "C2")
	base := newSliceIter("a", "A", "b", "B", "c", "C", "d", "D")
	iter := newOverlay(over, base)

	require.True(t, iter.Seek([]byte("b")))
	require.Equal(t, "c", string(iter.Key()))
	require.Equal(t, "C2", string(iter.Val()))

	require.True(t, iter.Prev())
	require.Equal(t, "a", string(iter.Key()))

	require.True(t, iter.Next())
	require.Equal(t, "c", string(iter.Key()))

	require.True(t, iter.Next())
	require.Equal(t, "d", string(iter.Key()))

	require.False(t, iter.Next())
	require.False(t, iter.Valid())

	require.True(t, iter.SeekLast())
	require.Equal(t, "d", string(iter.Key()))
	require.True(t, iter.Prev())
	require.Equal(t, "c", string(iter.Key()))
	require.True(t, iter.Prev())
	require.Equal(t, "a", string(iter.Key()))
	require.False(t, iter.Prev())
}

func TestOverlayOnlyTombstones(t *testing.T) {
	over := newSliceIter("a", "<del>", "b", "<del>")
	base := newSliceIter("a", "A", "b", "B")
	iter := newOverlay(over, base)

	require.False(t, iter.SeekFirst())
	require.False(t, iter.SeekLast())
	require.False(t, iter.Seek([]byte("a")))

	iter.Close()
	require.True(t, over.closed)
	require.True(t, base.closed)
}

func TestOverlayEmptyBase(t *testing.T) {
	iter := newOverlay(newSliceIter("k", "", "m", "M"), newSliceIter())

	require.True(t, iter.SeekFirst())
	require.Equal(t, "k", string(iter.Key()))
	require.NotNil(t, iter.Val())
	require.Empty(t, iter.Val())
	require.Equal(t, []string{"m=M", "k="}, collectReverse(iter))
}
