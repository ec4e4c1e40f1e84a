package cellvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocGrowsAndLinks(t *testing.T) {
	a := NewArena(2)
	var idx []Index
	for i := 0; i < 10; i++ {
		idx = append(idx, a.AllocNumber(int64(i)))
	}
	for n, i := range idx {
		require.False(t, a.Failed())
		if n > 0 {
			assert.Equal(t, i, a.Next(idx[n-1]))
		}
	}
	assert.Greater(t, a.Len(), 2)
}

func TestFreeEvarDetachesAndFlags(t *testing.T) {
	a := NewArena(8)
	prev := a.AllocCommand(Equal)
	x := a.AllocNumber(1)
	y := a.AllocNumber(2)
	next := a.AllocCommand(Complete)
	a.cells[prev].Next = x
	a.cells[x].Prev = prev
	a.cells[x].Next = y
	a.cells[y].Prev = x
	a.cells[y].Next = next
	a.cells[next].Prev = y

	assert.False(t, a.IsEvarEmpty(prev, next))
	a.FreeEvar(prev, next)
	assert.True(t, a.IsEvarEmpty(prev, next))
	assert.Equal(t, Undefined, a.Cell(x).Tag)
	assert.Equal(t, Undefined, a.Cell(y).Tag)
}

func TestAllocEvarMoveThenInsertNext(t *testing.T) {
	a := NewArena(8)
	prev := a.AllocCommand(Equal)
	x := a.AllocChar('a')
	next := a.AllocCommand(Complete)
	a.cells[prev].Next = x
	a.cells[x].Prev = prev
	a.cells[x].Next = next
	a.cells[next].Prev = x

	first := a.AllocEvarMove(prev, next)
	assert.Equal(t, x, first)
	assert.True(t, a.IsEvarEmpty(prev, next))

	dst := a.AllocCommand(Complete)
	a.cells[prev].Next = dst
	a.cells[dst].Prev = prev
	a.cells[dst].Next = next
	a.cells[next].Prev = dst

	a.InsertNext(prev, first)
	assert.Equal(t, first, a.Next(prev))
}

func TestSvarEqual(t *testing.T) {
	a := NewArena(8)
	x := a.AllocChar('x')
	y := a.AllocChar('x')
	z := a.AllocChar('y')
	assert.True(t, a.SvarEqual(x, y))
	assert.False(t, a.SvarEqual(x, z))
}

func TestLinkBrackets(t *testing.T) {
	a := NewArena(8)
	open := a.AllocCommand(OpenBracket)
	close_ := a.AllocCommand(CloseBracket)
	a.LinkBrackets(open, close_)
	assert.Equal(t, close_, a.Cell(open).Link())
	assert.Equal(t, open, a.Cell(close_).Link())
}

func TestAtomInterning(t *testing.T) {
	a := NewArena(8)
	i := a.AllocAtom("Prout")
	j := a.AllocAtom("Prout")
	assert.Equal(t, a.Cell(i).Payload, a.Cell(j).Payload)
	assert.Equal(t, "Prout", a.AtomString(i))
}

func TestUTF8RoundTrip(t *testing.T) {
	a := NewArena(8)
	var state DecodeState
	s := "a€𝔘"
	var idx []Index
	for i := 0; i < len(s); i++ {
		c, err := a.AllocCharDecodeUTF8(s[i], &state)
		require.NoError(t, err)
		if state == 0 {
			idx = append(idx, c)
		}
	}
	var buf []byte
	out := make([]byte, 4)
	for _, i := range idx {
		n := a.EncodeUTF8(i, out)
		buf = append(buf, out[:n]...)
	}
	assert.Equal(t, s, string(buf))
}

func TestAllocCharDecodeUTF8RejectsStrayContinuation(t *testing.T) {
	a := NewArena(8)
	var state DecodeState
	_, err := a.AllocCharDecodeUTF8(0x80, &state)
	require.Error(t, err)
}

func TestArenaFailStopsAllocation(t *testing.T) {
	a := NewArena(8)
	a.Fail()
	assert.True(t, a.Failed())
	assert.Equal(t, Index(0), a.AllocNumber(1))
}
