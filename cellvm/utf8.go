package cellvm

import "fmt"

// DecodeState is the streaming UTF-8 decoder's state: the number of
// continuation bytes still expected before the current Char cell is
// complete. Zero means "ready to start a new scalar".
type DecodeState uint8

// ErrInvalidUTF8 is returned by AllocCharDecodeUTF8 when octet cannot be the
// lead byte of a UTF-8 sequence.
type ErrInvalidUTF8 struct{ Octet byte }

func (e ErrInvalidUTF8) Error() string {
	return fmt.Sprintf("cellvm: invalid UTF-8 lead byte 0x%02x", e.Octet)
}

// AllocCharDecodeUTF8 feeds one octet of a UTF-8 sequence to the decoder.
// On the lead byte it allocates a new Char cell and returns its index along
// with the updated decoder state (the number of continuation bytes still
// required); on a continuation byte it folds the 6 payload bits into the
// most recently allocated cell (found via the free-list head's Prev link)
// and decrements the state.
//
// Lead bytes in 0x80..0xbf (stray continuation bytes) or >= 0xf5 are
// rejected with ErrInvalidUTF8, tightening what refal.h's original decoder
// silently accepted.
func (a *Arena) AllocCharDecodeUTF8(octet byte, state *DecodeState) (Index, error) {
	switch *state {
	case 0:
		i := a.AllocOne()
		a.cells[i].Tag = Char
		switch {
		case octet <= 0x7f:
			a.cells[i].Payload = uint64(octet)
			return i, nil
		case octet >= 0xc2 && octet <= 0xdf:
			*state = 1
			a.cells[i].Payload = uint64(octet & 0x1f)
			return i, nil
		case octet >= 0xe0 && octet <= 0xef:
			*state = 2
			a.cells[i].Payload = uint64(octet & 0x0f)
			return i, nil
		case octet >= 0xf0 && octet <= 0xf4:
			*state = 3
			a.cells[i].Payload = uint64(octet & 0x07)
			return i, nil
		default:
			return i, ErrInvalidUTF8{octet}
		}
	default:
		i := a.cells[a.free].Prev
		*state--
		a.cells[i].Payload = (a.cells[i].Payload << 6) | uint64(octet&0x3f)
		return i, nil
	}
}

// EncodeUTF8 encodes the scalar held by the Char cell at i into ptr, which
// must have room for at least 4 bytes, and returns the number of bytes
// written.
func (a *Arena) EncodeUTF8(i Index, ptr []byte) int {
	r := a.cells[i].Rune()
	switch {
	case r < 0x80:
		ptr[0] = byte(r)
		return 1
	case r < 0x800:
		ptr[0] = 0xc0 | byte(r>>6)
		ptr[1] = 0x80 | byte(r&0x3f)
		return 2
	case r < 0x10000:
		ptr[0] = 0xe0 | byte(r>>12)
		ptr[1] = 0x80 | byte((r>>6)&0x3f)
		ptr[2] = 0x80 | byte(r&0x3f)
		return 3
	default:
		ptr[0] = 0xf0 | byte(r>>18)
		ptr[1] = 0x80 | byte((r>>12)&0x3f)
		ptr[2] = 0x80 | byte((r>>6)&0x3f)
		ptr[3] = 0x80 | byte(r&0x3f)
		return 4
	}
}

// AllocString decodes str (already valid UTF-8, as Go strings are) and
// allocates one Char cell per rune, returning the first cell's index.
func (a *Arena) AllocString(str string) Index {
	r := a.free
	for _, c := range str {
		a.AllocChar(c)
	}
	return r
}
