package luacode

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// chunkReader is a byte cursor over an immutable input slice.
//
// It never allocates for a fixed-size read and never copies the input
// buffer: readBytes and readString return sub-slices of s that borrow its
// backing array, so the caller of [Undump] must keep the original buffer
// alive for as long as the returned [Prototype] tree is in use
// (spec.md §5: "Strings loaded by the decoder are immutable slices of
// the original chunk buffer").
//
// Grounded on speedata-go-lua/undump.go's loadState, adapted from an
// io.Reader-backed cursor to a slice-backed one per spec.md §4.A.
type chunkReader struct {
	s   []byte
	pos int
}

func newChunkReader(s []byte) *chunkReader {
	return &chunkReader{s: s}
}

func (r *chunkReader) remaining() int {
	return len(r.s) - r.pos
}

// readByte reads a single byte.
func (r *chunkReader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncated
	}
	b := r.s[r.pos]
	r.pos++
	return b, nil
}

// readBytes borrows the next n bytes of the input without copying.
func (r *chunkReader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, ErrTruncated
	}
	b := r.s[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// readU32 reads a little-endian uint32.
func (r *chunkReader) readU32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// readU64 reads a little-endian uint64.
func (r *chunkReader) readU64() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readLuaInteger reads a lua_Integer: a little-endian uint64
// reinterpreted as a signed two's-complement int64.
func (r *chunkReader) readLuaInteger() (int64, error) {
	u, err := r.readU64()
	if err != nil {
		return 0, err
	}
	return int64(u), nil
}

// readLuaNumber reads a lua_Number: a little-endian uint64
// reinterpreted as an IEEE-754 double.
func (r *chunkReader) readLuaNumber() (float64, error) {
	u, err := r.readU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// readBool reads a single byte and reports whether it is non-zero.
func (r *chunkReader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// readString reads a Lua 5.3 chunk string.
//
// The first byte is the "size byte". A value of 0 means the empty
// string. A value of 0xFF means the next 8 bytes hold the true size as a
// little-endian uint64. Otherwise the size byte itself is the size. In
// all cases the size Lua stores includes the string's trailing NUL, so
// the actual payload length is size-1.
func (r *chunkReader) readString() (string, error) {
	sizeByte, err := r.readByte()
	if err != nil {
		return "", err
	}
	if sizeByte == 0 {
		return "", nil
	}
	size := uint64(sizeByte)
	if sizeByte == 0xFF {
		size, err = r.readU64()
		if err != nil {
			return "", err
		}
	}
	if size == 0 {
		return "", fmt.Errorf("luacode: read string: %w", ErrCorrupted)
	}
	payload, err := r.readBytes(int(size - 1))
	if err != nil {
		return "", err
	}
	return unsafe.String(unsafe.SliceData(payload), len(payload)), nil
}

// readInstruction reads a single 32-bit instruction word.
func (r *chunkReader) readInstruction() (Instruction, error) {
	u, err := r.readU32()
	if err != nil {
		return 0, err
	}
	return Instruction(u), nil
}
