package hash

import "encoding/binary"

// ---------------------------------------------------------------------------
// Deterministic binary serialization of a descriptor shape.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Integers: big-endian fixed-width (uint64=8B, uint32=4B)
//   - Variance: single byte
//   - Arguments are referenced by registry id, never inlined; they are
//     already canonical when the parent shape is built.
// ---------------------------------------------------------------------------

// Arg is one type argument of a shape: the canonical id of the argument
// descriptor plus its projection variance.
type Arg struct {
	ID       uint32
	Variance byte
}

// Shape is the structural identity of a descriptor. Two descriptors are
// equal exactly when their shapes are equal, and Serialize is injective
// over shapes, so equal keys imply equal shapes up to SHA-256 collisions.
type Shape struct {
	Star  bool   // star projection; Class is ignored
	Class uint64 // class serial
	Args  []Arg
}

// Equal reports element-wise equality of two shapes.
func (s Shape) Equal(o Shape) bool {
	if s.Star != o.Star {
		return false
	}
	if s.Star {
		return true
	}
	if s.Class != o.Class || len(s.Args) != len(o.Args) {
		return false
	}
	for i := range s.Args {
		if s.Args[i] != o.Args[i] {
			return false
		}
	}
	return true
}

// Serialize produces a deterministic byte serialization of a shape.
// The returned bytes are suitable for hashing with SHA-256.
func Serialize(s Shape) []byte {
	w := &serializer{buf: make([]byte, 0, 16+len(s.Args)*6)}
	w.writeByte(HashVersion)
	w.writeByte(TagDescriptor)
	if s.Star {
		w.writeByte(TagStar)
		return w.buf
	}
	w.writeByte(TagClass)
	w.writeUint64(s.Class)
	w.writeUint32(uint32(len(s.Args)))
	for _, a := range s.Args {
		w.writeByte(TagArg)
		w.writeUint32(a.ID)
		w.writeByte(a.Variance)
	}
	return w.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	s.buf = append(s.buf, b[:]...)
}
