package message

import (
	"fmt"

	"github.com/google/uuid"

	"cbor-rpc/codec"
)

// MethodID identifies a remote method, either by name or by a numeric
// index. The zero MethodID is the numeric id 0.
type MethodID struct {
	str  string
	num  uint64
	text bool
}

// MethodName returns a textual method identifier.
func MethodName(name string) MethodID { return MethodID{str: name, text: true} }

// MethodNum returns a numeric method identifier.
func MethodNum(n uint64) MethodID { return MethodID{num: n} }

// IsName reports whether the identifier is textual.
func (m MethodID) IsName() bool { return m.text }

// Name returns the textual identifier, reporting false for numeric ids.
func (m MethodID) Name() (string, bool) { return m.str, m.text }

// Num returns the numeric identifier, reporting false for textual ids.
func (m MethodID) Num() (uint64, bool) { return m.num, !m.text }

// Equal reports structural equality.
func (m MethodID) Equal(o MethodID) bool { return m == o }

func (m MethodID) String() string {
	if m.text {
		return m.str
	}
	return fmt.Sprintf("#%d", m.num)
}

// Value returns the canonical dynamic value form: text for names,
// unsigned integer for numeric ids. This conversion never fails.
func (m MethodID) Value() codec.Value {
	if m.text {
		return codec.Text(m.str)
	}
	return codec.Uint(m.num)
}

// MethodIDFromValue validates and converts a dynamic value into a
// MethodID. Integers must fit the unsigned 64-bit range; anything other
// than an integer or text fails with ErrInvalidMethodID.
func MethodIDFromValue(v codec.Value) (MethodID, error) {
	switch v.Kind() {
	case codec.KindInteger:
		n, ok := v.Uint()
		if !ok {
			return MethodID{}, ErrInvalidMethodID
		}
		return MethodNum(n), nil
	case codec.KindText:
		s, _ := v.Text()
		return MethodName(s), nil
	default:
		return MethodID{}, ErrInvalidMethodID
	}
}

type idKind uint8

const (
	idNumber idKind = iota
	idString
	idBinary
)

// RequestID correlates a response with the request that produced it. It
// is a number, a text string, or an arbitrary byte sequence. The zero
// RequestID is the number 0.
type RequestID struct {
	kind idKind
	num  uint64
	str  string
	bin  []byte
}

// NumberID returns a numeric request identifier.
func NumberID(n uint64) RequestID { return RequestID{kind: idNumber, num: n} }

// StringID returns a textual request identifier.
func StringID(s string) RequestID { return RequestID{kind: idString, str: s} }

// BinaryID returns a request identifier carrying an arbitrary byte
// sequence.
func BinaryID(b []byte) RequestID { return RequestID{kind: idBinary, bin: b} }

// RandomID returns a fresh binary request identifier backed by a random
// UUID, for callers that do not track their own id sequence.
func RandomID() RequestID {
	id := uuid.New()
	return BinaryID(id[:])
}

// Num returns the numeric identifier, reporting false for other kinds.
func (r RequestID) Num() (uint64, bool) { return r.num, r.kind == idNumber }

// Str returns the textual identifier, reporting false for other kinds.
func (r RequestID) Str() (string, bool) { return r.str, r.kind == idString }

// Bin returns the binary identifier, reporting false for other kinds.
func (r RequestID) Bin() ([]byte, bool) { return r.bin, r.kind == idBinary }

// Equal reports structural equality. Matching a response id back to its
// request is the caller's job; this is the comparison to use for it.
func (r RequestID) Equal(o RequestID) bool {
	if r.kind != o.kind {
		return false
	}
	switch r.kind {
	case idNumber:
		return r.num == o.num
	case idString:
		return r.str == o.str
	default:
		return string(r.bin) == string(o.bin)
	}
}

func (r RequestID) String() string {
	switch r.kind {
	case idNumber:
		return fmt.Sprintf("%d", r.num)
	case idString:
		return r.str
	default:
		return fmt.Sprintf("%x", r.bin)
	}
}

// Value returns the canonical dynamic value form. This conversion never
// fails.
func (r RequestID) Value() codec.Value {
	switch r.kind {
	case idNumber:
		return codec.Uint(r.num)
	case idString:
		return codec.Text(r.str)
	default:
		return codec.Bytes(r.bin)
	}
}

// RequestIDFromValue validates and converts a dynamic value into a
// RequestID. Integers must fit the unsigned 64-bit range; text and byte
// strings map directly; anything else fails with ErrInvalidRequestID.
func RequestIDFromValue(v codec.Value) (RequestID, error) {
	switch v.Kind() {
	case codec.KindInteger:
		n, ok := v.Uint()
		if !ok {
			return RequestID{}, ErrInvalidRequestID
		}
		return NumberID(n), nil
	case codec.KindText:
		s, _ := v.Text()
		return StringID(s), nil
	case codec.KindBytes:
		b, _ := v.Bytes()
		return BinaryID(b), nil
	default:
		return RequestID{}, ErrInvalidRequestID
	}
}
