// Package codec provides the dynamic value type used for RPC payloads and
// its CBOR encoder/decoder.
//
// Value is a self-describing tree: null, bool, integer, float, text, byte
// string, array, map, or tagged value. Map entries are kept as an ordered
// slice rather than a Go map so that key order survives an encode/decode
// round trip. Integers are stored as sign + magnitude, covering the full
// CBOR integer range [-2^64, 2^64-1].
package codec

import "fmt"

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota // zero Value, not encodable
	KindNull
	KindBool
	KindInteger
	KindFloat
	KindText
	KindBytes
	KindArray
	KindMap
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindTag:
		return "tag"
	default:
		return "invalid"
	}
}

// Value is one node of a dynamic value tree. The zero Value has
// KindInvalid and cannot be encoded; build values with the constructor
// functions. Values are plain data: they hold no resources and byte/array
// contents are not copied by the constructors.
type Value struct {
	kind Kind
	// num holds the integer magnitude, the float bits, the tag number,
	// or 0/1 for bool.
	num  uint64
	neg  bool // integer value is -1-num
	str  string
	blob []byte
	list []Value // array elements; tag content at list[0]
	dict []Entry
}

// Entry is one key/value pair of a map value.
type Entry struct {
	Key   Value
	Value Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Int returns an integer value from a signed integer.
func Int(i int64) Value {
	if i < 0 {
		return Value{kind: KindInteger, neg: true, num: uint64(-(i + 1))}
	}
	return Value{kind: KindInteger, num: uint64(i)}
}

// Uint returns an integer value from an unsigned integer.
func Uint(u uint64) Value { return Value{kind: KindInteger, num: u} }

// negInt returns the integer value -1-magnitude. It covers negative
// integers below the int64 range, which can only arrive via decoding.
func negInt(magnitude uint64) Value {
	return Value{kind: KindInteger, neg: true, num: magnitude}
}

// Float returns a floating point value.
func Float(f float64) Value {
	return Value{kind: KindFloat, num: floatBits(f)}
}

// Text returns a text string value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Bytes returns a byte string value.
func Bytes(b []byte) Value { return Value{kind: KindBytes, blob: b} }

// Array returns an array value with the given elements.
func Array(items ...Value) Value { return Value{kind: KindArray, list: items} }

// Map returns a map value with the given entries, in the given order.
func Map(entries ...Entry) Value { return Value{kind: KindMap, dict: entries} }

// Pair builds a map entry with a text key.
func Pair(key string, v Value) Entry { return Entry{Key: Text(key), Value: v} }

// Tagged wraps content in CBOR tag number.
func Tagged(number uint64, content Value) Value {
	return Value{kind: KindTag, num: number, list: []Value{content}}
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload. The second result is false when the
// value is not a bool.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num == 1, true
}

// Uint returns the integer payload as a uint64. It reports false when the
// value is not an integer or is negative.
func (v Value) Uint() (uint64, bool) {
	if v.kind != KindInteger || v.neg {
		return 0, false
	}
	return v.num, true
}

// Int returns the integer payload as an int64. It reports false when the
// value is not an integer or does not fit in an int64.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	if v.neg {
		if v.num > uint64(1)<<63-1 {
			return 0, false
		}
		return -int64(v.num) - 1, true
	}
	if v.num > uint64(1)<<63-1 {
		return 0, false
	}
	return int64(v.num), true
}

// Float returns the floating point payload.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return floatFromBits(v.num), true
}

// Text returns the text payload.
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.str, true
}

// Bytes returns the byte string payload.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.blob, true
}

// Items returns the elements of an array value.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.list, true
}

// Entries returns the ordered entries of a map value.
func (v Value) Entries() ([]Entry, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.dict, true
}

// Tag returns the tag number and content of a tagged value.
func (v Value) Tag() (uint64, Value, bool) {
	if v.kind != KindTag {
		return 0, Value{}, false
	}
	return v.num, v.list[0], true
}

// Equal reports structural equality. Integers compare by sign and
// magnitude, floats by bit pattern, arrays and maps element-wise in
// order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindFloat:
		return v.num == o.num
	case KindInteger:
		return v.num == o.num && v.neg == o.neg
	case KindText:
		return v.str == o.str
	case KindBytes:
		return string(v.blob) == string(o.blob)
	case KindArray:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.dict) != len(o.dict) {
			return false
		}
		for i := range v.dict {
			if !v.dict[i].Key.Equal(o.dict[i].Key) || !v.dict[i].Value.Equal(o.dict[i].Value) {
				return false
			}
		}
		return true
	case KindTag:
		return v.num == o.num && v.list[0].Equal(o.list[0])
	default:
		return true
	}
}

// String renders a short debug form, e.g. `text("hello")` or `array(3)`.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("bool(%v)", v.num == 1)
	case KindInteger:
		if v.neg {
			if i, ok := v.Int(); ok {
				return fmt.Sprintf("integer(%d)", i)
			}
			return fmt.Sprintf("integer(-1-%d)", v.num)
		}
		return fmt.Sprintf("integer(%d)", v.num)
	case KindFloat:
		return fmt.Sprintf("float(%g)", floatFromBits(v.num))
	case KindText:
		return fmt.Sprintf("text(%q)", v.str)
	case KindBytes:
		return fmt.Sprintf("bytes(%x)", v.blob)
	case KindArray:
		return fmt.Sprintf("array(%d)", len(v.list))
	case KindMap:
		return fmt.Sprintf("map(%d)", len(v.dict))
	case KindTag:
		return fmt.Sprintf("tag(%d, %s)", v.num, v.list[0])
	default:
		return "invalid"
	}
}
