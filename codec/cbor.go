package codec

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// CBOR major types, per RFC 8949 §3.
const (
	majorUint   byte = 0
	majorNegInt byte = 1
	majorBytes  byte = 2
	majorText   byte = 3
	majorArray  byte = 4
	majorMap    byte = 5
	majorTag    byte = 6
)

// encMode handles floating point leaves. Options follow the canonical
// encoding configuration used for CBOR payloads elsewhere: shortest float
// form, no indefinite lengths.
var encMode, _ = cbor.EncOptions{
	Sort:          cbor.SortCanonical,
	ShortestFloat: cbor.ShortestFloat16,
	NaNConvert:    cbor.NaNConvert7e00,
	InfConvert:    cbor.InfConvertFloat16,
	IndefLength:   cbor.IndefLengthForbidden,
}.EncMode()

var decMode, _ = cbor.DecOptions{
	IndefLength: cbor.IndefLengthForbidden,
}.DecMode()

func floatBits(f float64) uint64     { return math.Float64bits(f) }
func floatFromBits(n uint64) float64 { return math.Float64frombits(n) }

// Encode writes v to w as a single complete CBOR data item. The whole
// item is written with one Write call, so a stream never sees a partial
// frame. Write errors from w pass through unchanged; an invalid Value
// yields *EncodeError.
func Encode(w io.Writer, v Value) error {
	buf, err := appendValue(nil, v)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// Marshal encodes v into a fresh byte slice.
func Marshal(v Value) ([]byte, error) {
	return appendValue(nil, v)
}

func appendValue(buf []byte, v Value) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(buf, 0xf6), nil
	case KindBool:
		if v.num == 1 {
			return append(buf, 0xf5), nil
		}
		return append(buf, 0xf4), nil
	case KindInteger:
		if v.neg {
			return appendHead(buf, majorNegInt, v.num), nil
		}
		return appendHead(buf, majorUint, v.num), nil
	case KindFloat:
		// The library picks the shortest lossless float form.
		b, err := encMode.Marshal(floatFromBits(v.num))
		if err != nil {
			return nil, &EncodeError{Msg: err.Error()}
		}
		return append(buf, b...), nil
	case KindText:
		buf = appendHead(buf, majorText, uint64(len(v.str)))
		return append(buf, v.str...), nil
	case KindBytes:
		buf = appendHead(buf, majorBytes, uint64(len(v.blob)))
		return append(buf, v.blob...), nil
	case KindArray:
		buf = appendHead(buf, majorArray, uint64(len(v.list)))
		var err error
		for _, item := range v.list {
			if buf, err = appendValue(buf, item); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case KindMap:
		// Entries are written in their stored order; this is what keeps
		// named params byte-stable across a round trip.
		buf = appendHead(buf, majorMap, uint64(len(v.dict)))
		var err error
		for _, e := range v.dict {
			if buf, err = appendValue(buf, e.Key); err != nil {
				return nil, err
			}
			if buf, err = appendValue(buf, e.Value); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case KindTag:
		buf = appendHead(buf, majorTag, v.num)
		return appendValue(buf, v.list[0])
	default:
		return nil, &EncodeError{Msg: "cannot encode zero Value"}
	}
}

// appendHead writes the shortest head for the given major type and
// argument, per RFC 8949 §4.2.1.
func appendHead(buf []byte, major byte, n uint64) []byte {
	mt := major << 5
	switch {
	case n < 24:
		return append(buf, mt|byte(n))
	case n <= math.MaxUint8:
		return append(buf, mt|24, byte(n))
	case n <= math.MaxUint16:
		return append(buf, mt|25, byte(n>>8), byte(n))
	case n <= math.MaxUint32:
		return append(buf, mt|26, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	default:
		return append(buf, mt|27,
			byte(n>>56), byte(n>>48), byte(n>>40), byte(n>>32),
			byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
}

// Decoder reads successive CBOR data items from a stream. The underlying
// library decoder may buffer ahead of the current item, so all reads from
// one channel must go through the same Decoder.
type Decoder struct {
	dec *cbor.Decoder
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: decMode.NewDecoder(r)}
}

// Decode reads exactly one data item from the head of the stream.
// io.EOF is returned unchanged when the stream ends cleanly before the
// item starts, io.ErrUnexpectedEOF when it ends mid-item; other I/O
// errors pass through unchanged. Malformed input yields *DecodeError.
func (d *Decoder) Decode() (Value, error) {
	var raw cbor.RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		return Value{}, convertLibErr(err)
	}
	return fromRaw(raw, 0)
}

// Decode reads a single data item from r. For repeated reads from the
// same stream use a Decoder instead, which owns the stream buffering.
func Decode(r io.Reader) (Value, error) {
	return NewDecoder(r).Decode()
}

// Unmarshal decodes a single data item occupying the whole of data.
func Unmarshal(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

// convertLibErr sorts library decode failures into the error taxonomy:
// parse failures become *DecodeError (without an offset, since the
// library does not localize them), everything else is treated as an I/O
// error and passed through.
func convertLibErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	var syn *cbor.SyntaxError
	var sem *cbor.SemanticError
	var typ *cbor.UnmarshalTypeError
	if errors.As(err, &syn) || errors.As(err, &sem) || errors.As(err, &typ) {
		return &DecodeError{Msg: err.Error(), Pos: -1}
	}
	// The library prefixes all of its own failures; anything else came
	// from the channel and passes through as an I/O error.
	if strings.HasPrefix(err.Error(), "cbor:") || strings.HasPrefix(err.Error(), "cbor ") {
		return &DecodeError{Msg: err.Error(), Pos: -1}
	}
	return err
}

// fromRaw converts one well-formed encoded item into a Value. base is
// the item's byte offset within the frame, used to localize faults.
func fromRaw(raw []byte, base int) (Value, error) {
	if len(raw) == 0 {
		return Value{}, &DecodeError{Msg: "empty data item", Pos: base}
	}
	switch raw[0] >> 5 {
	case majorUint:
		var u uint64
		if err := decMode.Unmarshal(raw, &u); err != nil {
			return Value{}, &DecodeError{Msg: err.Error(), Pos: base}
		}
		return Uint(u), nil
	case majorNegInt:
		var i int64
		if err := decMode.Unmarshal(raw, &i); err == nil {
			return Int(i), nil
		}
		return negIntFromRaw(raw, base)
	case majorBytes:
		var b []byte
		if err := decMode.Unmarshal(raw, &b); err != nil {
			return Value{}, &DecodeError{Msg: err.Error(), Pos: base}
		}
		return Bytes(b), nil
	case majorText:
		var s string
		if err := decMode.Unmarshal(raw, &s); err != nil {
			return Value{}, &DecodeError{Msg: err.Error(), Pos: base}
		}
		return Text(s), nil
	case majorArray:
		return arrayFromRaw(raw, base)
	case majorMap:
		return mapFromRaw(raw, base)
	case majorTag:
		var rt cbor.RawTag
		if err := decMode.Unmarshal(raw, &rt); err != nil {
			return Value{}, &DecodeError{Msg: err.Error(), Pos: base}
		}
		content, err := fromRaw(rt.Content, base+len(raw)-len(rt.Content))
		if err != nil {
			return Value{}, err
		}
		return Tagged(rt.Number, content), nil
	default: // major type 7: simple values and floats
		return simpleFromRaw(raw, base)
	}
}

// negIntFromRaw handles negative integers below the int64 range, which
// the library surfaces through big.Int.
func negIntFromRaw(raw []byte, base int) (Value, error) {
	var n big.Int
	if err := decMode.Unmarshal(raw, &n); err != nil {
		return Value{}, &DecodeError{Msg: err.Error(), Pos: base}
	}
	// The encoded value is -1-m; recover the magnitude m.
	var m big.Int
	m.Neg(&n)
	m.Sub(&m, big.NewInt(1))
	return negInt(m.Uint64()), nil
}

func arrayFromRaw(raw []byte, base int) (Value, error) {
	var elems []cbor.RawMessage
	if err := decMode.Unmarshal(raw, &elems); err != nil {
		return Value{}, &DecodeError{Msg: err.Error(), Pos: base}
	}
	if len(elems) == 0 {
		return Array(), nil
	}
	body := 0
	for _, e := range elems {
		body += len(e)
	}
	off := base + len(raw) - body
	items := make([]Value, 0, len(elems))
	for _, e := range elems {
		item, err := fromRaw(e, off)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
		off += len(e)
	}
	return Array(items...), nil
}

// mapFromRaw walks map entries in wire order. The library decodes maps
// only into unordered Go maps, so entries are split into raw items here
// and each item is handed back to the library.
func mapFromRaw(raw []byte, base int) (Value, error) {
	count, headLen, err := readHead(raw, base)
	if err != nil {
		return Value{}, err
	}
	if count == 0 {
		return Map(), nil
	}
	dec := decMode.NewDecoder(bytes.NewReader(raw[headLen:]))
	off := base + headLen
	entries := make([]Entry, 0, count)
	for i := uint64(0); i < count; i++ {
		var kraw, vraw cbor.RawMessage
		if err := dec.Decode(&kraw); err != nil {
			return Value{}, &DecodeError{Msg: err.Error(), Pos: off}
		}
		key, err := fromRaw(kraw, off)
		if err != nil {
			return Value{}, err
		}
		off += len(kraw)
		if err := dec.Decode(&vraw); err != nil {
			return Value{}, &DecodeError{Msg: err.Error(), Pos: off}
		}
		val, err := fromRaw(vraw, off)
		if err != nil {
			return Value{}, err
		}
		off += len(vraw)
		entries = append(entries, Entry{Key: key, Value: val})
	}
	return Map(entries...), nil
}

func simpleFromRaw(raw []byte, base int) (Value, error) {
	var x any
	if err := decMode.Unmarshal(raw, &x); err != nil {
		return Value{}, &DecodeError{Msg: err.Error(), Pos: base}
	}
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Float(t), nil
	case float32:
		return Float(float64(t)), nil
	default:
		return Value{}, &DecodeError{Msg: "unsupported simple value", Pos: base}
	}
}

// readHead parses the head of a well-formed definite-length item and
// returns its argument (the entry count for maps) and the head length.
func readHead(raw []byte, base int) (uint64, int, error) {
	info := raw[0] & 0x1f
	switch {
	case info < 24:
		return uint64(info), 1, nil
	case info == 24:
		return uint64(raw[1]), 2, nil
	case info == 25:
		return uint64(raw[1])<<8 | uint64(raw[2]), 3, nil
	case info == 26:
		return uint64(raw[1])<<24 | uint64(raw[2])<<16 | uint64(raw[3])<<8 | uint64(raw[4]), 5, nil
	case info == 27:
		var n uint64
		for i := 1; i <= 8; i++ {
			n = n<<8 | uint64(raw[i])
		}
		return n, 9, nil
	default:
		return 0, 0, &DecodeError{Msg: "indefinite length item", Pos: base}
	}
}
