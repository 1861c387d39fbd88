package codec

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	data, err := Marshal(v)
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.True(t, v.Equal(got), "round trip mismatch: sent %s, got %s", v, got)
	return got
}

func TestRoundTripScalars(t *testing.T) {
	for _, v := range []Value{
		Null(),
		Bool(true),
		Bool(false),
		Int(0),
		Int(-1),
		Int(23),
		Int(24),
		Int(-12345678),
		Uint(math.MaxUint64),
		Float(0),
		Float(2.5),
		Float(1.1),
		Float(math.Inf(1)),
		Text(""),
		Text("hello"),
		Bytes([]byte{0x01, 0x02, 0xff}),
	} {
		roundTrip(t, v)
	}
}

func TestRoundTripContainers(t *testing.T) {
	roundTrip(t, Array())
	roundTrip(t, Array(Int(1), Text("two"), Array(Bool(true))))
	roundTrip(t, Map())
	roundTrip(t, Map(
		Pair("b", Int(1)),
		Pair("a", Map(Pair("nested", Null()))),
	))
	roundTrip(t, Tagged(42, Array(Text("tagged"))))
	roundTrip(t, Tagged(4036988077, Map(Pair("fn", Text("x")))))
}

func TestMapOrderPreserved(t *testing.T) {
	v := Map(
		Pair("zeta", Int(1)),
		Pair("alpha", Int(2)),
		Pair("mu", Int(3)),
	)
	got := roundTrip(t, v)
	entries, ok := got.Entries()
	require.True(t, ok)
	require.Len(t, entries, 3)
	names := make([]string, 0, 3)
	for _, e := range entries {
		name, ok := e.Key.Text()
		require.True(t, ok)
		names = append(names, name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mu"}, names)
}

func TestIntegerEncodingIsMinimal(t *testing.T) {
	for _, tc := range []struct {
		v    Value
		want []byte
	}{
		{Int(0), []byte{0x00}},
		{Int(23), []byte{0x17}},
		{Int(24), []byte{0x18, 0x18}},
		{Int(-1), []byte{0x20}},
		{Uint(42), []byte{0x18, 0x2a}},
		{Uint(math.MaxUint64), []byte{0x1b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	} {
		data, err := Marshal(tc.v)
		require.NoError(t, err)
		assert.Equal(t, tc.want, data, "encoding of %s", tc.v)
	}
}

func TestNegativeBelowInt64(t *testing.T) {
	// -2^64, the most negative CBOR integer. It has no int64 form but
	// must still round trip byte-exactly.
	data := []byte{0x3b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	v, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, KindInteger, v.Kind())
	_, ok := v.Int()
	assert.False(t, ok)
	_, ok = v.Uint()
	assert.False(t, ok)

	again, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestIntAccessors(t *testing.T) {
	u, ok := Int(5).Uint()
	require.True(t, ok)
	assert.Equal(t, uint64(5), u)

	i, ok := Int(-5).Int()
	require.True(t, ok)
	assert.Equal(t, int64(-5), i)

	_, ok = Int(-5).Uint()
	assert.False(t, ok)

	_, ok = Uint(math.MaxUint64).Int()
	assert.False(t, ok)

	assert.True(t, Int(5).Equal(Uint(5)))
	assert.False(t, Int(-5).Equal(Uint(5)))
}

func TestEqualAcrossKinds(t *testing.T) {
	assert.False(t, Text("a").Equal(Bytes([]byte("a"))))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.False(t, Null().Equal(Bool(false)))
	assert.True(t, Null().Equal(Null()))
}

func TestEncodeZeroValueFails(t *testing.T) {
	var zero Value
	_, err := Marshal(zero)
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
}

func TestDecodeEmptyInput(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeTruncatedInput(t *testing.T) {
	// Head promises a 2-byte argument but only one byte follows.
	_, err := Decode(bytes.NewReader([]byte{0x19, 0x01}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeIndefiniteLengthRejected(t *testing.T) {
	// 0x9f: indefinite-length array.
	_, err := Decode(bytes.NewReader([]byte{0x9f, 0x01, 0xff}))
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestDecodeInvalidUTF8Localized(t *testing.T) {
	// Map with a 2-byte text key that is not valid UTF-8. The fault sits
	// one byte into the frame, after the map head.
	data := []byte{0xa1, 0x62, 0xff, 0xfe, 0x01}
	_, err := Unmarshal(data)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.GreaterOrEqual(t, decErr.Pos, 0)
}

func TestDecoderReadsSequentialFrames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Text("first")))
	require.NoError(t, Encode(&buf, Text("second")))

	dec := NewDecoder(&buf)
	v1, err := dec.Decode()
	require.NoError(t, err)
	v2, err := dec.Decode()
	require.NoError(t, err)
	assert.True(t, Text("first").Equal(v1))
	assert.True(t, Text("second").Equal(v2))

	_, err = dec.Decode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeErrorMessage(t *testing.T) {
	withPos := &DecodeError{Msg: "boom", Pos: 7}
	assert.Equal(t, "decode error at pos 7: boom", withPos.Error())
	noPos := &DecodeError{Msg: "boom", Pos: -1}
	assert.Equal(t, "decode error: boom", noPos.Error())
}
