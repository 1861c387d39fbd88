package message

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbor-rpc/codec"
)

func TestMethodIDFromValue(t *testing.T) {
	m, err := MethodIDFromValue(codec.Text("hello"))
	require.NoError(t, err)
	name, ok := m.Name()
	require.True(t, ok)
	assert.Equal(t, "hello", name)

	m, err = MethodIDFromValue(codec.Uint(math.MaxUint64))
	require.NoError(t, err)
	num, ok := m.Num()
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), num)

	_, err = MethodIDFromValue(codec.Int(-1))
	assert.ErrorIs(t, err, ErrInvalidMethodID)

	_, err = MethodIDFromValue(codec.Bytes([]byte("hello")))
	assert.ErrorIs(t, err, ErrInvalidMethodID)

	_, err = MethodIDFromValue(codec.Array(codec.Text("hello")))
	assert.ErrorIs(t, err, ErrInvalidMethodID)
}

func TestMethodIDValue(t *testing.T) {
	assert.True(t, MethodName("m").Value().Equal(codec.Text("m")))
	assert.True(t, MethodNum(7).Value().Equal(codec.Uint(7)))
	assert.True(t, MethodName("m").Equal(MethodName("m")))
	assert.False(t, MethodName("7").Equal(MethodNum(7)))
}

func TestRequestIDFromValue(t *testing.T) {
	id, err := RequestIDFromValue(codec.Uint(math.MaxUint64))
	require.NoError(t, err)
	num, ok := id.Num()
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), num)

	id, err = RequestIDFromValue(codec.Text("abc"))
	require.NoError(t, err)
	s, ok := id.Str()
	require.True(t, ok)
	assert.Equal(t, "abc", s)

	id, err = RequestIDFromValue(codec.Bytes([]byte{1, 2, 3}))
	require.NoError(t, err)
	b, ok := id.Bin()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, b)

	_, err = RequestIDFromValue(codec.Int(-42))
	assert.ErrorIs(t, err, ErrInvalidRequestID)

	_, err = RequestIDFromValue(codec.Bool(true))
	assert.ErrorIs(t, err, ErrInvalidRequestID)
}

func TestRequestIDEqual(t *testing.T) {
	assert.True(t, NumberID(1).Equal(NumberID(1)))
	assert.False(t, NumberID(1).Equal(StringID("1")))
	assert.True(t, BinaryID([]byte{9}).Equal(BinaryID([]byte{9})))
	assert.False(t, BinaryID([]byte{9}).Equal(BinaryID([]byte{9, 9})))
}

func TestRandomID(t *testing.T) {
	a := RandomID()
	b := RandomID()
	bin, ok := a.Bin()
	require.True(t, ok)
	assert.Len(t, bin, 16)
	assert.False(t, a.Equal(b))
}

func TestParamsFromValue(t *testing.T) {
	p, err := ParamsFromValue(codec.Array(codec.Text("one"), codec.Int(2)))
	require.NoError(t, err)
	values, ok := p.Values()
	require.True(t, ok)
	require.Len(t, values, 2)
	assert.True(t, values[1].Equal(codec.Int(2)))

	p, err = ParamsFromValue(codec.Map(
		codec.Pair("z", codec.Int(1)),
		codec.Pair("a", codec.Int(2)),
	))
	require.NoError(t, err)
	pairs, ok := p.Pairs()
	require.True(t, ok)
	require.Len(t, pairs, 2)
	// Wire order, not sorted order.
	assert.Equal(t, "z", pairs[0].Name)
	assert.Equal(t, "a", pairs[1].Name)
}

func TestParamsFromValueRejectsNonTextKey(t *testing.T) {
	_, err := ParamsFromValue(codec.Map(
		codec.Entry{Key: codec.Int(1), Value: codec.Text("x")},
	))
	assert.ErrorIs(t, err, ErrInvalidKeyType)
}

func TestParamsFromValueRejectsScalar(t *testing.T) {
	_, err := ParamsFromValue(codec.Int(5))
	assert.ErrorIs(t, err, ErrInvalidParamType)

	_, err = ParamsFromValue(codec.Text("nope"))
	assert.ErrorIs(t, err, ErrInvalidParamType)
}

func TestParamsEmptyAndNonempty(t *testing.T) {
	empty := Positional()
	assert.True(t, empty.IsEmpty())
	assert.Nil(t, empty.Nonempty())

	emptyNamed := Named()
	assert.True(t, emptyNamed.IsEmpty())
	assert.Nil(t, emptyNamed.Nonempty())

	full := Positional(codec.Int(1))
	assert.False(t, full.IsEmpty())
	assert.Same(t, &full, full.Nonempty())

	var nilParams *Params
	assert.Nil(t, nilParams.Nonempty())
}

func TestParamsValue(t *testing.T) {
	pos := Positional(codec.Text("a"))
	assert.True(t, pos.Value().Equal(codec.Array(codec.Text("a"))))

	named := Named(NamedParam{Name: "k", Value: codec.Int(1)})
	assert.True(t, named.Value().Equal(codec.Map(codec.Pair("k", codec.Int(1)))))

	assert.True(t, Positional().Value().Equal(codec.Array()))
}

func TestResultArms(t *testing.T) {
	okRes := Ok(codec.Text("yay"))
	v, ok := okRes.Value()
	require.True(t, ok)
	assert.True(t, v.Equal(codec.Text("yay")))
	_, failed := okRes.Err()
	assert.False(t, failed)
	assert.False(t, okRes.IsErr())

	errRes := Err(ErrorValue{Code: 418, Message: "I'm a teapot"})
	assert.True(t, errRes.IsErr())
	ev, failed := errRes.Err()
	require.True(t, failed)
	assert.Equal(t, int64(418), ev.Code)
	_, ok = errRes.Value()
	assert.False(t, ok)

	// The zero Result holds neither arm and reports as such.
	var zero Result
	_, ok = zero.Value()
	assert.False(t, ok)
	assert.False(t, zero.IsErr())
}

func TestRequestEqual(t *testing.T) {
	params := Positional(codec.Int(1))
	id := NumberID(42)

	a := NewRequest(MethodName("m"), &params, &id)
	b := NewRequest(MethodName("m"), &params, &id)
	assert.True(t, a.Equal(b))

	noID := NewRequest(MethodName("m"), &params, nil)
	assert.False(t, a.Equal(noID))

	noParams := NewRequest(MethodName("m"), nil, &id)
	assert.False(t, a.Equal(noParams))
	assert.True(t, noParams.Equal(NewRequest(MethodName("m"), nil, &id)))
}

func TestResponseEqual(t *testing.T) {
	a := NewResponse(Ok(codec.Text("x")), NumberID(1))
	b := NewResponse(Ok(codec.Text("x")), NumberID(1))
	assert.True(t, a.Equal(b))

	data := codec.Text("detail")
	withData := NewResponse(Err(ErrorValue{Code: 1, Message: "m", Data: &data}), NumberID(1))
	withoutData := NewResponse(Err(ErrorValue{Code: 1, Message: "m"}), NumberID(1))
	assert.False(t, withData.Equal(withoutData))
	assert.False(t, a.Equal(withData))
}
