// Package message defines the typed RPC message model: requests,
// responses, method and request identifiers, parameters, and error
// values, together with their conversions to and from the dynamic value
// tree.
//
// Inbound conversions (value to typed) validate and can fail with the
// protocol errors defined in this package; outbound conversions are
// total. The wire shape of whole messages lives in the protocol package,
// not here.
package message

import "cbor-rpc/codec"

// Request is a single method call. Params and ID are optional: a nil
// Params means the method takes no arguments, a nil ID marks a
// fire-and-forget request that expects no response.
type Request struct {
	Method MethodID
	Params *Params
	ID     *RequestID
}

// NewRequest assembles a request. params and id may be nil.
func NewRequest(method MethodID, params *Params, id *RequestID) *Request {
	return &Request{Method: method, Params: params, ID: id}
}

// Equal reports structural equality, treating optional fields as equal
// only when both are absent or both present and equal.
func (r *Request) Equal(o *Request) bool {
	if r == nil || o == nil {
		return r == o
	}
	if !r.Method.Equal(o.Method) {
		return false
	}
	if (r.Params == nil) != (o.Params == nil) {
		return false
	}
	if r.Params != nil && !r.Params.Equal(*o.Params) {
		return false
	}
	if (r.ID == nil) != (o.ID == nil) {
		return false
	}
	return r.ID == nil || r.ID.Equal(*o.ID)
}

// ErrorValue describes a failed call: a numeric code, a human-readable
// message, and optional application-defined detail. A nil Data is left
// off the wire entirely rather than encoded as null.
type ErrorValue struct {
	Code    int64
	Message string
	Data    *codec.Value
}

// Error implements the error interface so an ErrorValue can travel as a
// plain Go error on the server side.
func (e *ErrorValue) Error() string { return e.Message }

// Equal reports structural equality.
func (e *ErrorValue) Equal(o *ErrorValue) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Code != o.Code || e.Message != o.Message {
		return false
	}
	if (e.Data == nil) != (o.Data == nil) {
		return false
	}
	return e.Data == nil || e.Data.Equal(*o.Data)
}

// Result is the two-armed outcome of a call: either a success value or
// an ErrorValue, never both and never neither. Build one with Ok or Err;
// the zero Result is not a valid outcome.
type Result struct {
	value codec.Value
	errv  *ErrorValue
	ok    bool
}

// Ok returns a successful result carrying v.
func Ok(v codec.Value) Result { return Result{value: v, ok: true} }

// Err returns a failed result carrying e.
func Err(e ErrorValue) Result { return Result{errv: &e} }

// Value returns the success value, reporting false for failed results.
func (r Result) Value() (codec.Value, bool) { return r.value, r.ok }

// Err returns the error value, reporting false for successful results.
func (r Result) Err() (*ErrorValue, bool) { return r.errv, r.errv != nil }

// IsErr reports whether the result is the failure arm.
func (r Result) IsErr() bool { return r.errv != nil }

// Equal reports structural equality of arm and payload.
func (r Result) Equal(o Result) bool {
	if r.ok != o.ok {
		return false
	}
	if r.ok {
		return r.value.Equal(o.value)
	}
	return r.errv.Equal(o.errv)
}

// Response answers a request. ID is mandatory and must echo the
// originating request's id verbatim; matching the two up is the
// caller's responsibility.
type Response struct {
	Result Result
	ID     RequestID
}

// NewResponse assembles a response from an outcome and the id of the
// request being answered.
func NewResponse(result Result, id RequestID) *Response {
	return &Response{Result: result, ID: id}
}

// Equal reports structural equality.
func (r *Response) Equal(o *Response) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Result.Equal(o.Result) && r.ID.Equal(o.ID)
}
