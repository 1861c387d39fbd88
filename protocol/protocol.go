// Package protocol implements version 0 of the wire framing.
//
// Every frame is one CBOR data item: the protocol tag applied to a map
// that is either a request or a response. The two shapes carry no
// explicit discriminant; they are told apart by their key sets, which
// must stay disjoint:
//
//	request:  {"fn": method, "args": params?, "id": request-id?}
//	response: {"ok": value | "err": error-value, "id": request-id}
//
// An error value is itself a map {"code": int, "message": text,
// "data": value?}. Optional fields are omitted entirely, never encoded
// as null.
package protocol

import (
	"fmt"
	"io"

	"cbor-rpc/codec"
	"cbor-rpc/message"
)

// MagicTag is the CBOR tag number identifying a v0 RPC frame. Decoding
// requires it to be present and to match exactly.
const MagicTag uint64 = 4036988077

// Map keys of the v0 shapes. Any future addition must keep the request
// and response required-key sets disjoint, or decoding loses its ability
// to tell the two apart.
const (
	keyMethod = "fn"
	keyParams = "args"
	keyID     = "id"
	keyOK     = "ok"
	keyErr    = "err"

	keyCode    = "code"
	keyMessage = "message"
	keyData    = "data"
)

// Message is a decoded or to-be-encoded frame body: exactly one of a
// request or a response. The zero Message is invalid.
type Message struct {
	req  *message.Request
	resp *message.Response
}

// FromRequest wraps a request for framing.
func FromRequest(r *message.Request) Message { return Message{req: r} }

// FromResponse wraps a response for framing.
func FromResponse(r *message.Response) Message { return Message{resp: r} }

// Request projects the frame as a request. Reading a frame that turned
// out to be a response fails with ErrUnexpectedMessage instead of
// coercing.
func (m Message) Request() (*message.Request, error) {
	if m.req == nil {
		return nil, message.ErrUnexpectedMessage
	}
	return m.req, nil
}

// Response projects the frame as a response.
func (m Message) Response() (*message.Response, error) {
	if m.resp == nil {
		return nil, message.ErrUnexpectedMessage
	}
	return m.resp, nil
}

// Value returns the complete tagged frame value. This conversion is
// total for any Message built with FromRequest or FromResponse.
func (m Message) Value() codec.Value {
	var body codec.Value
	if m.req != nil {
		body = requestValue(m.req)
	} else {
		body = responseValue(m.resp)
	}
	return codec.Tagged(MagicTag, body)
}

func requestValue(r *message.Request) codec.Value {
	entries := []codec.Entry{codec.Pair(keyMethod, r.Method.Value())}
	if r.Params != nil {
		entries = append(entries, codec.Pair(keyParams, r.Params.Value()))
	}
	if r.ID != nil {
		entries = append(entries, codec.Pair(keyID, r.ID.Value()))
	}
	return codec.Map(entries...)
}

func responseValue(r *message.Response) codec.Value {
	var entries []codec.Entry
	if e, failed := r.Result.Err(); failed {
		entries = append(entries, codec.Pair(keyErr, errorValue(e)))
	} else {
		v, _ := r.Result.Value()
		entries = append(entries, codec.Pair(keyOK, v))
	}
	return codec.Map(append(entries, codec.Pair(keyID, r.ID.Value()))...)
}

func errorValue(e *message.ErrorValue) codec.Value {
	entries := []codec.Entry{
		codec.Pair(keyCode, codec.Int(e.Code)),
		codec.Pair(keyMessage, codec.Text(e.Message)),
	}
	if e.Data != nil {
		entries = append(entries, codec.Pair(keyData, *e.Data))
	}
	return codec.Map(entries...)
}

// FromValue validates a decoded value as a v0 frame. The tag must be
// present and match MagicTag, and the body must structurally match one
// of the two message shapes; anything else fails with ErrInvalidMessage.
// A map containing "fn" commits to the request shape. Unknown text keys
// are ignored for forward compatibility.
func FromValue(v codec.Value) (Message, error) {
	num, body, ok := v.Tag()
	if !ok || num != MagicTag {
		return Message{}, fmt.Errorf("%w: missing or mismatched protocol tag", message.ErrInvalidMessage)
	}
	entries, ok := body.Entries()
	if !ok {
		return Message{}, fmt.Errorf("%w: frame body is not a map", message.ErrInvalidMessage)
	}

	fields := make(map[string]codec.Value, len(entries))
	for _, e := range entries {
		key, ok := e.Key.Text()
		if !ok {
			return Message{}, fmt.Errorf("%w: non-text key in frame body", message.ErrInvalidMessage)
		}
		if _, dup := fields[key]; !dup {
			fields[key] = e.Value
		}
	}

	if _, isReq := fields[keyMethod]; isReq {
		req, err := requestFromFields(fields)
		if err != nil {
			return Message{}, err
		}
		return FromRequest(req), nil
	}
	resp, err := responseFromFields(fields)
	if err != nil {
		return Message{}, err
	}
	return FromResponse(resp), nil
}

func requestFromFields(fields map[string]codec.Value) (*message.Request, error) {
	method, err := message.MethodIDFromValue(fields[keyMethod])
	if err != nil {
		return nil, err
	}
	req := &message.Request{Method: method}
	if v, ok := fields[keyParams]; ok {
		params, err := message.ParamsFromValue(v)
		if err != nil {
			return nil, err
		}
		req.Params = &params
	}
	if v, ok := fields[keyID]; ok {
		id, err := message.RequestIDFromValue(v)
		if err != nil {
			return nil, err
		}
		req.ID = &id
	}
	return req, nil
}

func responseFromFields(fields map[string]codec.Value) (*message.Response, error) {
	idValue, hasID := fields[keyID]
	okValue, hasOK := fields[keyOK]
	errValue, hasErr := fields[keyErr]
	// Exactly one arm, plus a mandatory id, or it is not a response.
	if !hasID || hasOK == hasErr {
		return nil, fmt.Errorf("%w: unrecognized frame shape", message.ErrInvalidMessage)
	}
	id, err := message.RequestIDFromValue(idValue)
	if err != nil {
		return nil, err
	}
	if hasOK {
		return message.NewResponse(message.Ok(okValue), id), nil
	}
	ev, err := errorFromValue(errValue)
	if err != nil {
		return nil, err
	}
	return message.NewResponse(message.Err(*ev), id), nil
}

func errorFromValue(v codec.Value) (*message.ErrorValue, error) {
	entries, ok := v.Entries()
	if !ok {
		return nil, fmt.Errorf("%w: error value is not a map", message.ErrInvalidMessage)
	}
	var ev message.ErrorValue
	var hasCode, hasMsg bool
	for _, e := range entries {
		key, ok := e.Key.Text()
		if !ok {
			return nil, fmt.Errorf("%w: non-text key in error value", message.ErrInvalidMessage)
		}
		switch key {
		case keyCode:
			code, ok := e.Value.Int()
			if !ok {
				return nil, fmt.Errorf("%w: error code is not an integer", message.ErrInvalidMessage)
			}
			ev.Code = code
			hasCode = true
		case keyMessage:
			msg, ok := e.Value.Text()
			if !ok {
				return nil, fmt.Errorf("%w: error message is not text", message.ErrInvalidMessage)
			}
			ev.Message = msg
			hasMsg = true
		case keyData:
			data := e.Value
			ev.Data = &data
		}
	}
	if !hasCode || !hasMsg {
		return nil, fmt.Errorf("%w: error value missing code or message", message.ErrInvalidMessage)
	}
	return &ev, nil
}

// Write encodes one complete frame into w.
func Write(w io.Writer, m Message) error {
	return codec.Encode(w, m.Value())
}

// Read decodes one complete frame from the head of the stream behind
// dec. The decoder owns the stream's read buffering, so every frame read
// from one channel must go through the same decoder.
func Read(dec *codec.Decoder) (Message, error) {
	v, err := dec.Decode()
	if err != nil {
		return Message{}, err
	}
	return FromValue(v)
}
