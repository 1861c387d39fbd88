// Package transport moves whole frames across byte-oriented channels.
//
// Two channel shapes are supported: Transport wraps any synchronous
// io.ReadWriter (a TCP or unix socket, a pipe, a bufio pair), and
// BufTransport wraps a growable in-memory buffer, useful for tests and
// for transports that preserve frame boundaries themselves (datagram
// sockets, message queues). Every call sends or receives exactly one
// complete frame; partial frames are never produced or consumed.
//
// A wrapper is meant to be owned and driven by one logical caller at a
// time. Concurrent use of a single wrapper is not synchronized here;
// serialize it externally, the way the multiplexing layers above usually
// do with a per-connection write lock.
package transport

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"cbor-rpc/codec"
	"cbor-rpc/message"
	"cbor-rpc/protocol"
)

// ValueTransport sends and receives bare dynamic values with no protocol
// tag. It is an escape hatch for diagnostics and tests.
type ValueTransport interface {
	SendValue(v codec.Value) error
	ReadValue() (codec.Value, error)
}

// ClientTransport is the client-role capability: send requests, read
// responses.
type ClientTransport interface {
	SendRequest(req *message.Request) error
	ReadResponse() (*message.Response, error)
}

// ServerTransport is the server-role capability: read requests, send
// responses.
type ServerTransport interface {
	ReadRequest() (*message.Request, error)
	SendResponse(resp *message.Response) error
}

// Option configures a transport wrapper.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger attaches a structured logger; frame traffic is reported at
// debug level. Without it the wrapper stays silent.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// flusher matches buffered writers such as bufio.Writer; frames are
// flushed into the channel as soon as they are written.
type flusher interface{ Flush() error }

// Transport frames messages over a stream channel. Reads consume exactly
// one frame from the head of the stream.
type Transport struct {
	channel io.ReadWriter
	dec     *codec.Decoder
	log     *zap.Logger
}

// New wraps a stream channel.
func New(channel io.ReadWriter, opts ...Option) *Transport {
	o := buildOptions(opts)
	return &Transport{
		channel: channel,
		dec:     codec.NewDecoder(channel),
		log:     o.log,
	}
}

// Channel returns the underlying stream.
func (t *Transport) Channel() io.ReadWriter { return t.channel }

func (t *Transport) SendValue(v codec.Value) error {
	return sendValue(t.channel, t.log, v)
}

func (t *Transport) ReadValue() (codec.Value, error) {
	return readValue(t.dec, t.log)
}

func (t *Transport) SendRequest(req *message.Request) error {
	return sendRequest(t.channel, t.log, req)
}

func (t *Transport) ReadResponse() (*message.Response, error) {
	return readResponse(t.dec, t.log)
}

func (t *Transport) ReadRequest() (*message.Request, error) {
	return readRequest(t.dec, t.log)
}

func (t *Transport) SendResponse(resp *message.Response) error {
	return sendResponse(t.channel, t.log, resp)
}

// Buffer is a growable byte buffer that frames can be appended to and
// consumed from. *bytes.Buffer satisfies it.
type Buffer interface {
	io.Reader
	io.Writer
	Len() int
}

// BufTransport frames messages over an in-memory buffer. Writes append
// one frame, reads consume one frame from the front.
type BufTransport struct {
	buffer Buffer
	dec    *codec.Decoder
	log    *zap.Logger
}

// NewBuf wraps a buffer channel.
func NewBuf(buffer Buffer, opts ...Option) *BufTransport {
	o := buildOptions(opts)
	return &BufTransport{
		buffer: buffer,
		dec:    codec.NewDecoder(buffer),
		log:    o.log,
	}
}

// Buffer returns the underlying buffer.
func (t *BufTransport) Buffer() Buffer { return t.buffer }

func (t *BufTransport) SendValue(v codec.Value) error {
	return sendValue(t.buffer, t.log, v)
}

func (t *BufTransport) ReadValue() (codec.Value, error) {
	return readValue(t.dec, t.log)
}

func (t *BufTransport) SendRequest(req *message.Request) error {
	return sendRequest(t.buffer, t.log, req)
}

func (t *BufTransport) ReadResponse() (*message.Response, error) {
	return readResponse(t.dec, t.log)
}

func (t *BufTransport) ReadRequest() (*message.Request, error) {
	return readRequest(t.dec, t.log)
}

func (t *BufTransport) SendResponse(resp *message.Response) error {
	return sendResponse(t.buffer, t.log, resp)
}

var (
	_ ValueTransport  = (*Transport)(nil)
	_ ClientTransport = (*Transport)(nil)
	_ ServerTransport = (*Transport)(nil)
	_ ValueTransport  = (*BufTransport)(nil)
	_ ClientTransport = (*BufTransport)(nil)
	_ ServerTransport = (*BufTransport)(nil)
)

func flush(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func sendValue(w io.Writer, log *zap.Logger, v codec.Value) error {
	if err := codec.Encode(w, v); err != nil {
		return fmt.Errorf("send value: %w", err)
	}
	log.Debug("sent raw value", zap.Stringer("kind", v.Kind()))
	return flush(w)
}

func readValue(dec *codec.Decoder, log *zap.Logger) (codec.Value, error) {
	v, err := dec.Decode()
	if err != nil {
		return codec.Value{}, fmt.Errorf("read value: %w", err)
	}
	log.Debug("read raw value", zap.Stringer("kind", v.Kind()))
	return v, nil
}

func sendRequest(w io.Writer, log *zap.Logger, req *message.Request) error {
	if err := protocol.Write(w, protocol.FromRequest(req)); err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	log.Debug("sent request", zap.Stringer("method", req.Method))
	return flush(w)
}

func readResponse(dec *codec.Decoder, log *zap.Logger) (*message.Response, error) {
	m, err := protocol.Read(dec)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	resp, err := m.Response()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	log.Debug("read response", zap.Stringer("id", resp.ID), zap.Bool("err", resp.Result.IsErr()))
	return resp, nil
}

func readRequest(dec *codec.Decoder, log *zap.Logger) (*message.Request, error) {
	m, err := protocol.Read(dec)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	req, err := m.Request()
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	log.Debug("read request", zap.Stringer("method", req.Method))
	return req, nil
}

func sendResponse(w io.Writer, log *zap.Logger, resp *message.Response) error {
	if err := protocol.Write(w, protocol.FromResponse(resp)); err != nil {
		return fmt.Errorf("send response: %w", err)
	}
	log.Debug("sent response", zap.Stringer("id", resp.ID))
	return flush(w)
}
