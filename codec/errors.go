package codec

import "fmt"

// EncodeError reports a failure while turning a Value into bytes. The
// encoder does not fail on well-formed values, so this is effectively
// reserved for encoding a zero (invalid) Value.
type EncodeError struct {
	Msg string
}

func (e *EncodeError) Error() string {
	return "encode error: " + e.Msg
}

// DecodeError reports malformed input. Pos is the byte offset into the
// frame at which the fault was localized, or -1 when the decoder cannot
// localize it (for example a recursion-limit violation).
type DecodeError struct {
	Msg string
	Pos int
}

func (e *DecodeError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("decode error at pos %d: %s", e.Pos, e.Msg)
	}
	return "decode error: " + e.Msg
}
