package redisserver

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// MaxDepth limits how deeply arrays may nest inside a single frame.
const MaxDepth = 32

// minElementLen is the size of the shortest encodable element ("+\r\n").
const minElementLen = 3

var crlf = []byte("\r\n")

var (
	// ErrMalformed is the root of every decode failure.
	ErrMalformed = errors.New("malformed input")

	// ErrTruncated means the buffer ended before the frame was complete.
	ErrTruncated = fmt.Errorf("%w: truncated input", ErrMalformed)

	// ErrNestingTooDeep means arrays nest beyond MaxDepth.
	ErrNestingTooDeep = fmt.Errorf("%w: nesting too deep", ErrMalformed)
)

// Fixed replies.
const (
	PongReply     = "+PONG\r\n"
	OKReply       = "+OK\r\n"
	NullBulkReply = "$-1\r\n"
)

// Decode decodes the frame at the start of b. Bytes following the first
// complete frame are ignored.
func Decode(b []byte) (Value, error) {
	v, _, err := DecodeFrame(b)
	return v, err
}

// DecodeFrame decodes the frame at the start of b and reports how many
// bytes it occupied.
//
// Input that does not open with an array or bulk string header is not an
// error: its first line (or the whole buffer when no CRLF is present) is
// returned as a simple string, which the dispatcher answers with PONG.
func DecodeFrame(b []byte) (Value, int, error) {
	if len(b) == 0 {
		return SimpleString(""), 0, nil
	}

	switch Type(b[0]) {
	case TypeArray, TypeBulkString:
		return decodeValue(b, 0, 0)
	default:
		end := len(b)
		next := len(b)
		if idx := bytes.Index(b, crlf); idx >= 0 {
			end = idx
			next = idx + len(crlf)
		}
		line := b[:end]
		if Type(b[0]) == TypeSimpleString {
			line = line[1:]
		}
		return SimpleString(string(line)), next, nil
	}
}

// decodeValue decodes one element starting at pos and returns the
// position just past it.
func decodeValue(b []byte, pos, depth int) (Value, int, error) {
	if pos >= len(b) {
		return Value{}, pos, ErrTruncated
	}

	switch Type(b[pos]) {
	case TypeArray:
		return decodeArray(b, pos, depth)
	case TypeBulkString:
		return decodeBulkString(b, pos)
	case TypeSimpleString:
		line, next, err := readLine(b, pos+1)
		if err != nil {
			return Value{}, pos, err
		}
		return SimpleString(string(line)), next, nil
	default:
		return Value{}, pos, fmt.Errorf("%w: unexpected type byte %q", ErrMalformed, b[pos])
	}
}

func decodeArray(b []byte, pos, depth int) (Value, int, error) {
	if depth >= MaxDepth {
		return Value{}, pos, ErrNestingTooDeep
	}

	line, next, err := readLine(b, pos+1)
	if err != nil {
		return Value{}, pos, err
	}
	n, err := parseLength(line, "array")
	if err != nil {
		return Value{}, pos, err
	}
	if n == -1 {
		return NullArray(), next, nil
	}
	// Every element takes at least minElementLen bytes, so a count the
	// remaining input cannot hold is rejected before allocating.
	if n > (len(b)-next)/minElementLen {
		return Value{}, pos, ErrTruncated
	}

	elems := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		var elem Value
		elem, next, err = decodeValue(b, next, depth+1)
		if err != nil {
			return Value{}, pos, err
		}
		elems = append(elems, elem)
	}
	return Array(elems...), next, nil
}

func decodeBulkString(b []byte, pos int) (Value, int, error) {
	line, next, err := readLine(b, pos+1)
	if err != nil {
		return Value{}, pos, err
	}
	n, err := parseLength(line, "bulk")
	if err != nil {
		return Value{}, pos, err
	}
	if n == -1 {
		return NullBulkString(), next, nil
	}

	remaining := len(b) - next
	if remaining < len(crlf) || n > remaining-len(crlf) {
		return Value{}, pos, ErrTruncated
	}
	end := next + n
	if !bytes.Equal(b[end:end+len(crlf)], crlf) {
		return Value{}, pos, fmt.Errorf("%w: invalid bulk terminator", ErrMalformed)
	}
	return BulkString(string(b[next:end])), end + len(crlf), nil
}

// readLine returns the bytes from pos up to the next CRLF and the
// position after it.
func readLine(b []byte, pos int) ([]byte, int, error) {
	if pos > len(b) {
		return nil, pos, ErrTruncated
	}
	idx := bytes.Index(b[pos:], crlf)
	if idx < 0 {
		return nil, pos, ErrTruncated
	}
	return b[pos : pos+idx], pos + idx + len(crlf), nil
}

// parseLength parses a header count: a non-negative decimal integer or
// exactly -1.
func parseLength(line []byte, what string) (int, error) {
	if len(line) == 0 {
		return 0, fmt.Errorf("%w: missing %s length", ErrMalformed, what)
	}
	if line[0] == '-' {
		if string(line) == "-1" {
			return -1, nil
		}
		return 0, fmt.Errorf("%w: invalid %s length %q", ErrMalformed, what, line)
	}
	for _, c := range line {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: invalid %s length %q", ErrMalformed, what, line)
		}
	}
	n, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s length %q", ErrMalformed, what, line)
	}
	return n, nil
}

// AppendValue appends the RESP encoding of v to dst.
func AppendValue(dst []byte, v Value) []byte {
	switch v.Type {
	case TypeSimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.Str...)
		return append(dst, crlf...)
	case TypeBulkString:
		if v.Null {
			return append(dst, NullBulkReply...)
		}
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Str)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.Str...)
		return append(dst, crlf...)
	case TypeArray:
		if v.Null {
			return append(dst, "*-1\r\n"...)
		}
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Elems)), 10)
		dst = append(dst, crlf...)
		for _, e := range v.Elems {
			dst = AppendValue(dst, e)
		}
		return dst
	default:
		return dst
	}
}

// Encode returns the RESP encoding of v.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// EncodeCommand encodes args as an array of bulk strings, the form
// clients use to send requests.
func EncodeCommand(args ...string) []byte {
	elems := make([]Value, len(args))
	for i, a := range args {
		elems[i] = BulkString(a)
	}
	return Encode(Array(elems...))
}

// SimpleReply encodes s as a simple string reply.
func SimpleReply(s string) string {
	return "+" + s + "\r\n"
}

// ErrorReply encodes msg as an error reply with the ERR prefix.
func ErrorReply(msg string) string {
	return "-ERR " + msg + "\r\n"
}
