package redisserver

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tidwall/resp"
)

// ============================================================
// Decode Tests - Well-formed frames
// ============================================================

func TestDecode_Array(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{
			name:  "PING",
			input: "*1\r\n$4\r\nPING\r\n",
			want:  Array(BulkString("PING")),
		},
		{
			name:  "SET with value",
			input: "*3\r\n$3\r\nSET\r\n$5\r\nmykey\r\n$7\r\nmyvalue\r\n",
			want:  Array(BulkString("SET"), BulkString("mykey"), BulkString("myvalue")),
		},
		{
			name:  "empty array",
			input: "*0\r\n",
			want:  Array(),
		},
		{
			name:  "null array",
			input: "*-1\r\n",
			want:  NullArray(),
		},
		{
			name:  "empty bulk string",
			input: "*2\r\n$4\r\nECHO\r\n$0\r\n\r\n",
			want:  Array(BulkString("ECHO"), BulkString("")),
		},
		{
			name:  "null bulk element",
			input: "*2\r\n$3\r\nGET\r\n$-1\r\n",
			want:  Array(BulkString("GET"), NullBulkString()),
		},
		{
			name:  "payload containing CRLF",
			input: "*2\r\n$4\r\nECHO\r\n$4\r\na\r\nb\r\n",
			want:  Array(BulkString("ECHO"), BulkString("a\r\nb")),
		},
		{
			name:  "nested array",
			input: "*2\r\n$4\r\nPING\r\n*2\r\n$1\r\na\r\n*0\r\n",
			want:  Array(BulkString("PING"), Array(BulkString("a"), Array())),
		},
		{
			name:  "simple string element",
			input: "*2\r\n$4\r\nECHO\r\n+hi\r\n",
			want:  Array(BulkString("ECHO"), SimpleString("hi")),
		},
		{
			name:  "trailing bytes ignored",
			input: "*1\r\n$4\r\nPING\r\ngarbage",
			want:  Array(BulkString("PING")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecode_TopLevelNonArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Value
		consumed int
	}{
		{name: "inline command", input: "PING\r\n", want: SimpleString("PING"), consumed: 6},
		{name: "no terminator", input: "hello", want: SimpleString("hello"), consumed: 5},
		{name: "simple string", input: "+OK\r\nrest", want: SimpleString("OK"), consumed: 5},
		{name: "bulk string", input: "$3\r\nfoo\r\n", want: BulkString("foo"), consumed: 9},
		{name: "null bulk string", input: "$-1\r\n", want: NullBulkString(), consumed: 5},
		{name: "empty input", input: "", want: SimpleString(""), consumed: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := DecodeFrame([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeFrame() = %#v, want %#v", got, tt.want)
			}
			if n != tt.consumed {
				t.Errorf("consumed = %d, want %d", n, tt.consumed)
			}
		})
	}
}

func TestDecodeFrame_Consumed(t *testing.T) {
	first := "*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"
	second := "*1\r\n$4\r\nPING\r\n"
	buf := []byte(first + second)

	v, n, err := DecodeFrame(buf)
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if n != len(first) {
		t.Fatalf("consumed = %d, want %d", n, len(first))
	}
	if !reflect.DeepEqual(v, Array(BulkString("GET"), BulkString("k"))) {
		t.Errorf("first frame = %#v", v)
	}

	v, n, err = DecodeFrame(buf[n:])
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if n != len(second) {
		t.Errorf("consumed = %d, want %d", n, len(second))
	}
	if !reflect.DeepEqual(v, Array(BulkString("PING"))) {
		t.Errorf("second frame = %#v", v)
	}
}

// ============================================================
// Decode Tests - Malformed frames
// ============================================================

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		truncated bool
	}{
		{name: "missing element", input: "*3\r\n$3\r\nSET\r\n$1\r\nA\r\n", truncated: true},
		{name: "short payload", input: "*1\r\n$10\r\nabc\r\n", truncated: true},
		{name: "payload without terminator", input: "*1\r\n$3\r\nabc", truncated: true},
		{name: "array header without CRLF", input: "*1", truncated: true},
		{name: "bulk header without CRLF", input: "*1\r\n$3", truncated: true},
		{name: "count exceeds input", input: "*1000000\r\n$1\r\na\r\n", truncated: true},
		{name: "huge count", input: "*9223372036854775807\r\n", truncated: true},
		{name: "huge bulk length", input: "$9223372036854775807\r\nabc\r\n", truncated: true},
		{name: "bulk overflow", input: "$99999999999999999999\r\n"},
		{name: "non-numeric count", input: "*abc\r\n"},
		{name: "non-numeric length", input: "*1\r\n$x\r\nabc\r\n"},
		{name: "empty count", input: "*\r\n"},
		{name: "plus sign count", input: "*+1\r\n$1\r\na\r\n"},
		{name: "space in count", input: "* 1\r\n$1\r\na\r\n"},
		{name: "negative count", input: "*-2\r\n"},
		{name: "negative zero length", input: "*1\r\n$-0\r\n\r\n"},
		{name: "negative length", input: "*1\r\n$-5\r\n"},
		{name: "bad bulk terminator", input: "*1\r\n$3\r\nabcXY"},
		{name: "unknown element type", input: "*1\r\n:1\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode([]byte(tt.input))
			if err == nil {
				t.Fatalf("expected error, got value %#v", v)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error %v does not wrap ErrMalformed", err)
			}
			if tt.truncated && !errors.Is(err, ErrTruncated) {
				t.Errorf("error %v does not wrap ErrTruncated", err)
			}
		})
	}
}

func TestDecode_NestingLimit(t *testing.T) {
	deep := strings.Repeat("*1\r\n", MaxDepth+1) + "*0\r\n"
	_, err := Decode([]byte(deep))
	if !errors.Is(err, ErrNestingTooDeep) {
		t.Fatalf("expected ErrNestingTooDeep, got %v", err)
	}

	ok := strings.Repeat("*1\r\n", MaxDepth-1) + "*0\r\n"
	if _, err := Decode([]byte(ok)); err != nil {
		t.Fatalf("depth %d should decode: %v", MaxDepth, err)
	}
}

// ============================================================
// Encode Tests
// ============================================================

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "simple string", v: SimpleString("OK"), want: "+OK\r\n"},
		{name: "bulk string", v: BulkString("foo"), want: "$3\r\nfoo\r\n"},
		{name: "empty bulk string", v: BulkString(""), want: "$0\r\n\r\n"},
		{name: "null bulk string", v: NullBulkString(), want: "$-1\r\n"},
		{name: "empty array", v: Array(), want: "*0\r\n"},
		{name: "null array", v: NullArray(), want: "*-1\r\n"},
		{
			name: "nested",
			v:    Array(BulkString("a"), Array(SimpleString("b"))),
			want: "*2\r\n$1\r\na\r\n*1\r\n+b\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Encode(tt.v)); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplies(t *testing.T) {
	if got := SimpleReply("hello"); got != "+hello\r\n" {
		t.Errorf("SimpleReply() = %q", got)
	}
	if got := ErrorReply("boom"); got != "-ERR boom\r\n" {
		t.Errorf("ErrorReply() = %q", got)
	}
}

// ============================================================
// Round-trip Tests
// ============================================================

func TestEncodeCommand_RoundTrip(t *testing.T) {
	cases := [][]string{
		{"PING"},
		{"SET", "key", "value"},
		{"ECHO", ""},
		{"SET", "binary\x00key", "line\r\nbreak"},
		{"GET", strings.Repeat("x", 4096)},
	}

	for _, args := range cases {
		got, err := Decode(EncodeCommand(args...))
		if err != nil {
			t.Fatalf("Decode(EncodeCommand(%q)) error: %v", args, err)
		}
		if len(got.Elems) != len(args) {
			t.Fatalf("elements = %d, want %d", len(got.Elems), len(args))
		}
		for i, want := range args {
			s, ok := got.Elems[i].BulkText()
			if !ok || s != want {
				t.Errorf("elem[%d] = %q (bulk=%v), want %q", i, s, ok, want)
			}
		}
	}
}

func TestDecode_InteropWithTidwallEncoder(t *testing.T) {
	var buf bytes.Buffer
	w := resp.NewWriter(&buf)
	if err := w.WriteMultiBulk("SET", "user:1", "Ada Lovelace"); err != nil {
		t.Fatalf("WriteMultiBulk: %v", err)
	}

	want := EncodeCommand("SET", "user:1", "Ada Lovelace")
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("encoding differs:\n got %q\nwant %q", want, buf.Bytes())
	}

	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	cmd, ok := ParseCommand(got)
	if !ok {
		t.Fatal("ParseCommand rejected tidwall frame")
	}
	if cmd.Kind != CmdSet || !reflect.DeepEqual(cmd.Args, []string{"user:1", "Ada Lovelace"}) {
		t.Errorf("command = %+v", cmd)
	}
}

func TestDecode_ReadableByTidwallReader(t *testing.T) {
	frame := Encode(Array(BulkString("ECHO"), BulkString("hi"), NullBulkString()))

	rd := resp.NewReader(bytes.NewReader(frame))
	v, _, err := rd.ReadValue()
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	arr := v.Array()
	if len(arr) != 3 || arr[0].String() != "ECHO" || arr[1].String() != "hi" || !arr[2].IsNull() {
		t.Errorf("tidwall decoded %v", v)
	}
}
