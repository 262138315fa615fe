package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tidwall/resp"

	"github.com/yndnr/respkv/internal/server/redisserver"
)

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 5 * time.Second

// ErrUnexpectedReply is returned when the server sends a reply the client
// cannot parse.
var ErrUnexpectedReply = errors.New("unexpected reply")

// ServerError is an error reply ("-...") sent by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Reply is a parsed server reply.
type Reply struct {
	Text string
	Null bool
}

// String renders the reply the way the CLI prints it.
func (r Reply) String() string {
	if r.Null {
		return "(nil)"
	}
	return r.Text
}

// Client is a RESP client bound to a single server address.
type Client struct {
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
	r    *resp.Reader
}

// NewClient creates a client. The connection is opened lazily.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Connect dials the server if not already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.addr, err)
	}
	c.conn = conn
	c.r = resp.NewReader(conn)
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.r = nil
	return err
}

// Do sends one command and reads its reply. An error reply is returned
// as *ServerError. Any transport error drops the connection.
func (c *Client) Do(ctx context.Context, args ...string) (Reply, error) {
	if len(args) == 0 {
		return Reply{}, errors.New("empty command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return Reply{}, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.dropLocked()
		return Reply{}, err
	}

	if _, err := c.conn.Write(redisserver.EncodeCommand(args...)); err != nil {
		c.dropLocked()
		return Reply{}, fmt.Errorf("write: %w", err)
	}

	v, _, err := c.r.ReadValue()
	if err != nil {
		c.dropLocked()
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	reply, err := decodeReply(v)
	if err != nil {
		var se *ServerError
		if !errors.As(err, &se) {
			c.dropLocked()
		}
		return Reply{}, err
	}
	return reply, nil
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.r = nil
}

// Ping sends PING and returns the reply text.
func (c *Client) Ping(ctx context.Context) (string, error) {
	r, err := c.Do(ctx, "PING")
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

// Echo sends ECHO msg.
func (c *Client) Echo(ctx context.Context, msg string) (string, error) {
	r, err := c.Do(ctx, "ECHO", msg)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

// Set sends SET key value.
func (c *Client) Set(ctx context.Context, key, value string) error {
	_, err := c.Do(ctx, "SET", key, value)
	return err
}

// Get sends GET key. The boolean is false when the key is absent.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	r, err := c.Do(ctx, "GET", key)
	if err != nil {
		return "", false, err
	}
	return r.Text, !r.Null, nil
}

// decodeReply converts a reply value. Error replies become *ServerError.
// The server never sends arrays.
func decodeReply(v resp.Value) (Reply, error) {
	switch v.Type() {
	case resp.SimpleString, resp.Integer:
		return Reply{Text: v.String()}, nil
	case resp.BulkString:
		if v.IsNull() {
			return Reply{Null: true}, nil
		}
		return Reply{Text: v.String()}, nil
	case resp.Error:
		return Reply{}, &ServerError{Message: v.String()}
	default:
		return Reply{}, fmt.Errorf("%w: %s", ErrUnexpectedReply, v.Type())
	}
}
