package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/framed/transport"
)

var _ transport.Client = new(Client)

// Client returns the chunks it was initialised with one by one, and io.EOF afterwards
// unless set to loop. It also journals all the written data, making it thereby a universal
// mock suitable for most of the tests.
type Client struct {
	closed  bool
	loop    bool
	pointer int
	tmp     []byte
	written []byte
	data    [][]byte
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data: data,
	}
}

// Loop makes the client start over instead of returning io.EOF. Mainly for benchmarks.
func (c *Client) Loop() *Client {
	c.loop = true
	return c
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, io.EOF
	}

	if len(c.tmp) > 0 {
		data, c.tmp = c.tmp, nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.tmp = takeback
}

func (c *Client) Write(p []byte) (int, error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	c.written = append(c.written, p...)

	return len(p), nil
}

// Written returns everything written so far.
func (c *Client) Written() []byte {
	return c.written
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}
