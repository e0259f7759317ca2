package transport

import (
	"io"
	"net"
	"time"

	"github.com/indigo-web/utils/unreader"
)

// Client is a source of chunks for the framer and a sink for framed messages.
type Client interface {
	// Read returns the next chunk of data. The chunk is valid until the next Read call.
	Read() ([]byte, error)
	// Pushback preserves a chunk of data for the next Read.
	Pushback([]byte)
	Write([]byte) (int, error)
	Remote() net.Addr
	Close() error
}

type client struct {
	unreader *unreader.Unreader
	conn     net.Conn
	buff     []byte
	timeout  time.Duration
}

// NewClient wraps the connection. Zero timeout means reads never time out.
func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		unreader: new(unreader.Unreader),
		conn:     conn,
		buff:     buff,
		timeout:  timeout,
	}
}

// Read reads data into the internal buffer and returns a piece of it back. Timeouts are also
// handled automatically.
func (c *client) Read() ([]byte, error) {
	return c.unreader.PendingOr(func() ([]byte, error) {
		if c.timeout > 0 {
			if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
				return nil, err
			}
		}

		n, err := c.conn.Read(c.buff)
		return c.buff[:n], err
	})
}

func (c *client) Pushback(b []byte) {
	c.unreader.Unread(b)
}

func (c *client) Write(b []byte) (int, error) {
	return c.conn.Write(b)
}

func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Close() error {
	return c.conn.Close()
}

// pipeAddr is what pipe clients report as their remote address.
type pipeAddr struct{}

func (pipeAddr) Network() string { return "pipe" }
func (pipeAddr) String() string  { return "stdio" }

type pipeClient struct {
	unreader *unreader.Unreader
	r        io.Reader
	w        io.Writer
	buff     []byte
}

// NewPipeClient wraps a pair of streams, usually the process' stdin and stdout, as editors
// talk to language servers over those. Pipes have no deadlines, so there are no timeouts.
func NewPipeClient(r io.Reader, w io.Writer, buff []byte) Client {
	return &pipeClient{
		unreader: new(unreader.Unreader),
		r:        r,
		w:        w,
		buff:     buff,
	}
}

func (p *pipeClient) Read() ([]byte, error) {
	return p.unreader.PendingOr(func() ([]byte, error) {
		n, err := p.r.Read(p.buff)
		if n > 0 && err == io.EOF {
			// deliver the data first, EOF will be returned on the next read anyway
			err = nil
		}

		return p.buff[:n], err
	})
}

func (p *pipeClient) Pushback(b []byte) {
	p.unreader.Unread(b)
}

func (p *pipeClient) Write(b []byte) (int, error) {
	return p.w.Write(b)
}

func (*pipeClient) Remote() net.Addr {
	return pipeAddr{}
}

// Close closes both ends, if they're closable.
func (p *pipeClient) Close() error {
	var rerr, werr error
	if closer, ok := p.r.(io.Closer); ok {
		rerr = closer.Close()
	}

	if closer, ok := p.w.(io.Closer); ok {
		werr = closer.Close()
	}

	if rerr != nil {
		return rerr
	}

	return werr
}
