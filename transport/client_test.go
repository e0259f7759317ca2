package transport

import (
	"bytes"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	t.Run("read and pushback", func(t *testing.T) {
		server, peer := net.Pipe()
		defer func() { _ = peer.Close() }()

		c := NewClient(server, time.Second, make([]byte, 64))
		go func() {
			_, _ = peer.Write([]byte("Content-Length: 2\r\n\r\n{}"))
		}()

		data, err := c.Read()
		require.NoError(t, err)
		require.Equal(t, "Content-Length: 2\r\n\r\n{}", string(data))

		c.Pushback(data[len(data)-2:])
		data, err = c.Read()
		require.NoError(t, err)
		require.Equal(t, "{}", string(data))
		require.NoError(t, c.Close())
	})

	t.Run("timeout", func(t *testing.T) {
		server, peer := net.Pipe()
		defer func() { _ = peer.Close() }()

		c := NewClient(server, 10*time.Millisecond, make([]byte, 64))
		_, err := c.Read()
		require.Error(t, err)
		require.ErrorIs(t, err, os.ErrDeadlineExceeded)
	})

	t.Run("no timeout", func(t *testing.T) {
		server, peer := net.Pipe()
		defer func() { _ = peer.Close() }()

		c := NewClient(server, 0, make([]byte, 64))
		go func() {
			time.Sleep(20 * time.Millisecond)
			_, _ = peer.Write([]byte("late"))
		}()

		data, err := c.Read()
		require.NoError(t, err)
		require.Equal(t, "late", string(data))
	})

	t.Run("write", func(t *testing.T) {
		server, peer := net.Pipe()
		c := NewClient(server, time.Second, make([]byte, 64))

		go func() {
			_, _ = c.Write([]byte("hello"))
			_ = c.Close()
		}()

		data, err := io.ReadAll(peer)
		require.NoError(t, err)
		require.Equal(t, "hello", string(data))
	})
}

func TestPipeClient(t *testing.T) {
	t.Run("data comes before EOF", func(t *testing.T) {
		var out bytes.Buffer
		c := NewPipeClient(bytes.NewReader([]byte("abc")), &out, make([]byte, 2))

		data, err := c.Read()
		require.NoError(t, err)
		require.Equal(t, "ab", string(data))

		data, err = c.Read()
		require.NoError(t, err)
		require.Equal(t, "c", string(data))

		_, err = c.Read()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("pushback", func(t *testing.T) {
		c := NewPipeClient(bytes.NewReader([]byte("abc")), io.Discard, make([]byte, 8))
		data, err := c.Read()
		require.NoError(t, err)

		c.Pushback(data[1:])
		data, err = c.Read()
		require.NoError(t, err)
		require.Equal(t, "bc", string(data))
	})

	t.Run("write and remote", func(t *testing.T) {
		var out bytes.Buffer
		c := NewPipeClient(bytes.NewReader(nil), &out, make([]byte, 8))
		n, err := c.Write([]byte("xyz"))
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Equal(t, "xyz", out.String())
		require.Equal(t, "stdio", c.Remote().String())
		require.NoError(t, c.Close())
	})
}
