package stream

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/indigo-web/framed"
	"github.com/indigo-web/framed/config"
	"github.com/indigo-web/framed/status"
	"github.com/indigo-web/framed/transport/dummy"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Printf(format string, v ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

func frame(payload string) string {
	return string(framed.AppendMessage(nil, []byte(payload), framed.DefaultContentType))
}

func splitIntoParts(data string, n int) (parts [][]byte) {
	for i := 0; i < len(data); i += n {
		end := min(i+n, len(data))
		parts = append(parts, []byte(data[i:end]))
	}

	return parts
}

func readAll(t *testing.T, r *Reader) (payloads []string) {
	for {
		payload, err := r.Read()
		if err == io.EOF {
			return payloads
		}

		require.NoError(t, err)
		payloads = append(payloads, string(payload))
	}
}

func TestReader(t *testing.T) {
	messages := []string{`{"id":1}`, "", `{"id":"abc","method":"exit"}`}
	stream := frame(messages[0]) + frame(messages[1]) + frame(messages[2])

	for _, n := range []int{1, 2, 7, 64, len(stream)} {
		t.Run(fmt.Sprintf("by %d bytes", n), func(t *testing.T) {
			client := dummy.NewMockClient(splitIntoParts(stream, n)...)
			r := NewReader(client, config.Default(), nil)
			require.Equal(t, messages, readAll(t, r))
			require.Zero(t, r.Dropped())
		})
	}

	t.Run("payload copy survives", func(t *testing.T) {
		client := dummy.NewMockClient([]byte(frame("first") + frame("second")))
		r := NewReader(client, config.Default(), nil)
		first, err := r.Read()
		require.NoError(t, err)
		kept := string(first)
		_, err = r.Read()
		require.NoError(t, err)
		require.Equal(t, "first", kept)
	})

	t.Run("unexpected EOF", func(t *testing.T) {
		raw := frame("hello")
		client := dummy.NewMockClient([]byte(raw[:len(raw)-1]))
		r := NewReader(client, config.Default(), nil)
		_, err := r.Read()
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("clean EOF", func(t *testing.T) {
		r := NewReader(dummy.NewMockClient(), config.Default(), nil)
		_, err := r.Read()
		require.ErrorIs(t, err, io.EOF)
	})
}

func TestReaderLimits(t *testing.T) {
	t.Run("header too large", func(t *testing.T) {
		cfg := config.Default()
		cfg.Message.MaxHeaderSize = 16
		client := dummy.NewMockClient([]byte("Content-Length: 1234"))
		_, err := NewReader(client, cfg, nil).Read()
		require.ErrorIs(t, err, status.ErrHeaderTooLarge)
	})

	t.Run("message too large while pending", func(t *testing.T) {
		cfg := config.Default()
		cfg.Message.MaxContentLength = 4
		client := dummy.NewMockClient([]byte("Content-Length: 10\r\n\r\n"))
		_, err := NewReader(client, cfg, nil).Read()
		require.ErrorIs(t, err, status.ErrMessageTooLarge)
	})

	t.Run("message too large at once", func(t *testing.T) {
		cfg := config.Default()
		cfg.Message.MaxContentLength = 4
		client := dummy.NewMockClient([]byte(frame("hello")))
		_, err := NewReader(client, cfg, nil).Read()
		require.ErrorIs(t, err, status.ErrMessageTooLarge)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		cfg := config.Default()
		cfg.Message.MaxContentLength = 5
		client := dummy.NewMockClient([]byte(frame("hello")))
		payload, err := NewReader(client, cfg, nil).Read()
		require.NoError(t, err)
		require.Equal(t, "hello", string(payload))
	})
}

func TestReaderResync(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		client := dummy.NewMockClient([]byte("garbage" + frame("{}")))
		_, err := NewReader(client, config.Default(), nil).Read()
		require.ErrorIs(t, err, status.ErrMissingHeader)
	})

	for _, n := range []int{1, 3, 1024} {
		t.Run(fmt.Sprintf("garbage by %d bytes", n), func(t *testing.T) {
			cfg := config.Default()
			cfg.Resync.Enabled = true
			logger := new(recordingLogger)
			client := dummy.NewMockClient(splitIntoParts("garbage"+frame("{}")+"x"+frame("[]"), n)...)
			r := NewReader(client, cfg, logger)
			require.Equal(t, []string{"{}", "[]"}, readAll(t, r))
			require.Equal(t, len("garbage")+len("x"), r.Dropped())
			require.NotEmpty(t, logger.lines)
		})
	}

	t.Run("marker inside garbage", func(t *testing.T) {
		raw := "XContent-Length-garbage" + frame("{}")

		cfg := config.Default()
		cfg.Resync.Enabled = true
		loose := new(recordingLogger)
		r := NewReader(dummy.NewMockClient([]byte(raw)), cfg, loose)
		require.Equal(t, []string{"{}"}, readAll(t, r))
		require.Len(t, loose.lines, 2)

		cfg.Resync.Strict = true
		strict := new(recordingLogger)
		r = NewReader(dummy.NewMockClient([]byte(raw)), cfg, strict)
		require.Equal(t, []string{"{}"}, readAll(t, r))
		require.Len(t, strict.lines, 1)
		require.Equal(t, len(raw)-len(frame("{}")), r.Dropped())
	})

	t.Run("broken header starting with marker", func(t *testing.T) {
		cfg := config.Default()
		cfg.Resync.Enabled = true
		raw := "Content-Length: 1x\r\n" + frame("{}")
		r := NewReader(dummy.NewMockClient([]byte(raw)), cfg, new(recordingLogger))
		require.Equal(t, []string{"{}"}, readAll(t, r))
		require.Equal(t, len("Content-Length: 1x\r\n"), r.Dropped())
	})

	t.Run("log mentions the cause", func(t *testing.T) {
		cfg := config.Default()
		cfg.Resync.Enabled = true
		logger := new(recordingLogger)
		r := NewReader(dummy.NewMockClient([]byte("?"+frame("{}"))), cfg, logger)
		require.Equal(t, []string{"{}"}, readAll(t, r))
		require.Len(t, logger.lines, 1)
		require.True(t, strings.Contains(logger.lines[0], status.ErrMissingHeader.Error()))
	})
}

func TestReaderDetach(t *testing.T) {
	client := dummy.NewMockClient([]byte(frame("one") + frame("two")))
	r := NewReader(client, config.Default(), nil)
	payload, err := r.Read()
	require.NoError(t, err)
	require.Equal(t, "one", string(payload))
	require.Equal(t, len(frame("two")), r.Buffered())

	r.Detach()
	rest, err := client.Read()
	require.NoError(t, err)
	require.Equal(t, frame("two"), string(rest))
}
