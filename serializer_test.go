package framed

import (
	"testing"

	"github.com/indigo-web/framed/status"
	"github.com/stretchr/testify/require"
)

func TestAppendMessage(t *testing.T) {
	t.Run("without content type", func(t *testing.T) {
		require.Equal(t, "Content-Length: 2\r\n\r\n{}", string(AppendMessage(nil, []byte("{}"), "")))
	})

	t.Run("with content type", func(t *testing.T) {
		raw := AppendMessage([]byte("prefix"), []byte("{}"), DefaultContentType)
		wanted := "prefixContent-Length: 2\r\n" +
			"Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" +
			"\r\n{}"
		require.Equal(t, wanted, string(raw))
	})

	t.Run("header only", func(t *testing.T) {
		raw := AppendHeader(nil, 1024, "")
		res, err := ParseMessage(raw)
		require.NoError(t, err)
		require.Equal(t, Pending, res.State)
		require.Equal(t, 1024, res.Needed)
		require.Equal(t, len(raw), res.HeaderLen)
	})
}

func TestCheckContentType(t *testing.T) {
	for _, valid := range []string{
		DefaultContentType, "application/json", "text/plain;charset=utf8", "a;  charset=utf-8",
	} {
		require.NoError(t, CheckContentType(valid), valid)
	}

	for _, tc := range []struct {
		Value string
		Err   error
	}{
		{"", status.ErrMalformedHeader},
		{"text/plain; charset=latin1", status.ErrMalformedCharset},
		{"text/plain; boundary=1", status.ErrMalformedHeader},
		{"text/plain\r\nX-Injected: 1", status.ErrMalformedHeader},
		{"text/plain;", status.ErrMalformedHeader},
	} {
		require.ErrorIs(t, CheckContentType(tc.Value), tc.Err, tc.Value)
	}
}
