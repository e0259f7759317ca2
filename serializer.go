package framed

import (
	"strconv"

	"github.com/indigo-web/framed/status"
)

// DefaultContentType is what the language server protocol assumes when the Content-Type
// field is omitted.
const DefaultContentType = "application/vscode-jsonrpc; charset=utf-8"

// AppendMessage appends payload framed with the header block to dst. Empty contentType
// omits the Content-Type field. The contentType must pass CheckContentType, otherwise the
// produced message won't be parsed back.
func AppendMessage(dst, payload []byte, contentType string) []byte {
	return append(AppendHeader(dst, len(payload), contentType), payload...)
}

// AppendHeader appends the header block alone, including the blank line.
func AppendHeader(dst []byte, contentLength int, contentType string) []byte {
	dst = append(dst, contentLengthField...)
	dst = strconv.AppendUint(dst, uint64(contentLength), 10)
	dst = append(dst, crlf...)

	if len(contentType) > 0 {
		dst = append(dst, contentTypeField...)
		dst = append(dst, contentType...)
		dst = append(dst, crlf...)
	}

	return append(dst, crlf...)
}

// CheckContentType reports whether the value is accepted by ParseMessage as a Content-Type
// field value.
func CheckContentType(value string) error {
	line := make([]byte, 0, len(contentTypeField)+len(value)+len(crlf))
	line = append(line, contentTypeField...)
	line = append(line, value...)
	line = append(line, crlf...)

	_, _, n, _, err := contentType(line)
	switch {
	case err != nil:
		return err
	case n != len(line):
		// the value itself contains a line terminator
		return status.ErrMalformedHeader
	}

	return nil
}
