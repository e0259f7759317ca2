package framed

import (
	"math"

	"github.com/indigo-web/framed/status"
	"github.com/indigo-web/utils/uf"
)

const (
	contentLengthField = "Content-Length: "
	contentTypeField   = "Content-Type: "
	charsetParam       = "charset="
	crlf               = "\r\n"
)

var charsets = [...]string{"utf-8", "utf8"}

// State tells the caller what to do with the buffer after a parse attempt.
type State uint8

const (
	// Pending means the buffer is a valid prefix of some message. The buffer must be kept
	// as is, and parsing retried once more bytes are appended.
	Pending State = iota + 1
	// Parsed means the whole message was extracted.
	Parsed
	// Failed means the buffer will never become a valid message, no matter how many bytes
	// are appended to it.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Parsed:
		return "parsed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Header is a parsed header block. ContentType and Charset are empty if weren't presented.
type Header struct {
	ContentLength int
	ContentType   string
	Charset       string
}

// Result is an outcome of a single ParseMessage call. All the slices and strings it holds
// reference the input buffer, so they stay valid only until the buffer is modified.
type Result struct {
	State  State
	Header Header
	// HeaderLen is the size of the header block, including the blank line. It's non-zero
	// as soon as the header block is consumed completely, even if the payload is still
	// Pending. This lets callers reject oversized messages before the payload arrives.
	HeaderLen int
	// Payload is exactly Header.ContentLength bytes long.
	Payload []byte
	// Rest is everything following the payload.
	Rest []byte
	// Needed is a lower bound of how many more bytes are required to make progress.
	Needed int
}

// ParseMessage extracts a single message from the beginning of data. The returned error
// is non-nil if and only if the state is Failed.
func ParseMessage(data []byte) (Result, error) {
	var (
		header            Header
		offset, n, needed int
		err               error
	)

	if n, needed, err = literal(data, contentLengthField, status.ErrMissingHeader); n == 0 {
		return halt(needed, err)
	}

	offset += n

	if header.ContentLength, n, needed, err = contentLength(data[offset:]); n == 0 {
		return halt(needed, err)
	}

	offset += n

	if n, needed, err = literal(data[offset:], crlf, status.ErrMalformedHeader); n == 0 {
		return halt(needed, err)
	}

	offset += n

	switch rest := data[offset:]; {
	case len(rest) == 0:
		// either the blank line or the Content-Type field may follow. The blank line is
		// the shortest option
		return halt(len(crlf), nil)
	case rest[0] != '\r':
		header.ContentType, header.Charset, n, needed, err = contentType(rest)
		if n == 0 {
			return halt(needed, err)
		}

		offset += n
	}

	if n, needed, err = literal(data[offset:], crlf, status.ErrMalformedHeader); n == 0 {
		return halt(needed, err)
	}

	return payload(data, offset+n, header), nil
}

func payload(data []byte, offset int, header Header) Result {
	res := Result{Header: header, HeaderLen: offset}
	body := data[offset:]

	if len(body) < header.ContentLength {
		res.State = Pending
		res.Needed = header.ContentLength - len(body)
		return res
	}

	res.State = Parsed
	length := header.ContentLength
	res.Payload, res.Rest = body[:length:length], body[length:]

	return res
}

func halt(needed int, err error) (Result, error) {
	if err != nil {
		return Result{State: Failed}, err
	}

	return Result{State: Pending, Needed: needed}, nil
}

// literal matches lit at the beginning of data. It returns the number of consumed bytes on
// success, the number of missing bytes if data is a proper prefix of lit and the passed
// mismatch error otherwise.
func literal(data []byte, lit string, mismatch error) (n, needed int, err error) {
	if len(data) < len(lit) {
		if uf.B2S(data) != lit[:len(data)] {
			return 0, 0, mismatch
		}

		return 0, len(lit) - len(data), nil
	}

	if uf.B2S(data[:len(lit)]) != lit {
		return 0, 0, mismatch
	}

	return len(lit), 0, nil
}

// contentLength consumes one or more decimal digits. Digits running up to the end of data
// are pending, because the next byte might be a digit too.
func contentLength(data []byte) (length, n, needed int, err error) {
	var value uint64

	for ; n < len(data); n++ {
		char := data[n] - '0'
		if char > 9 {
			break
		}

		if value > (math.MaxInt-uint64(char))/10 {
			return 0, 0, 0, status.ErrContentLengthOverflow
		}

		value = value*10 + uint64(char)
	}

	switch {
	case n == len(data):
		return 0, 0, 1, nil
	case n == 0:
		return 0, 0, 0, status.ErrMalformedLength
	}

	return int(value), n, 0, nil
}

// contentType consumes the whole Content-Type line, including its CRLF.
func contentType(data []byte) (ctype, charset string, n, needed int, err error) {
	if n, needed, err = literal(data, contentTypeField, status.ErrMalformedHeader); n == 0 {
		return "", "", 0, needed, err
	}

	end := n
	for end < len(data) && data[end] != ';' && data[end] != '\r' {
		end++
	}

	switch {
	case end == len(data):
		return "", "", 0, 1, nil
	case end == n:
		return "", "", 0, 0, status.ErrMalformedHeader
	}

	ctype, n = uf.B2S(data[n:end]), end

	if data[n] == ';' {
		var m int
		if charset, m, needed, err = charsetParameter(data[n+1:]); m == 0 {
			return "", "", 0, needed, err
		}

		n += 1 + m
	}

	m, needed, err := literal(data[n:], crlf, status.ErrMalformedHeader)
	if m == 0 {
		return "", "", 0, needed, err
	}

	return ctype, charset, n + m, 0, nil
}

// charsetParameter consumes everything after the semicolon up to the line terminator.
func charsetParameter(data []byte) (charset string, n, needed int, err error) {
	for n < len(data) && (data[n] == ' ' || data[n] == '\t') {
		n++
	}

	if n == len(data) {
		return "", 0, 1, nil
	}

	m, needed, err := literal(data[n:], charsetParam, status.ErrMalformedHeader)
	if m == 0 {
		return "", 0, needed, err
	}

	n += m
	value := data[n:]
	needed = math.MaxInt

	for _, cs := range charsets {
		m, more, _ := literal(value, cs, nil)
		if m == 0 {
			if more > 0 {
				needed = min(needed, more)
			}

			continue
		}

		if len(value) > m && value[m] != '\r' {
			// utf-8 must be the whole value, not a prefix of something else
			return "", 0, 0, status.ErrMalformedCharset
		}

		return uf.B2S(value[:m]), n + m, 0, nil
	}

	if needed == math.MaxInt {
		return "", 0, 0, status.ErrMalformedCharset
	}

	return "", 0, needed, nil
}
