package framed

import "io"

// SplitFunc is a bufio.SplitFunc yielding message payloads. Framing errors stop the
// scanning. Note that bufio.Scanner limits the token size, so Scanner.Buffer must be
// adjusted if messages may exceed bufio.MaxScanTokenSize.
func SplitFunc(data []byte, atEOF bool) (advance int, token []byte, err error) {
	res, err := ParseMessage(data)
	switch res.State {
	case Parsed:
		return len(data) - len(res.Rest), res.Payload, nil
	case Pending:
		if atEOF && len(data) > 0 {
			return 0, nil, io.ErrUnexpectedEOF
		}

		return 0, nil, nil
	default:
		return 0, nil, err
	}
}
