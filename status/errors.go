package status

import "errors"

type FramingError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return FramingError{
		Code:    code,
		Message: message,
	}
}

func (f FramingError) Error() string {
	return f.Message
}

// CodeOf returns the code of the first FramingError found in err's chain. Zero is
// returned if there's none.
func CodeOf(err error) Code {
	var ferr FramingError
	if errors.As(err, &ferr) {
		return ferr.Code
	}

	return 0
}

var (
	ErrMissingHeader         = NewError(MissingHeader, "message doesn't begin with Content-Length header")
	ErrMalformedLength       = NewError(MalformedLength, "malformed content length")
	ErrContentLengthOverflow = NewError(MalformedLength, "content length overflow")
	ErrMalformedHeader       = NewError(MalformedHeader, "malformed header block")
	ErrMalformedCharset      = NewError(MalformedCharset, "unsupported charset")
	ErrMessageTooLarge       = NewError(MessageTooLarge, "message is too large")
	ErrHeaderTooLarge        = NewError(HeaderTooLarge, "header block is too large")
)
