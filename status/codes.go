package status

// Code classifies a framing failure. Codes are stable and may be used by the caller
// to decide whether a connection is worth resynchronizing or must be dropped.
type Code uint8

const (
	// MissingHeader means the input doesn't begin with the Content-Length field.
	MissingHeader Code = iota + 1
	// MalformedLength covers absent, non-numeric and overflowing content lengths.
	MalformedLength
	// MalformedHeader is anything else wrong with the header block: bad line terminators,
	// empty content type, unknown content type parameters or unexpected fields.
	MalformedHeader
	// MalformedCharset is a charset parameter with a value other than utf-8 or utf8.
	MalformedCharset
	// MessageTooLarge is reported by readers enforcing a content length limit.
	MessageTooLarge
	// HeaderTooLarge is reported by readers enforcing a header block size limit.
	HeaderTooLarge
)

// KnownCodes lists every defined code.
var KnownCodes = []Code{
	MissingHeader, MalformedLength, MalformedHeader, MalformedCharset, MessageTooLarge, HeaderTooLarge,
}

func (c Code) String() string {
	switch c {
	case MissingHeader:
		return "missing header"
	case MalformedLength:
		return "malformed length"
	case MalformedHeader:
		return "malformed header"
	case MalformedCharset:
		return "malformed charset"
	case MessageTooLarge:
		return "message too large"
	case HeaderTooLarge:
		return "header too large"
	default:
		return "unknown"
	}
}
