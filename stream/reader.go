package stream

import (
	"errors"
	"io"
	"log"

	"github.com/indigo-web/framed"
	"github.com/indigo-web/framed/config"
	"github.com/indigo-web/framed/status"
	"github.com/indigo-web/framed/transport"
)

// Logger is satisfied by *log.Logger, logrus and most of the other loggers around.
type Logger interface {
	Printf(format string, v ...any)
}

// Reader owns the accumulation buffer of a single connection and yields payloads one by
// one. It must not be used from multiple goroutines.
type Reader struct {
	client   transport.Client
	cfg      *config.Config
	logger   Logger
	buff     []byte
	consumed int
	dropped  int
}

// NewReader returns a reader on top of the client. Nil logger defaults to log.Default().
func NewReader(client transport.Client, cfg *config.Config, logger Logger) *Reader {
	if logger == nil {
		logger = log.Default()
	}

	return &Reader{
		client: client,
		cfg:    cfg,
		logger: logger,
		buff:   make([]byte, 0, cfg.NET.AccumulatorPrealloc),
	}
}

// Read returns the next payload. The payload references the internal buffer and is valid
// until the next call to Read. io.EOF is returned only if the stream ended exactly on a
// message boundary, otherwise it's io.ErrUnexpectedEOF.
func (r *Reader) Read() ([]byte, error) {
	r.compact()

	for {
		if len(r.buff) > 0 {
			res, err := framed.ParseMessage(r.buff)
			switch res.State {
			case framed.Parsed:
				if err = r.checkLimits(res); err != nil {
					return nil, err
				}

				r.consumed = len(r.buff) - len(res.Rest)
				return res.Payload, nil
			case framed.Pending:
				if err = r.checkLimits(res); err != nil {
					return nil, err
				}
			case framed.Failed:
				if !r.cfg.Resync.Enabled {
					return nil, err
				}

				r.resync(err)
				continue
			}
		}

		data, err := r.client.Read()
		r.buff = append(r.buff, data...)
		if err != nil {
			if errors.Is(err, io.EOF) && len(r.buff) > 0 {
				return nil, io.ErrUnexpectedEOF
			}

			return nil, err
		}
	}
}

// Buffered returns the number of bytes received but not yet returned as payloads.
func (r *Reader) Buffered() int {
	return len(r.buff) - r.consumed
}

// Dropped returns the total number of bytes skipped by resynchronization.
func (r *Reader) Dropped() int {
	return r.dropped
}

// Detach hands the buffered data back to the client, so somebody else can continue reading
// the stream from where the reader stopped. The reader must not be used afterwards.
func (r *Reader) Detach() {
	r.compact()
	if len(r.buff) > 0 {
		r.client.Pushback(r.buff)
	}

	r.buff = nil
}

func (r *Reader) compact() {
	if r.consumed == 0 {
		return
	}

	n := copy(r.buff, r.buff[r.consumed:])
	r.buff = r.buff[:n]
	r.consumed = 0
}

func (r *Reader) checkLimits(res framed.Result) error {
	if res.HeaderLen == 0 {
		if len(r.buff) > r.cfg.Message.MaxHeaderSize {
			return status.ErrHeaderTooLarge
		}

		return nil
	}

	if res.Header.ContentLength > r.cfg.Message.MaxContentLength {
		return status.ErrMessageTooLarge
	}

	return nil
}

// resync drops bytes up to the next plausible message start. The buffer begins with a
// broken header, which itself might contain the marker, so the search starts at the
// second byte.
func (r *Reader) resync(cause error) {
	search := framed.FindNextMessage
	if r.cfg.Resync.Strict {
		search = framed.Resync
	}

	tail := r.buff[1:]
	drop := 1
	if offset, _, found := search(tail); found {
		drop += offset
	} else {
		drop += framed.Discardable(tail)
	}

	r.logger.Printf("framed: %s, dropping %d bytes to resynchronize", cause, drop)
	r.dropped += drop
	n := copy(r.buff, r.buff[drop:])
	r.buff = r.buff[:n]
}
