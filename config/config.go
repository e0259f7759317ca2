package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/indigo-web/framed"
	"gopkg.in/yaml.v3"
)

type (
	Message struct {
		// MaxContentLength limits the declared payload size. Messages exceeding it are rejected
		// as soon as their header block is parsed, before the payload is buffered.
		MaxContentLength int `yaml:"max_content_length"`
		// MaxHeaderSize limits how many bytes may be buffered while the header block is still
		// incomplete. The header block of a well-behaving peer is below 100 bytes.
		MaxHeaderSize int `yaml:"max_header_size"`
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// the connection.
		ReadBufferSize int `yaml:"read_buffer_size"`
		// ReadTimeout controls the maximal lifetime of IDLE connections. Zero disables the
		// deadline, which is the default: editors may stay silent for hours.
		ReadTimeout time.Duration `yaml:"read_timeout" test:"nullable"`
		// AccumulatorPrealloc is the initial capacity of the buffer accumulating incomplete
		// messages.
		AccumulatorPrealloc int `yaml:"accumulator_prealloc"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration `yaml:"accept_loop_interrupt_period"`
	}

	Resync struct {
		// Enabled makes readers skip malformed fragments instead of failing. Skipped bytes are
		// lost for good, including any messages they contained.
		Enabled bool `yaml:"enabled" test:"nullable"`
		// Strict validates every resynchronization point by parsing a header at it, so a
		// payload containing the Content-Length field name doesn't fool the reader.
		Strict bool `yaml:"strict" test:"nullable"`
	}

	Writer struct {
		// ContentType is included into every written message unless empty.
		ContentType string `yaml:"content_type" test:"nullable"`
	}
)

// Config holds limits and behaviour knobs of readers and writers. The parser itself has
// none, as it's stateless.
//
// Always start from Default() and modify what's needed.
type Config struct {
	Message Message `yaml:"message"`
	NET     NET     `yaml:"net"`
	Resync  Resync  `yaml:"resync"`
	Writer  Writer  `yaml:"writer"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Message: Message{
			MaxContentLength: 64 * 1024 * 1024, // 64 megabytes, full-text document syncs may get big
			MaxHeaderSize:    1024,
		},
		NET: NET{
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               0,
			AccumulatorPrealloc:       8 * 1024,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		Resync: Resync{
			Enabled: false,
			Strict:  false,
		},
		Writer: Writer{
			ContentType: "",
		},
	}
}

// Load reads a YAML file on top of the defaults. Fields missing in the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Message.MaxContentLength < 0:
		return errors.New("message.max_content_length must not be negative")
	case c.Message.MaxHeaderSize <= 0:
		return errors.New("message.max_header_size must be positive")
	case c.NET.ReadBufferSize <= 0:
		return errors.New("net.read_buffer_size must be positive")
	case c.NET.ReadTimeout < 0:
		return errors.New("net.read_timeout must not be negative")
	case c.NET.AccumulatorPrealloc < 0:
		return errors.New("net.accumulator_prealloc must not be negative")
	case c.NET.AcceptLoopInterruptPeriod <= 0:
		return errors.New("net.accept_loop_interrupt_period must be positive")
	case c.Resync.Strict && !c.Resync.Enabled:
		return errors.New("resync.strict has no effect unless resync.enabled is set")
	}

	if len(c.Writer.ContentType) > 0 {
		if err := framed.CheckContentType(c.Writer.ContentType); err != nil {
			return fmt.Errorf("writer.content_type: %w", err)
		}
	}

	return nil
}
