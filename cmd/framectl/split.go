package main

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/indigo-web/framed/config"
	"github.com/indigo-web/framed/stream"
	"github.com/indigo-web/framed/transport"
	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Unframe messages from stdin, one payload per line",
	Long: `Read framed messages from stdin and write every payload followed by a newline to stdout.
Payloads are written as-is, so multi-line payloads stay multi-line.

Examples:
  framectl split < session.log
  framectl split --resync < damaged.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if splitResync {
			cfg.Resync.Enabled = true
		}

		if splitStrictResync {
			cfg.Resync.Enabled = true
			cfg.Resync.Strict = true
		}

		return runSplit(cfg, os.Stdin, os.Stdout, logger)
	},
}

var (
	splitResync       bool
	splitStrictResync bool
)

func init() {
	splitCmd.Flags().BoolVar(&splitResync, "resync", false,
		"skip malformed fragments instead of failing")
	splitCmd.Flags().BoolVar(&splitStrictResync, "strict-resync", false,
		"like --resync, but only accept resynchronization points with a valid header")
}

func runSplit(cfg *config.Config, in io.Reader, out io.Writer, logger stream.Logger) error {
	client := transport.NewPipeClient(in, io.Discard, make([]byte, cfg.NET.ReadBufferSize))
	reader := stream.NewReader(client, cfg, logger)
	w := bufio.NewWriter(out)

	for {
		payload, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			_ = w.Flush()
			return err
		}

		if _, err = w.Write(payload); err != nil {
			return err
		}

		if err = w.WriteByte('\n'); err != nil {
			return err
		}
	}

	if dropped := reader.Dropped(); dropped > 0 {
		logger.Printf("%d bytes were skipped while resynchronizing", dropped)
	}

	return w.Flush()
}
