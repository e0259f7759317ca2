package main

import (
	"bufio"
	"io"
	"os"

	"github.com/indigo-web/framed"
	"github.com/indigo-web/framed/config"
	"github.com/indigo-web/framed/stream"
	"github.com/spf13/cobra"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Frame newline-delimited payloads from stdin",
	Long: `Read payloads from stdin, one per line, and write each one as a framed message to stdout.
Empty lines are skipped.

Examples:
  framectl join < messages.ndjson
  framectl join --content-type "application/json" < messages.ndjson`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("content-type") {
			cfg.Writer.ContentType = joinContentType
			if err = cfg.Validate(); err != nil {
				return err
			}
		}

		return runJoin(cfg, os.Stdin, os.Stdout)
	},
}

var joinContentType string

func init() {
	joinCmd.Flags().StringVar(&joinContentType, "content-type", "",
		"Content-Type header value overriding writer.content_type, e.g. \""+framed.DefaultContentType+"\"")
}

func runJoin(cfg *config.Config, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, cfg.NET.ReadBufferSize), cfg.Message.MaxContentLength+1)
	bw := bufio.NewWriter(out)
	writer := stream.NewWriter(bw, cfg.Writer.ContentType)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if err := writer.WriteMessage(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	return bw.Flush()
}
