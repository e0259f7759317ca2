package main

import (
	"os"

	"github.com/indigo-web/framed/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	logLevel   string
)

var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "framectl",
	Short: "framectl - tooling for Content-Length framed message streams",
	Long: `framectl works with streams of messages framed the way the Language Server Protocol
does it: a Content-Length header, an optional Content-Type header, a blank line and the payload.

Examples:
  framectl split < session.log
  framectl join < messages.ndjson
  framectl proxy --listen :9000 --upstream localhost:9001`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}

		logger.SetLevel(level)
		logger.SetOutput(os.Stderr)

		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"YAML config file path, defaults are used if empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"one of trace, debug, info, warn, error")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(proxyCmd)
}

func loadConfig() (*config.Config, error) {
	if len(configFile) == 0 {
		return config.Default(), nil
	}

	return config.Load(configFile)
}
