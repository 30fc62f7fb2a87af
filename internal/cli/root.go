// Package cli implements the ctfdump commands using the cobra framework.
package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arloliu/ctfdec/internal/config"
	applog "github.com/arloliu/ctfdec/internal/log"
)

// Version is reported by ctfdump --version.
var Version = "0.1.0"

// app carries the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	log    *logrus.Logger
	closer io.Closer
}

// NewRootCommand builds the ctfdump command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ctfdump",
		Short: "ctfdump - decode Common Trace Format binary streams",
		Long: `ctfdump decodes CTF binary trace data using a YAML schema that describes
the packet header, packet context, event header and event payload types.

Stream files may be archived with zstd (.zst), S2 (.s2) or LZ4 (.lz4); they
are decompressed transparently.

Examples:
  ctfdump metadata trace/metadata                   # Print metadata packet headers and text
  ctfdump events -s trace.yaml trace/channel0_*     # Print all events of all streams
  ctfdump events -s trace.yaml -o json trace/chan0  # Print events as JSON lines
  ctfdump archive -t zstd trace/channel0_*          # Compress stream files for storage`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"config file path (default ./"+config.FileName+" when present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"log level override: trace/debug/info/warn/error")

	root.AddCommand(newMetadataCommand(a))
	root.AddCommand(newEventsCommand(a))
	root.AddCommand(newArchiveCommand(a))

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	l, closer, err := applog.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	a.cfg, a.log, a.closer = cfg, l, closer

	return nil
}

func (a *app) teardown() error {
	if a.closer == nil {
		return nil
	}

	return a.closer.Close()
}
