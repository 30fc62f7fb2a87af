package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arloliu/ctfdec"
	"github.com/arloliu/ctfdec/decode"
	"github.com/arloliu/ctfdec/trace"
)

func newEventsCommand(a *app) *cobra.Command {
	var (
		schemaPath  string
		format      string
		workers     int
		skipCorrupt bool
		maxDepth    int
		maxElements int
	)

	cmd := &cobra.Command{
		Use:   "events -s <schema.yaml> <stream files...>",
		Short: "Decode and print the events of data streams",
		Long: `Decode every packet of the given data stream files and print their events.
Streams are decoded concurrently; events of one stream are printed in order.

Examples:
  ctfdump events -s trace.yaml trace/channel0_0 trace/channel0_1
  ctfdump events -s trace.yaml -o json --skip-corrupt trace/channel0_*.zst`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.Output.Format = format
			}
			if flags.Changed("workers") {
				cfg.Reader.Workers = workers
			}
			if flags.Changed("skip-corrupt") {
				cfg.Reader.SkipCorruptPackets = skipCorrupt
			}
			if flags.Changed("max-depth") {
				cfg.Decoder.MaxDepth = maxDepth
			}
			if flags.Changed("max-elements") {
				cfg.Decoder.MaxElements = maxElements
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			tr, err := ctfdec.LoadSchema(schemaPath)
			if err != nil {
				return err
			}

			streams, err := trace.LoadStreams(args...)
			if err != nil {
				return err
			}

			r, err := trace.NewReader(tr,
				trace.WithWorkers(cfg.Reader.Workers),
				trace.WithSkipCorruptPackets(cfg.Reader.SkipCorruptPackets),
				trace.WithLogger(a.log.WithField("schema", schemaPath)),
				trace.WithDecodeOptions(
					decode.WithMaxDepth(cfg.Decoder.MaxDepth),
					decode.WithMaxElements(cfg.Decoder.MaxElements),
				),
			)
			if err != nil {
				return err
			}

			sink := newPrinter(cmd.OutOrStdout(), cfg.Output.Format)
			stats, err := r.Read(cmd.Context(), streams, sink)
			if err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{
				"streams": stats.Streams,
				"corrupt": stats.CorruptStreams,
				"packets": stats.Packets,
				"events":  stats.Events,
			}).Info("trace decoded")

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&schemaPath, "schema", "s", "", "YAML schema file (required)")
	flags.StringVarP(&format, "output", "o", "text", "output format: text/json")
	flags.IntVarP(&workers, "workers", "w", 0, "streams decoded at once, 0 = all")
	flags.BoolVar(&skipCorrupt, "skip-corrupt", false, "log and abandon corrupt streams instead of failing")
	flags.IntVar(&maxDepth, "max-depth", decode.DefaultMaxDepth, "maximum type nesting depth")
	flags.IntVar(&maxElements, "max-elements", decode.DefaultMaxElements, "maximum array element count")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}
