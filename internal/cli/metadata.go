package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arloliu/ctfdec/packet"
	"github.com/arloliu/ctfdec/section"
	"github.com/arloliu/ctfdec/trace"
)

func newMetadataCommand(a *app) *cobra.Command {
	var headersOnly bool

	cmd := &cobra.Command{
		Use:   "metadata <file>",
		Short: "Print metadata packet headers and text",
		Long: `Print the headers of every packet of a binary metadata stream, followed by
the reassembled metadata text. Plain text metadata is printed unchanged.

Examples:
  ctfdump metadata trace/metadata
  ctfdump metadata --headers trace/metadata.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := trace.LoadStream(args[0])
			if err != nil {
				return err
			}
			a.log.WithField("file", args[0]).Debug("metadata stream loaded")

			return printMetadata(cmd.OutOrStdout(), s.Data, headersOnly)
		},
	}

	cmd.Flags().BoolVar(&headersOnly, "headers", false, "print packet headers only")

	return cmd
}

func printMetadata(w io.Writer, data []byte, headersOnly bool) error {
	if bytes.HasPrefix(data, []byte(section.PlainTextPrefix)) {
		fmt.Fprintln(w, "plain text metadata")
		if !headersOnly {
			fmt.Fprintf(w, "\n%s\n", data)
		}

		return nil
	}

	for i, off := 0, 0; off < len(data); i++ {
		h, _, n, err := packet.ReadMetadataPacket(data[off:])
		if err != nil {
			return fmt.Errorf("metadata packet %d at byte %d: %w", i, off, err)
		}

		fmt.Fprintf(w, "packet %d: offset=%d uuid=%s version=%d.%d byte_order=%s content_bits=%d total_bits=%d\n",
			i, off, formatUUID(h.UUID), h.Major, h.Minor, h.ByteOrder, h.ContentSizeBits, h.TotalSizeBits)
		off += n
	}

	if headersOnly {
		return nil
	}

	text, _, err := packet.ReadMetadataStream(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", text)

	return nil
}

func formatUUID(u [16]byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}
