package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arloliu/ctfdec/compress"
	"github.com/arloliu/ctfdec/format"
)

func newArchiveCommand(a *app) *cobra.Command {
	var (
		typ  string
		keep bool
	)

	cmd := &cobra.Command{
		Use:   "archive -t <zstd|s2|lz4> <files...>",
		Short: "Compress trace files for storage",
		Long: `Compress stream or metadata files. Each file is written next to the original
with the extension of the chosen format; the archive is verified by
decompressing it before the original is removed.

Examples:
  ctfdump archive -t zstd trace/channel0_0 trace/channel0_1
  ctfdump archive -t lz4 --keep trace/metadata`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ct, err := parseCompression(typ)
			if err != nil {
				return err
			}
			codec, err := compress.CreateCodec(ct)
			if err != nil {
				return err
			}

			for _, path := range args {
				dst, err := archiveFile(codec, path, compress.Extension(ct), keep)
				if err != nil {
					return err
				}
				a.log.WithFields(logrus.Fields{"file": path, "archive": dst}).Info("file archived")
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "zstd", "compression format: zstd/s2/lz4")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the original files")

	return cmd
}

func parseCompression(s string) (format.CompressionType, error) {
	switch strings.ToLower(s) {
	case "zstd", "zst":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	default:
		return format.CompressionNone, fmt.Errorf("unsupported compression format: %s (must be zstd/s2/lz4)", s)
	}
}

func archiveFile(codec compress.Codec, path, ext string, keep bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, err := codec.Compress(data)
	if err != nil {
		return "", fmt.Errorf("failed to compress %s: %w", path, err)
	}

	restored, err := codec.Decompress(out)
	if err != nil || !bytes.Equal(restored, data) {
		return "", fmt.Errorf("archive of %s does not restore the original", path)
	}

	dst := path + ext
	if err := os.WriteFile(dst, out, 0o644); err != nil { //nolint:gosec
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}

	if !keep {
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	return dst, nil
}
