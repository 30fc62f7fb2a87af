package cli

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
	"github.com/arloliu/ctfdec/packet"
	"github.com/arloliu/ctfdec/schema"
	"github.com/arloliu/ctfdec/section"
	"github.com/arloliu/ctfdec/value"
)

const cliSchema = `
byte_order: le
packet_header:
  fields:
    - {name: magic, type: int, size: 32}
streams:
  - id: 0
    packet_context:
      fields:
        - {name: content_length, type: int, size: 16}
        - {name: total_length, type: int, size: 16}
    event_header:
      fields:
        - {name: id, type: int, size: 8}
        - {name: timestamp, type: int, size: 32}
    events:
      - id: 1
        name: tick
        payload:
          fields:
            - {name: n, type: int, size: 8}
`

// workdir switches to an empty directory so no ctfdump.yaml is picked up.
func workdir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

// tickPacket holds one 6-byte tick event per n, timestamped ts, ts+1, ...
func tickPacket(ts uint32, ns ...byte) []byte {
	size := uint16(8+6*len(ns)) * 8
	b := binary.LittleEndian.AppendUint32(nil, schema.PacketMagic)
	b = binary.LittleEndian.AppendUint16(b, size)
	b = binary.LittleEndian.AppendUint16(b, size)
	for i, n := range ns {
		b = append(b, 1)
		b = binary.LittleEndian.AppendUint32(b, ts+uint32(i))
		b = append(b, n)
	}

	return b
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func TestEventsCommand(t *testing.T) {
	dir := workdir(t)
	schemaPath := writeFile(t, dir, "trace.yaml", []byte(cliSchema))
	stream := writeFile(t, dir, "chan0", append(tickPacket(100, 7, 8), tickPacket(200, 9)...))

	t.Run("text", func(t *testing.T) {
		out, _, err := run(t, "events", "-s", schemaPath, stream)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		require.Equal(t, "[chan0] packet@0 #0 tick ts=100 payload={n = 7}", lines[0])
		require.Equal(t, "[chan0] packet@0 #1 tick ts=101 payload={n = 8}", lines[1])
		require.Equal(t, "[chan0] packet@20 #0 tick ts=200 payload={n = 9}", lines[2])
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := run(t, "events", "-s", schemaPath, "-o", "json", stream)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)

		var ev map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &ev))
		require.Equal(t, "chan0", ev["stream"])
		require.Equal(t, "tick", ev["name"])
		require.InDelta(t, 1, ev["class_id"], 0)
		require.InDelta(t, 101, ev["timestamp"], 0)
		require.Equal(t, map[string]any{"n": float64(8)}, ev["payload"])
		require.Equal(t, map[string]any{"id": float64(1), "timestamp": float64(101)}, ev["header"])
	})

	t.Run("corrupt stream", func(t *testing.T) {
		bad := tickPacket(1, 1)
		bad[0] = 0
		badPath := writeFile(t, dir, "bad", bad)

		_, _, err := run(t, "events", "-s", schemaPath, badPath)
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)

		out, stderr, err := run(t, "events", "-s", schemaPath, "--skip-corrupt", "--log-level", "warn", stream, badPath)
		require.NoError(t, err)
		require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
		require.Contains(t, stderr, "abandoning stream")
		require.Contains(t, stderr, "stream=bad")
	})

	t.Run("invalid flags", func(t *testing.T) {
		_, _, err := run(t, "events", stream)
		require.Error(t, err)

		_, _, err = run(t, "events", "-s", schemaPath, "-o", "xml", stream)
		require.Error(t, err)

		_, _, err = run(t, "events", "-s", schemaPath, "--log-level", "loud", stream)
		require.Error(t, err)

		_, _, err = run(t, "events", "-s", filepath.Join(dir, "missing.yaml"), stream)
		require.Error(t, err)
	})
}

func TestEventsCommand_ConfigFile(t *testing.T) {
	dir := workdir(t)
	schemaPath := writeFile(t, dir, "trace.yaml", []byte(cliSchema))
	stream := writeFile(t, dir, "chan0", tickPacket(1, 7))
	writeFile(t, dir, "ctfdump.yaml", []byte("output:\n  format: json\n"))

	out, _, err := run(t, "events", "-s", schemaPath, stream)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "{"))

	// flags win over the file
	out, _, err = run(t, "events", "-s", schemaPath, "-o", "text", stream)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "[chan0]"))
}

func TestMetadataCommand(t *testing.T) {
	dir := workdir(t)
	uuid := [16]byte{0xde, 0xad, 0xbe, 0xef}

	var data []byte
	for _, chunk := range []string{"/* schema */ trace ", "{ };"} {
		h := section.NewMetadataHeader(uuid, len(chunk), 128, format.LittleEndian)
		data = append(data, h.Bytes()...)
		data = append(data, chunk...)
		for len(data)%128 != 0 {
			data = append(data, 0)
		}
	}
	path := writeFile(t, dir, "metadata", data)

	out, _, err := run(t, "metadata", path)
	require.NoError(t, err)
	require.Contains(t, out, "packet 0: offset=0 uuid=deadbeef-0000-0000-0000-000000000000")
	require.Contains(t, out, "packet 1: offset=128")
	require.Contains(t, out, "/* schema */ trace { };")

	out, _, err = run(t, "metadata", "--headers", path)
	require.NoError(t, err)
	require.NotContains(t, out, "trace {")

	plain := writeFile(t, dir, "plain", []byte("/* CTF 1.8 */\ntrace {};"))
	out, _, err = run(t, "metadata", plain)
	require.NoError(t, err)
	require.Contains(t, out, "plain text metadata")
	require.Contains(t, out, "trace {};")

	data[0] = 0
	broken := writeFile(t, dir, "broken", data)
	_, _, err = run(t, "metadata", broken)
	require.ErrorIs(t, err, errs.ErrUnsupportedMetadataPacket)
}

func TestArchiveCommand(t *testing.T) {
	dir := workdir(t)
	schemaPath := writeFile(t, dir, "trace.yaml", []byte(cliSchema))

	for _, typ := range []string{"zstd", "s2", "lz4"} {
		t.Run(typ, func(t *testing.T) {
			stream := writeFile(t, dir, "chan_"+typ, append(tickPacket(1, 1, 2), tickPacket(5, 3)...))

			_, _, err := run(t, "archive", "-t", typ, stream)
			require.NoError(t, err)
			require.NoFileExists(t, stream)

			matches, err := filepath.Glob(stream + ".*")
			require.NoError(t, err)
			require.Len(t, matches, 1)

			out, _, err := run(t, "events", "-s", schemaPath, matches[0])
			require.NoError(t, err)
			require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
			require.Contains(t, out, "[chan_"+typ+"]")
		})
	}

	t.Run("keep", func(t *testing.T) {
		stream := writeFile(t, dir, "kept", tickPacket(1, 1))
		_, _, err := run(t, "archive", "--keep", stream)
		require.NoError(t, err)
		require.FileExists(t, stream)
		require.FileExists(t, stream+".zst")
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := run(t, "archive", "-t", "gzip", filepath.Join(dir, "x"))
		require.Error(t, err)

		_, _, err = run(t, "archive", filepath.Join(dir, "missing"))
		require.Error(t, err)
	})
}

func TestPrinter_NonFiniteFloats(t *testing.T) {
	payload := value.NewStruct(3)
	payload.Append("nan", value.NewFloat(math.NaN(), 64))
	payload.Append("pos", value.NewFloat(math.Inf(1), 64))
	payload.Append("neg", value.NewFloat(math.Inf(-1), 32))

	pk := &packet.Packet{
		Offset: 0,
		Events: []packet.EventRecord{{Name: "sample", Payload: payload}},
	}

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, newPrinter(&out, "json").WritePacket(context.Background(), "s", pk))

		var ev struct {
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &ev))
		require.Equal(t, map[string]string{"nan": "NaN", "pos": "+Inf", "neg": "-Inf"}, ev.Payload)
	})

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, newPrinter(&out, "text").WritePacket(context.Background(), "s", pk))
		require.Contains(t, out.String(), "NaN")
		require.Contains(t, out.String(), "Inf")
	})
}
