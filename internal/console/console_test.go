package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminalWritesMarkersWithoutColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	term := New(&buf)

	term.Info("connecting")
	term.Success("done")
	term.Warning("careful")
	term.Error("broken")
	term.Plain("  - stalls")

	require.Equal(t, "ℹ️  connecting\n✅ done\n⚠️  careful\n❌ broken\n  - stalls\n", buf.String())
	require.NotContains(t, buf.String(), "\x1b[")
}

func TestTerminalBanner(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Banner("Database Migration Script")

	lines := bytes.Split(bytes.TrimSuffix(buf.Bytes(), []byte("\n")), []byte("\n"))
	require.Len(t, lines, 3)
	require.Len(t, lines[0], 60)
	require.Equal(t, "Database Migration Script", string(lines[1]))
}

func TestRecorderFiltersByLevel(t *testing.T) {
	var rec Recorder
	rec.Warning("one")
	rec.Info("two")
	rec.Warning("three")

	require.Equal(t, []string{"one", "three"}, rec.Messages(LevelWarning))
	require.Len(t, rec.Entries(), 3)
}
