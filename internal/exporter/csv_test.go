package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsepulse/internal/delivery"
)

func TestWriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	err := w.WriteSimpleCSV("out.csv",
		[]string{"a", "b"},
		[][]string{{"1", "2"}, {"3", "4"}})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xef\xbb\xbf"), "expected UTF-8 BOM")
	assert.Contains(t, content, "a,b\n")
	assert.Contains(t, content, "1,2\n")
	assert.Contains(t, content, "3,4\n")
}

func TestStreamWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	sw, err := w.CreateStreamWriter("stream.csv", []string{"x"})
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"1"}))
	require.NoError(t, sw.WriteRecord([]string{"2"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(filepath.Join(dir, "stream.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "x\n1\n2\n")
}

func TestWriteSeriesBlanksUndefined(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	traded := int64(1000)
	rows := []delivery.Row{
		{
			Date:                    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Symbol:                  "ALPHA",
			DeliveryPct:             92.5,
			TradedQty:               &traded,
			HighDelivery:            true,
			ConsecutiveHighDays:     1,
			ConsecutiveIncreaseDays: 1,
		},
	}

	require.NoError(t, w.WriteSeries("ALPHA", rows))

	data, err := os.ReadFile(filepath.Join(dir, "ALPHA_analysis.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	fields := strings.Split(lines[1], ",")
	assert.Equal(t, "15-Jan-2024", fields[0])
	assert.Equal(t, "92.50", fields[1])
	assert.Equal(t, "1000", fields[2])
	// DeliverableQty and Close are undefined and must export as empty, not 0.
	assert.Equal(t, "", fields[3])
	assert.Equal(t, "", fields[4])
	assert.Equal(t, "true", fields[7])
}

func TestWriteSignals(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	mult := 2.5
	signals := []delivery.Signal{
		{
			Date:           time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			DeliveryPct:    95,
			PreviousAvg:    80,
			VolumeMultiple: &mult,
		},
	}

	require.NoError(t, w.WriteSignals("ALPHA", signals))

	data, err := os.ReadFile(filepath.Join(dir, "ALPHA_signals.json"))
	require.NoError(t, err)

	var decoded []delivery.Signal
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, 95.0, decoded[0].DeliveryPct)
	require.NotNil(t, decoded[0].VolumeMultiple)
	assert.Equal(t, 2.5, *decoded[0].VolumeMultiple)
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	snapshot := &delivery.Snapshot{
		Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Groups: map[string][]delivery.SnapshotEntry{
			"EQ": {
				{Symbol: "ALPHA", DeliveryPct: 95.5},
				{Symbol: "BETA", DeliveryPct: 91.0},
			},
		},
	}

	require.NoError(t, w.WriteSnapshot(snapshot))

	data, err := os.ReadFile(filepath.Join(dir, "snapshot_2024-01-15.csv"))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "EQ,ALPHA,95.50\n")
	assert.Contains(t, content, "EQ,BETA,91.00\n")
}
