package analysis

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSegmentsCSV(t *testing.T) {
	t.Run("segments become one row each", func(t *testing.T) {
		segments := []PauseSegment{
			{Start: 0.6, End: 0.9, Label: LabelPathological, ZCR: 0.0025, Energy: 5e-5},
			{Start: 1.2, End: 1.5, Label: LabelBreath, ZCR: 1.0, Energy: 0.0025},
		}

		var buf bytes.Buffer
		require.NoError(t, WriteSegmentsCSV(&buf, segments))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, []string{"start", "end", "label", "zcr", "energy"}, records[0])
		assert.Equal(t, []string{"0.6", "0.9", "pathological", "0.0025", "5e-05"}, records[1])
		assert.Equal(t, []string{"1.2", "1.5", "breath", "1", "0.0025"}, records[2])
	})

	t.Run("no segments still writes the header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSegmentsCSV(&buf, nil))

		assert.Equal(t, "start,end,label,zcr,energy\n", buf.String())
	})
}

func TestWriteReportJSON(t *testing.T) {
	report := Report{
		"pathological_pause_rate": 0.15,
		"breath_frequency":        0.5,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReportJSON(&buf, report))

	var decoded map[string]float64
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.InDelta(t, 0.15, decoded["pathological_pause_rate"], 1e-12)
	assert.InDelta(t, 0.5, decoded["breath_frequency"], 1e-12)

	t.Run("output is indented", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(buf.String(), "{\n  \""))
	})
}
