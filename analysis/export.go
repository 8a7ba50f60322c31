package analysis

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// WriteSegmentsCSV writes one row per pause segment with the columns
// start, end, label, zcr, energy. Floats use the shortest exact
// representation so a re-read reproduces the values bit for bit.
func WriteSegmentsCSV(w io.Writer, segments []PauseSegment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"start", "end", "label", "zcr", "energy"}); err != nil {
		return err
	}
	for _, seg := range segments {
		record := []string{
			formatFloat(seg.Start),
			formatFloat(seg.End),
			string(seg.Label),
			formatFloat(seg.ZCR),
			formatFloat(seg.Energy),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteReportJSON writes the report as indented JSON with keys in
// lexicographic order.
func WriteReportJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
