package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aphasia-lab/pausa/analysis"
)

// WriteResultsCSV writes the corpus results table to path, one row per
// recording in scan order. The file is rewritten whole on every call so
// intermediate flushes always leave a parseable table behind.
func WriteResultsCSV(path string, results []*FileResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("results csv: create %s: %w", path, err)
	}

	if err := writeResults(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeResults emits the header and rows. Failed recordings keep their
// identity columns with empty metric cells and the error message in the
// last column; nil slots (files never reached before cancellation) are
// skipped.
func writeResults(out io.Writer, results []*FileResult) error {
	w := csv.NewWriter(out)

	reportKeys := analysis.ReportKeys()

	header := []string{"file_path", "file_name", "file_size_mb", "subtype", "total_duration", "num_segments"}
	header = append(header, reportKeys...)
	header = append(header, "error")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("results csv: %w", err)
	}

	row := make([]string, 0, len(header))
	for _, result := range results {
		if result == nil {
			continue
		}

		row = row[:0]
		row = append(row,
			result.Path,
			result.Name,
			formatFloat(result.SizeMB),
			result.Subtype,
		)

		if result.Failed() {
			for i := 0; i < 2+len(reportKeys); i++ {
				row = append(row, "")
			}
			row = append(row, result.Error)
		} else {
			row = append(row,
				formatFloat(result.Duration),
				strconv.Itoa(result.NumSegments),
			)
			for _, key := range reportKeys {
				row = append(row, formatFloat(result.Report[key]))
			}
			row = append(row, "")
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("results csv: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("results csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
