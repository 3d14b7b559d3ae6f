// Package export writes records and averages as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/movestat/internal/domain/aggregate"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output extension %q", filepath.Ext(path))
	}
}

var playerColumns = []string{"player_id", "trackable_object", "team", "side", "player_name"} //nolint:gochecknoglobals // column order

// RecordHeader is the CSV header for records.
func RecordHeader() []string {
	return append(append([]string{"match_id"}, playerColumns...), aggregate.MetricFields()...)
}

// AveragedHeader is the CSV header for averages.
func AveragedHeader() []string {
	return append(append(append([]string(nil), playerColumns...), "match_count"), aggregate.MetricFields()...)
}

func playerRow(p aggregate.PlayerInfo) []string {
	return []string{strconv.FormatInt(p.PlayerID, 10), string(p.Entity), p.Team, p.Side.String(), p.Name}
}

// metricRow renders the metric columns; undefined speeds are blank.
func metricRow(m aggregate.Metrics) []string {
	fields := aggregate.MetricFields()
	out := make([]string, len(fields))
	for i, f := range fields {
		v, err := m.Value(f)
		if err != nil || v == nil {
			continue
		}
		out[i] = strconv.FormatFloat(*v, 'f', -1, 64)
	}
	return out
}

// WriteRecordsCSV writes records with a header row.
func WriteRecordsCSV(w io.Writer, records []aggregate.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordHeader()); err != nil {
		return err
	}
	for i := range records {
		r := &records[i]
		row := append(append([]string{strconv.FormatInt(r.MatchID, 10)}, playerRow(r.PlayerInfo)...), metricRow(r.Metrics)...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAveragedCSV writes averages with a header row.
func WriteAveragedCSV(w io.Writer, avg []aggregate.Averaged) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AveragedHeader()); err != nil {
		return err
	}
	for i := range avg {
		a := &avg[i]
		row := append(append(playerRow(a.PlayerInfo), strconv.Itoa(a.MatchCount)), metricRow(a.Metrics)...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON. Undefined speeds encode as null.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Bundle is what a run exports.
type Bundle struct {
	Records  []aggregate.Record   `json:"records"`
	Averages []aggregate.Averaged `json:"averages"`
}

// WriteFile writes bundle to path in the format named by its extension.
// CSV output puts the averages next to it as <name>_averages.csv.
func WriteFile(path string, b Bundle) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	switch format {
	case FormatJSON:
		return writeTo(path, func(w io.Writer) error { return WriteJSON(w, b) })
	default:
		if err := writeTo(path, func(w io.Writer) error { return WriteRecordsCSV(w, b.Records) }); err != nil {
			return err
		}
		return writeTo(AveragesPath(path), func(w io.Writer) error { return WriteAveragedCSV(w, b.Averages) })
	}
}

// AveragesPath is the companion CSV path for averages.
func AveragesPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_averages" + ext
}

func writeTo(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
