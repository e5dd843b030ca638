package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/cruisectl/internal/acc"
	"github.com/san-kum/cruisectl/internal/episode"
)

var ErrBadTrace = errors.New("storage: bad trace file")

var Header = []string{
	"timestep",
	"time_elapsed",
	"ego_velocity",
	"desired_speed",
	"distance_to_lead",
	"lead_speed",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteTrace writes the header and one record per row. An absent gap is an
// empty field.
func WriteTrace(w io.Writer, tr *episode.Trace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	for i, row := range tr.Rows {
		gap := ""
		if d, ok := row.DistanceToLead.Distance(); ok {
			gap = formatFloat(d)
		}
		record := []string{
			strconv.Itoa(i),
			formatFloat(tr.Time(i)),
			formatFloat(row.EgoVelocity),
			formatFloat(row.TargetSpeed),
			gap,
			formatFloat(row.LeadVelocity),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteTraceFile(path string, tr *episode.Trace) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	if err := WriteTrace(f, tr); err != nil {
		f.Close()
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write trace %s: %w", path, err)
	}
	return nil
}

// ReadTrace parses a trace written by WriteTrace. Commands are not part of
// the file, so the returned trace has none. Dt is recovered from the second
// row's elapsed time.
func ReadTrace(r io.Reader) (*episode.Trace, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTrace, err)
	}
	if len(records) == 0 || strings.Join(records[0], ",") != strings.Join(Header, ",") {
		return nil, fmt.Errorf("%w: missing header", ErrBadTrace)
	}

	tr := &episode.Trace{Rows: make([]episode.TraceRow, 0, len(records)-1)}
	for i, rec := range records[1:] {
		vals := make([]float64, len(rec))
		for j, field := range rec {
			if j == 4 && field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrBadTrace, i+2, Header[j], err)
			}
			vals[j] = v
		}

		gap := acc.NoLead()
		if rec[4] != "" {
			gap = acc.LeadAt(vals[4])
		}
		tr.Rows = append(tr.Rows, episode.TraceRow{
			EgoVelocity:    vals[2],
			TargetSpeed:    vals[3],
			DistanceToLead: gap,
			LeadVelocity:   vals[5],
		})
		if i == 1 {
			tr.Dt = vals[1]
		}
	}
	return tr, nil
}

func ReadTraceFile(path string) (*episode.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, err := ReadTrace(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Base(path)
	tr.Name = strings.TrimPrefix(strings.TrimSuffix(base, filepath.Ext(base)), "episode-")
	return tr, nil
}
