// Package report shapes aggregated lateness results into the matrices
// and the JSON snapshot consumed by the output sinks. Assembly is a
// pure, total transformation: it never fails on already-aggregated
// data, and it carries only presentation decisions (labels, localized
// timestamps, styling hints by delta sign).
package report

import (
	"fmt"
	"strings"
	"time"
)

// DisplayField selects how student rows are labeled.
type DisplayField string

const (
	// DisplayID labels students by HUID (sis_user_id).
	DisplayID DisplayField = "id"

	// DisplayName labels students by sortable name.
	DisplayName DisplayField = "name"
)

// ParseDisplayField parses a CLI value into a DisplayField.
func ParseDisplayField(s string) (DisplayField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "id":
		return DisplayID, nil
	case "name":
		return DisplayName, nil
	default:
		return "", fmt.Errorf("invalid student_name value: %q (expected id or name)", s)
	}
}

// CellStyle is a styling hint attached to a cell. The sink decides the
// actual rendering; the assembler only decides which hint applies.
type CellStyle int

const (
	// StyleNone is an unstyled value cell.
	StyleNone CellStyle = iota

	// StyleHeader marks bold header cells.
	StyleHeader

	// StyleCorner marks the right-aligned corner labels on the delta sheet.
	StyleCorner

	// StyleLate marks a strictly positive delta (warning rendering).
	StyleLate

	// StyleEarly marks a zero or negative delta (cool rendering).
	StyleEarly
)

// Cell is one typed spreadsheet cell with a styling hint. A nil Value
// renders as a blank cell.
type Cell struct {
	Value any
	Style CellStyle
}

// Sheet is one tabular matrix destined for the spreadsheet sink.
type Sheet struct {
	Name string
	Rows [][]Cell

	// ColWidths holds per-column width hints in characters. Columns
	// beyond the slice use the sink's default width.
	ColWidths []float64
}

// SnapshotEntry is one (student, assignment) record in the JSON
// snapshot. Timestamps are the raw ISO strings from the API; Delta is
// nil when no submission timestamp exists.
type SnapshotEntry struct {
	Due       string `json:"due"`
	Submitted string `json:"submitted"`
	Delta     *int64 `json:"delta"`
}

// SnapshotTotal is one student's lateness total in the JSON snapshot.
type SnapshotTotal struct {
	Seconds int64   `json:"seconds"`
	Hours   float64 `json:"hours"`
}

// Snapshot is the JSON form of the aggregated report, written to a
// separate file from the cache on every run.
type Snapshot struct {
	CourseID     string    `json:"course_id"`
	RunID        string    `json:"run_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	StudentLabel string    `json:"student_label"`

	// Students maps student label to assignment label to entry.
	// Assignment labels are "<name> (<id>)".
	Students map[string]map[string]SnapshotEntry `json:"students"`

	// Totals maps student label to cumulative lateness.
	Totals map[string]SnapshotTotal `json:"totals"`
}

// Report is the assembled output for one run: the two sheet matrices
// plus the JSON snapshot.
type Report struct {
	DeltaSheet    Sheet
	LatenessSheet Sheet
	Snapshot      Snapshot
}
