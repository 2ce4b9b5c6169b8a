// Package lateness computes submission lateness from raw Canvas
// collections. Aggregation is a pure function of its inputs: running it
// twice on the same collections yields identical results.
//
// Delta-seconds is submitted-at minus due-at, in whole seconds, signed:
// positive means late, negative means early. A student's total lateness
// sums only the strictly positive deltas.
package lateness

import (
	"fmt"
	"time"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/canvas"
)

// Column is one eligible assignment in the report. Assignments appear
// in fetch order; ineligible assignments (no due date, or no submission
// records at all) are dropped entirely.
type Column struct {
	AssignmentID int64
	Name         string

	// DueAt is the parsed due date, always in UTC.
	DueAt time.Time

	// DueAtRaw is the ISO string as returned by the API.
	DueAtRaw string
}

// Cell is one (student, assignment) intersection. A nil DeltaSeconds
// means no submission timestamp exists; the cell renders blank.
type Cell struct {
	SubmittedAt    *time.Time
	SubmittedAtRaw string
	DeltaSeconds   *int64
}

// Row is one student with cells parallel to the result's Columns.
// Students with no eligible submissions still get a row, with all
// cells blank and a total of zero.
type Row struct {
	Student      canvas.Student
	Cells        []Cell
	TotalSeconds int64
	TotalHours   float64
}

// Result is the aggregated lateness matrix for one course.
type Result struct {
	Columns []Column
	Rows    []Row
}

// Aggregate computes the lateness matrix and per-student totals from
// raw collections. Students and assignments keep their fetch order; no
// sorting is applied here. An unparseable due or submission timestamp
// is fatal, since the delta has no defined value without both ends.
func Aggregate(students []canvas.Student, assignments []canvas.Assignment, submissions []canvas.Submission) (*Result, error) {
	// Group submissions for lookup. One record per (student, assignment)
	// pair; a duplicate from the API keeps the last record seen.
	hasSubs := make(map[int64]bool)
	byKey := make(map[[2]int64]canvas.Submission)
	for _, sub := range submissions {
		hasSubs[sub.AssignmentID] = true
		byKey[[2]int64{sub.UserID, sub.AssignmentID}] = sub
	}

	res := &Result{}

	// An assignment is eligible only with a non-null due date and at
	// least one matching submission record.
	for _, a := range assignments {
		if a.DueAt == nil || !hasSubs[a.ID] {
			continue
		}
		due, err := parseTimestamp(*a.DueAt)
		if err != nil {
			return nil, fmt.Errorf("assignment %d (%s): parse due_at: %w", a.ID, a.Name, err)
		}
		res.Columns = append(res.Columns, Column{
			AssignmentID: a.ID,
			Name:         a.Name,
			DueAt:        due,
			DueAtRaw:     *a.DueAt,
		})
	}

	for _, s := range students {
		row := Row{Student: s, Cells: make([]Cell, len(res.Columns))}
		for i, col := range res.Columns {
			sub, ok := byKey[[2]int64{s.ID, col.AssignmentID}]
			if !ok || sub.SubmittedAt == nil {
				continue
			}
			submitted, err := parseTimestamp(*sub.SubmittedAt)
			if err != nil {
				return nil, fmt.Errorf("submission for student %d, assignment %d: parse submitted_at: %w",
					s.ID, col.AssignmentID, err)
			}
			delta := int64(submitted.Sub(col.DueAt) / time.Second)
			row.Cells[i] = Cell{
				SubmittedAt:    &submitted,
				SubmittedAtRaw: *sub.SubmittedAt,
				DeltaSeconds:   &delta,
			}
			if delta > 0 {
				row.TotalSeconds += delta
			}
		}
		row.TotalHours = float64(row.TotalSeconds) / 3600
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}

// timestampLayouts are the accepted timestamp forms. Canvas emits
// RFC 3339 with a zone; zone-less timestamps are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
}
