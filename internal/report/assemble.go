package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/canvas"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/lateness"
	"github.com/google/uuid"
)

// displayTimeLayout is the localized form used for due and submitted
// timestamps on the delta sheet, e.g. "Tue, Sep 13 at 08:04PM".
const displayTimeLayout = "Mon, Jan 02 at 03:04PM"

// deltaHeader is the sub-header above each delta column.
const deltaHeader = "Delta (seconds)"

// minLabelWidth keeps the student column readable even for short labels.
const minLabelWidth = 12

// Options configures assembly. Zero values mean: label by HUID, format
// timestamps in UTC, stamp the snapshot with the current time.
type Options struct {
	CourseID string
	Display  DisplayField

	// Location is the zone used for display timestamps.
	Location *time.Location

	// Now overrides the snapshot generation time, for tests.
	Now time.Time
}

// Assemble shapes an aggregated result into the two sheet matrices and
// the JSON snapshot.
func Assemble(res *lateness.Result, opts Options) *Report {
	if opts.Display == "" {
		opts.Display = DisplayID
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	rep := &Report{
		DeltaSheet:    assembleDeltaSheet(res, opts),
		LatenessSheet: assembleLatenessSheet(res, opts),
		Snapshot:      assembleSnapshot(res, opts),
	}
	return rep
}

// assembleDeltaSheet builds the per-assignment matrix: one three-column
// group (Due, Submitted, Delta) per eligible assignment, one row per
// student.
func assembleDeltaSheet(res *lateness.Result, opts Options) Sheet {
	sheet := Sheet{Name: "Delta Sheet"}

	assignmentRow := []Cell{{Value: "Assignment →", Style: StyleCorner}}
	headerRow := []Cell{{Value: "Students ↓", Style: StyleCorner}}
	widths := []float64{labelWidth(res, opts.Display)}
	for _, col := range res.Columns {
		assignmentRow = append(assignmentRow,
			Cell{Value: assignmentLabel(col), Style: StyleHeader}, Cell{}, Cell{})
		headerRow = append(headerRow,
			Cell{Value: "Due", Style: StyleHeader},
			Cell{Value: "Submitted", Style: StyleHeader},
			Cell{Value: deltaHeader, Style: StyleHeader})
		dateWidth := float64(max(len(col.DueAtRaw), len(displayTimeLayout)))
		widths = append(widths, dateWidth, dateWidth, float64(len(deltaHeader)))
	}
	sheet.Rows = append(sheet.Rows, assignmentRow, headerRow)
	sheet.ColWidths = widths

	for _, row := range res.Rows {
		cells := []Cell{{Value: studentLabel(row.Student, opts.Display)}}
		for i, col := range res.Columns {
			cells = append(cells, Cell{Value: col.DueAt.In(opts.Location).Format(displayTimeLayout)})
			cell := row.Cells[i]
			if cell.SubmittedAt != nil {
				cells = append(cells, Cell{Value: cell.SubmittedAt.In(opts.Location).Format(displayTimeLayout)})
			} else {
				cells = append(cells, Cell{})
			}
			if cell.DeltaSeconds != nil {
				cells = append(cells, Cell{Value: *cell.DeltaSeconds, Style: deltaStyle(*cell.DeltaSeconds)})
			} else {
				cells = append(cells, Cell{})
			}
		}
		sheet.Rows = append(sheet.Rows, cells)
	}
	return sheet
}

// assembleLatenessSheet builds the cumulative totals matrix: one row
// per student with total hours and total seconds.
func assembleLatenessSheet(res *lateness.Result, opts Options) Sheet {
	sheet := Sheet{
		Name: "Lateness Sheet",
		Rows: [][]Cell{{
			{Value: "Students", Style: StyleHeader},
			{Value: "Total in hours", Style: StyleHeader},
			{Value: "Total in seconds", Style: StyleHeader},
		}},
		ColWidths: []float64{labelWidth(res, opts.Display)},
	}
	for _, row := range res.Rows {
		sheet.Rows = append(sheet.Rows, []Cell{
			{Value: studentLabel(row.Student, opts.Display)},
			{Value: row.TotalHours, Style: deltaStyle(row.TotalSeconds)},
			{Value: row.TotalSeconds, Style: deltaStyle(row.TotalSeconds)},
		})
	}
	return sheet
}

// assembleSnapshot builds the nested student → assignment → entry
// mapping for the JSON sink.
func assembleSnapshot(res *lateness.Result, opts Options) Snapshot {
	snap := Snapshot{
		CourseID:     opts.CourseID,
		RunID:        uuid.NewString(),
		GeneratedAt:  opts.Now,
		StudentLabel: string(opts.Display),
		Students:     make(map[string]map[string]SnapshotEntry, len(res.Rows)),
		Totals:       make(map[string]SnapshotTotal, len(res.Rows)),
	}
	for _, row := range res.Rows {
		label := studentLabel(row.Student, opts.Display)
		entries := make(map[string]SnapshotEntry, len(res.Columns))
		for i, col := range res.Columns {
			entries[assignmentLabel(col)] = SnapshotEntry{
				Due:       col.DueAtRaw,
				Submitted: row.Cells[i].SubmittedAtRaw,
				Delta:     row.Cells[i].DeltaSeconds,
			}
		}
		snap.Students[label] = entries
		snap.Totals[label] = SnapshotTotal{Seconds: row.TotalSeconds, Hours: row.TotalHours}
	}
	return snap
}

// deltaStyle picks the styling hint by delta sign: strictly positive is
// late, zero or negative is on time or early.
func deltaStyle(seconds int64) CellStyle {
	if seconds > 0 {
		return StyleLate
	}
	return StyleEarly
}

// assignmentLabel renders a column header, e.g. "Problem Set 1 (4567)".
func assignmentLabel(col lateness.Column) string {
	return fmt.Sprintf("%s (%d)", col.Name, col.AssignmentID)
}

// studentLabel renders a student's row label per the display field.
// A missing HUID falls back to the Canvas numeric ID so the row still
// identifies the student.
func studentLabel(s canvas.Student, field DisplayField) string {
	switch field {
	case DisplayName:
		if s.SortableName != "" {
			return s.SortableName
		}
		return s.Name
	default:
		if s.SISUserID != "" {
			return s.SISUserID
		}
		return strconv.FormatInt(s.ID, 10)
	}
}

// labelWidth returns the width hint for the student column.
func labelWidth(res *lateness.Result, field DisplayField) float64 {
	width := minLabelWidth
	for _, row := range res.Rows {
		width = max(width, len(studentLabel(row.Student, field)))
	}
	return float64(width)
}
