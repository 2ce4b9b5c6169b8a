package lateness

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/canvas"
)

func strptr(s string) *string { return &s }

// Two students, two dated assignments plus one with no due date and one
// with no submissions. Student 1 is late on A and early on B; student 2
// never submitted anything.
func testCollections() ([]canvas.Student, []canvas.Assignment, []canvas.Submission) {
	students := []canvas.Student{
		{ID: 1, SISUserID: "10866435", Name: "Alyssa Hacker", SortableName: "Hacker, Alyssa"},
		{ID: 2, SISUserID: "20877546", Name: "Ben Bitdiddle", SortableName: "Bitdiddle, Ben"},
	}
	assignments := []canvas.Assignment{
		{ID: 100, Name: "Problem Set 1", DueAt: strptr("2016-09-12T23:59:00Z")},
		{ID: 200, Name: "Problem Set 2", DueAt: strptr("2016-09-15T23:59:00Z")},
		{ID: 300, Name: "Ungraded Survey", DueAt: nil},
		{ID: 400, Name: "Final Project", DueAt: strptr("2016-12-15T23:59:00Z")}, // no submissions
	}
	submissions := []canvas.Submission{
		{UserID: 1, AssignmentID: 100, SubmittedAt: strptr("2016-09-13T20:04:45Z"), WorkflowState: "graded"},
		{UserID: 1, AssignmentID: 200, SubmittedAt: strptr("2016-09-03T17:52:31Z"), WorkflowState: "submitted"},
		{UserID: 2, AssignmentID: 100, SubmittedAt: nil, WorkflowState: "unsubmitted"},
		{UserID: 2, AssignmentID: 200, SubmittedAt: nil, WorkflowState: "unsubmitted"},
		{UserID: 1, AssignmentID: 300, SubmittedAt: strptr("2016-09-14T00:00:00Z"), WorkflowState: "submitted"},
	}
	return students, assignments, submissions
}

func TestAggregateDeltas(t *testing.T) {
	res, err := Aggregate(testCollections())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	alyssa := res.Rows[0]

	// Late by 20h 5m 45s
	if got := *alyssa.Cells[0].DeltaSeconds; got != 72345 {
		t.Errorf("delta for assignment 100 = %d, want 72345", got)
	}
	// Early by 12d 6h 6m 29s
	if got := *alyssa.Cells[1].DeltaSeconds; got != -1058789 {
		t.Errorf("delta for assignment 200 = %d, want -1058789", got)
	}
}

func TestAggregateTotalsCountOnlyPositiveDeltas(t *testing.T) {
	res, err := Aggregate(testCollections())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	alyssa := res.Rows[0]
	if alyssa.TotalSeconds != 72345 {
		t.Errorf("total seconds = %d, want 72345 (only the positive delta counts)", alyssa.TotalSeconds)
	}
	if math.Abs(alyssa.TotalHours-20.095833333333335) > 1e-9 {
		t.Errorf("total hours = %v, want ~20.1", alyssa.TotalHours)
	}
}

func TestAggregateStudentWithNoSubmissionsHasZeroTotal(t *testing.T) {
	res, err := Aggregate(testCollections())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	ben := res.Rows[1]
	if ben.TotalSeconds != 0 {
		t.Errorf("total seconds = %d, want 0", ben.TotalSeconds)
	}
	if ben.TotalHours != 0 {
		t.Errorf("total hours = %v, want 0", ben.TotalHours)
	}
	for i, cell := range ben.Cells {
		if cell.DeltaSeconds != nil {
			t.Errorf("cell %d delta = %v, want nil", i, *cell.DeltaSeconds)
		}
		if cell.SubmittedAt != nil {
			t.Errorf("cell %d submitted = %v, want nil", i, cell.SubmittedAt)
		}
	}
}

func TestAggregateEligibility(t *testing.T) {
	res, err := Aggregate(testCollections())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	// 300 has no due date, 400 has no submissions; both must be absent
	if len(res.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(res.Columns))
	}
	for _, col := range res.Columns {
		if col.AssignmentID == 300 {
			t.Error("assignment without a due date must not appear")
		}
		if col.AssignmentID == 400 {
			t.Error("assignment without submissions must not appear")
		}
	}
}

func TestAggregatePreservesFetchOrder(t *testing.T) {
	res, err := Aggregate(testCollections())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if res.Columns[0].AssignmentID != 100 || res.Columns[1].AssignmentID != 200 {
		t.Errorf("column order = [%d %d], want [100 200]",
			res.Columns[0].AssignmentID, res.Columns[1].AssignmentID)
	}
	if res.Rows[0].Student.ID != 1 || res.Rows[1].Student.ID != 2 {
		t.Errorf("row order = [%d %d], want [1 2]",
			res.Rows[0].Student.ID, res.Rows[1].Student.ID)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	students, assignments, submissions := testCollections()

	first, err := Aggregate(students, assignments, submissions)
	if err != nil {
		t.Fatalf("first aggregate: %v", err)
	}
	second, err := Aggregate(students, assignments, submissions)
	if err != nil {
		t.Fatalf("second aggregate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("aggregate is not a pure function of its inputs")
	}
}

func TestAggregateEmptyInputs(t *testing.T) {
	res, err := Aggregate(nil, nil, nil)
	if err != nil {
		t.Fatalf("aggregate of empty inputs: %v", err)
	}
	if len(res.Columns) != 0 || len(res.Rows) != 0 {
		t.Errorf("expected an empty result, got %d columns, %d rows", len(res.Columns), len(res.Rows))
	}
}

func TestAggregateMalformedDueDateIsFatal(t *testing.T) {
	students := []canvas.Student{{ID: 1}}
	assignments := []canvas.Assignment{{ID: 100, Name: "PS1", DueAt: strptr("next tuesday")}}
	submissions := []canvas.Submission{{UserID: 1, AssignmentID: 100, SubmittedAt: strptr("2016-09-13T20:04:45Z")}}

	_, err := Aggregate(students, assignments, submissions)
	if err == nil {
		t.Fatal("expected an error for a malformed due_at")
	}
	if !strings.Contains(err.Error(), "due_at") {
		t.Errorf("error %q should mention due_at", err)
	}
}

func TestAggregateMalformedSubmittedAtIsFatal(t *testing.T) {
	students := []canvas.Student{{ID: 1}}
	assignments := []canvas.Assignment{{ID: 100, Name: "PS1", DueAt: strptr("2016-09-12T23:59:00Z")}}
	submissions := []canvas.Submission{{UserID: 1, AssignmentID: 100, SubmittedAt: strptr("garbage")}}

	_, err := Aggregate(students, assignments, submissions)
	if err == nil {
		t.Fatal("expected an error for a malformed submitted_at")
	}
	if !strings.Contains(err.Error(), "submitted_at") {
		t.Errorf("error %q should mention submitted_at", err)
	}
}

func TestParseTimestampAcceptsZonelessAsUTC(t *testing.T) {
	got, err := parseTimestamp("2016-09-12T23:59:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want, err := parseTimestamp("2016-09-12T23:59:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("zoneless timestamp = %v, want %v", got, want)
	}
}
