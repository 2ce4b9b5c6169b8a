package report

import (
	"testing"
	"time"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/canvas"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/lateness"
)

func strptr(s string) *string { return &s }

func testResult(t *testing.T) *lateness.Result {
	t.Helper()

	students := []canvas.Student{
		{ID: 1, SISUserID: "10866435", Name: "Alyssa Hacker", SortableName: "Hacker, Alyssa"},
		{ID: 2, SISUserID: "20877546", Name: "Ben Bitdiddle", SortableName: "Bitdiddle, Ben"},
	}
	assignments := []canvas.Assignment{
		{ID: 100, Name: "Problem Set 1", DueAt: strptr("2016-09-12T23:59:00Z")},
		{ID: 200, Name: "Problem Set 2", DueAt: strptr("2016-09-15T23:59:00Z")},
	}
	submissions := []canvas.Submission{
		{UserID: 1, AssignmentID: 100, SubmittedAt: strptr("2016-09-13T20:04:45Z")},
		{UserID: 1, AssignmentID: 200, SubmittedAt: strptr("2016-09-03T17:52:31Z")},
		{UserID: 2, AssignmentID: 100, SubmittedAt: nil},
		{UserID: 2, AssignmentID: 200, SubmittedAt: nil},
	}
	res, err := lateness.Aggregate(students, assignments, submissions)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	return res
}

func TestParseDisplayField(t *testing.T) {
	tests := []struct {
		in      string
		want    DisplayField
		wantErr bool
	}{
		{"id", DisplayID, false},
		{"name", DisplayName, false},
		{" Name ", DisplayName, false},
		{"huid", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDisplayField(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDisplayField(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDisplayField(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDisplayField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeltaSheetShape(t *testing.T) {
	rep := Assemble(testResult(t), Options{CourseID: "39"})
	sheet := rep.DeltaSheet

	if sheet.Name != "Delta Sheet" {
		t.Errorf("sheet name = %q", sheet.Name)
	}
	// 2 header rows + 2 student rows
	if len(sheet.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(sheet.Rows))
	}
	// 1 label column + 3 columns per assignment
	for i, row := range sheet.Rows {
		if len(row) != 7 {
			t.Errorf("row %d has %d cells, want 7", i, len(row))
		}
	}

	// Assignment header spans its first column; sub-headers follow
	if got := sheet.Rows[0][1].Value; got != "Problem Set 1 (100)" {
		t.Errorf("assignment header = %v", got)
	}
	if sheet.Rows[0][1].Style != StyleHeader {
		t.Error("assignment header should be styled as a header")
	}
	if got := sheet.Rows[1][1].Value; got != "Due" {
		t.Errorf("sub-header = %v, want Due", got)
	}
	if got := sheet.Rows[1][3].Value; got != "Delta (seconds)" {
		t.Errorf("sub-header = %v, want Delta (seconds)", got)
	}

	// Corner labels are right-aligned
	if sheet.Rows[0][0].Style != StyleCorner || sheet.Rows[1][0].Style != StyleCorner {
		t.Error("corner labels should use the corner style")
	}
}

func TestDeltaSheetValuesAndStyles(t *testing.T) {
	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	rep := Assemble(testResult(t), Options{CourseID: "39", Location: est})
	sheet := rep.DeltaSheet

	alyssa := sheet.Rows[2]
	if alyssa[0].Value != "10866435" {
		t.Errorf("default label = %v, want the HUID", alyssa[0].Value)
	}

	// Due 2016-09-12T23:59:00Z is 7:59PM EDT
	if alyssa[1].Value != "Mon, Sep 12 at 07:59PM" {
		t.Errorf("due display = %v", alyssa[1].Value)
	}
	if alyssa[2].Value != "Tue, Sep 13 at 04:04PM" {
		t.Errorf("submitted display = %v", alyssa[2].Value)
	}
	if alyssa[3].Value != int64(72345) {
		t.Errorf("delta = %v, want 72345", alyssa[3].Value)
	}
	if alyssa[3].Style != StyleLate {
		t.Error("positive delta should carry the late style")
	}
	if alyssa[6].Value != int64(-1058789) {
		t.Errorf("delta = %v, want -1058789", alyssa[6].Value)
	}
	if alyssa[6].Style != StyleEarly {
		t.Error("negative delta should carry the early style")
	}

	// Ben never submitted: submitted and delta cells are blank, the due
	// date still renders
	ben := sheet.Rows[3]
	if ben[1].Value == nil {
		t.Error("due cell should render even without a submission")
	}
	if ben[2].Value != nil || ben[3].Value != nil {
		t.Errorf("expected blank cells for a missing submission, got %v / %v", ben[2].Value, ben[3].Value)
	}
}

func TestDisplayFieldSwitchesLabels(t *testing.T) {
	rep := Assemble(testResult(t), Options{CourseID: "39", Display: DisplayName})

	if got := rep.DeltaSheet.Rows[2][0].Value; got != "Hacker, Alyssa" {
		t.Errorf("label = %v, want sortable name", got)
	}
	if got := rep.LatenessSheet.Rows[1][0].Value; got != "Hacker, Alyssa" {
		t.Errorf("lateness sheet label = %v, want sortable name", got)
	}
	if _, ok := rep.Snapshot.Students["Hacker, Alyssa"]; !ok {
		t.Error("snapshot should be keyed by the display label")
	}
}

func TestLatenessSheet(t *testing.T) {
	rep := Assemble(testResult(t), Options{CourseID: "39"})
	sheet := rep.LatenessSheet

	if sheet.Name != "Lateness Sheet" {
		t.Errorf("sheet name = %q", sheet.Name)
	}
	if len(sheet.Rows) != 3 {
		t.Fatalf("rows = %d, want header + 2 students", len(sheet.Rows))
	}
	header := sheet.Rows[0]
	if header[0].Value != "Students" || header[1].Value != "Total in hours" || header[2].Value != "Total in seconds" {
		t.Errorf("header = %v", header)
	}

	alyssa := sheet.Rows[1]
	if alyssa[2].Value != int64(72345) {
		t.Errorf("total seconds = %v, want 72345", alyssa[2].Value)
	}
	hours, ok := alyssa[1].Value.(float64)
	if !ok || hours < 20.0 || hours > 20.2 {
		t.Errorf("total hours = %v, want ~20.1", alyssa[1].Value)
	}
	if alyssa[2].Style != StyleLate {
		t.Error("a positive total should carry the late style")
	}

	ben := sheet.Rows[2]
	if ben[2].Value != int64(0) {
		t.Errorf("total seconds = %v, want 0", ben[2].Value)
	}
	if ben[2].Style != StyleEarly {
		t.Error("a zero total should carry the early style")
	}
}

func TestSnapshot(t *testing.T) {
	now := time.Date(2016, 9, 20, 12, 0, 0, 0, time.UTC)
	rep := Assemble(testResult(t), Options{CourseID: "39", Now: now})
	snap := rep.Snapshot

	if snap.CourseID != "39" {
		t.Errorf("course id = %q", snap.CourseID)
	}
	if snap.RunID == "" {
		t.Error("run id should be set")
	}
	if !snap.GeneratedAt.Equal(now) {
		t.Errorf("generated at = %v, want %v", snap.GeneratedAt, now)
	}
	if snap.StudentLabel != "id" {
		t.Errorf("student label = %q, want id", snap.StudentLabel)
	}

	entries, ok := snap.Students["10866435"]
	if !ok {
		t.Fatalf("missing student entry, have %v", snap.Students)
	}
	entry, ok := entries["Problem Set 1 (100)"]
	if !ok {
		t.Fatalf("missing assignment entry, have %v", entries)
	}
	if entry.Due != "2016-09-12T23:59:00Z" {
		t.Errorf("due = %q", entry.Due)
	}
	if entry.Submitted != "2016-09-13T20:04:45Z" {
		t.Errorf("submitted = %q", entry.Submitted)
	}
	if entry.Delta == nil || *entry.Delta != 72345 {
		t.Errorf("delta = %v, want 72345", entry.Delta)
	}

	// Missing submission: empty submitted, null delta
	benEntry := snap.Students["20877546"]["Problem Set 1 (100)"]
	if benEntry.Submitted != "" || benEntry.Delta != nil {
		t.Errorf("missing submission entry = %+v, want blank", benEntry)
	}

	if got := snap.Totals["10866435"].Seconds; got != 72345 {
		t.Errorf("total = %d, want 72345", got)
	}
}

func TestAssembleEmptyResultIsTotal(t *testing.T) {
	res, err := lateness.Aggregate(nil, nil, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	rep := Assemble(res, Options{CourseID: "39"})

	// Header rows still assemble; there is just nothing under them
	if len(rep.DeltaSheet.Rows) != 2 {
		t.Errorf("delta sheet rows = %d, want 2 header rows", len(rep.DeltaSheet.Rows))
	}
	if len(rep.LatenessSheet.Rows) != 1 {
		t.Errorf("lateness sheet rows = %d, want 1 header row", len(rep.LatenessSheet.Rows))
	}
	if len(rep.Snapshot.Students) != 0 {
		t.Errorf("snapshot students = %d, want 0", len(rep.Snapshot.Students))
	}
}
