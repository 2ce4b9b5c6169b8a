package canvas

// Student is one student enrolled in a course, reduced to the fields
// the report needs. Records are immutable once fetched and keyed by
// the Canvas user ID.
type Student struct {
	// ID is the Canvas user ID.
	ID int64 `json:"id"`

	// SISUserID is the institutional identifier (HUID) from the
	// student information system. May be empty for test accounts.
	SISUserID string `json:"sis_user_id"`

	// Name is the display name.
	Name string `json:"name"`

	// SortableName is the "Last, First" form used for labeling.
	SortableName string `json:"sortable_name"`
}

// Assignment is one course assignment.
type Assignment struct {
	// ID is the Canvas assignment ID.
	ID int64 `json:"id"`

	// Name is the assignment title.
	Name string `json:"name"`

	// DueAt is the ISO-8601 due date, or nil when the assignment has
	// no due date. Kept as the raw API string so cache round-trips are
	// byte-faithful; parsing happens at aggregation time.
	DueAt *string `json:"due_at"`
}

// Submission is one student's submission record for one assignment.
// Canvas returns one record per (student, assignment) pair; students
// who never submitted have a record with a nil SubmittedAt.
type Submission struct {
	// UserID is the Canvas user ID of the submitting student.
	UserID int64 `json:"user_id"`

	// AssignmentID is the Canvas assignment ID.
	AssignmentID int64 `json:"assignment_id"`

	// SubmittedAt is the ISO-8601 timestamp of the last submission
	// attempt, or nil when nothing was submitted.
	SubmittedAt *string `json:"submitted_at"`

	// WorkflowState is the Canvas workflow state (submitted, graded,
	// unsubmitted, ...).
	WorkflowState string `json:"workflow_state"`
}
