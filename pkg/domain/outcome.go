package domain

// IgnoreReason explains why an operation performed no effect.
type IgnoreReason string

const (
	ReasonNoSession            IgnoreReason = "no_session"
	ReasonInternshipNotFound   IgnoreReason = "internship_not_found"
	ReasonApplicationNotFound  IgnoreReason = "application_not_found"
	ReasonStudentNotFound      IgnoreReason = "student_not_found"
	ReasonLogbookEntryNotFound IgnoreReason = "logbook_entry_not_found"
	ReasonNotificationNotFound IgnoreReason = "notification_not_found"
	ReasonInvalidStatus        IgnoreReason = "invalid_status"
	ReasonInvalidRole          IgnoreReason = "invalid_role"
	ReasonBlockedByRule        IgnoreReason = "blocked_by_rule"
)

// Outcome reports whether a store operation applied its full effect set or
// was ignored. Ignored operations leave every collection untouched.
type Outcome struct {
	Applied    bool
	Reason     IgnoreReason
	Violations []Violation
}

// AppliedOutcome returns an Outcome for a committed operation.
func AppliedOutcome(res Result) Outcome {
	return Outcome{Applied: true, Violations: res.Violations}
}

// Ignored returns an Outcome for an operation that had no effect.
func Ignored(reason IgnoreReason) Outcome {
	return Outcome{Reason: reason}
}

// Ignored reports whether the operation was a no-op.
func (o Outcome) Ignored() bool { return !o.Applied }
