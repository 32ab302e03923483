package core

import (
	"context"
	"fmt"

	"placementhub/pkg/domain"
)

const (
	maxLogHours = 24
	maxGPA      = 10
)

// NewLogHoursRangeRule warns about logbook entries outside 0..24 hours.
func NewLogHoursRangeRule() domain.Rule {
	return logHoursRangeRule{}
}

type logHoursRangeRule struct{}

func (logHoursRangeRule) Name() string { return "log_hours_range" }

func (r logHoursRangeRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityLogbookEntry || change.Action != domain.ActionCreate {
			continue
		}
		entry, ok := change.After.(domain.LogbookEntry)
		if !ok || (entry.Hours >= 0 && entry.Hours <= maxLogHours) {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("logbook entry %s records %.2f hours", entry.ID, entry.Hours),
			Entity:   domain.EntityLogbookEntry,
			EntityID: entry.ID,
		})
	}
	return res, nil
}

// NewStudentGPARangeRule warns about students created with a GPA outside 0..10.
func NewStudentGPARangeRule() domain.Rule {
	return studentGPARangeRule{}
}

type studentGPARangeRule struct{}

func (studentGPARangeRule) Name() string { return "student_gpa_range" }

func (r studentGPARangeRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityStudent || change.Action != domain.ActionCreate {
			continue
		}
		student, ok := change.After.(domain.Student)
		if !ok || (student.GPA >= 0 && student.GPA <= maxGPA) {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("student %s has gpa %.2f", student.ID, student.GPA),
			Entity:   domain.EntityStudent,
			EntityID: student.ID,
		})
	}
	return res, nil
}
