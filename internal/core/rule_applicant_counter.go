package core

import (
	"context"
	"fmt"

	"placementhub/pkg/domain"
)

// NewApplicantCounterRule returns the rule flagging negative applicant counters.
// It only warns: a negative count comes from caller-built or seeded records and
// never stops an operation.
func NewApplicantCounterRule() domain.Rule {
	return applicantCounterRule{}
}

type applicantCounterRule struct{}

func (applicantCounterRule) Name() string { return "applicant_counter" }

func (r applicantCounterRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityInternship {
			continue
		}
		internship, ok := change.After.(domain.Internship)
		if !ok || internship.Applicants >= 0 {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("internship %s (%s) has negative applicant count %d", internship.Title, internship.ID, internship.Applicants),
			Entity:   domain.EntityInternship,
			EntityID: internship.ID,
		})
	}
	return res, nil
}
