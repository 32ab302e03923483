package core

import (
	"context"
	"fmt"

	"placementhub/pkg/domain"
)

// ApplicationTerminalStatusRule blocks moving an application out of Rejected
// or Accepted. It is opt-in; the default engine lets reviewers overwrite any
// status.
func ApplicationTerminalStatusRule() domain.Rule {
	return applicationTerminalStatusRule{}
}

type applicationTerminalStatusRule struct{}

func (applicationTerminalStatusRule) Name() string { return "application_terminal_status" }

func (r applicationTerminalStatusRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityApplication || change.Action != domain.ActionUpdate {
			continue
		}
		before, ok := change.Before.(domain.Application)
		if !ok || !before.Status.Terminal() {
			continue
		}
		after, ok := change.After.(domain.Application)
		if !ok || after.Status == before.Status {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("cannot move application %s from terminal status %s to %s", before.ID, before.Status, after.Status),
			Entity:   domain.EntityApplication,
			EntityID: after.ID,
		})
	}
	return res, nil
}
