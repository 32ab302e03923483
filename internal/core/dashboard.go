package core

import (
	"context"
	"sort"
	"strings"

	"placementhub/pkg/domain"
)

// pendingPreviewLimit caps the pending-approval list shown to reviewers.
const pendingPreviewLimit = 5

// DepartmentPlacement counts placed students against a department's total.
type DepartmentPlacement struct {
	Department string `json:"department"`
	Placed     int    `json:"placed"`
	Total      int    `json:"total"`
}

// CollegeStats is the administrator dashboard summary.
type CollegeStats struct {
	TotalStudents     int                   `json:"total_students"`
	Placed            int                   `json:"placed"`
	Interning         int                   `json:"interning"`
	Seeking           int                   `json:"seeking"`
	ActiveInternships int                   `json:"active_internships"`
	PendingLogs       int                   `json:"pending_logs"`
	PendingApprovals  []domain.LogbookEntry `json:"pending_approvals"`
	Departments       []DepartmentPlacement `json:"departments"`
}

// StudentStats is the session student's dashboard summary.
type StudentStats struct {
	Applications   []domain.Application `json:"applications"`
	Active         *domain.Application  `json:"active,omitempty"`
	TotalHours     float64              `json:"total_hours"`
	ApprovedLogs   int                  `json:"approved_logs"`
	TotalLogs      int                  `json:"total_logs"`
	UnreadMessages int                  `json:"unread_notifications"`
}

// CollegeDashboard derives placement statistics from the current state.
func (s *Service) CollegeDashboard(ctx context.Context) (CollegeStats, error) {
	var stats CollegeStats
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		stats = collegeStats(v.ListStudents(), v.ListInternships(), v.ListLogbookEntries())
		return nil
	})
	return stats, err
}

func collegeStats(students []domain.Student, internships []domain.Internship, logs []domain.LogbookEntry) CollegeStats {
	stats := CollegeStats{
		TotalStudents:     len(students),
		ActiveInternships: len(internships),
		PendingApprovals:  []domain.LogbookEntry{},
	}
	byDept := make(map[string]*DepartmentPlacement)
	for _, st := range students {
		switch st.Status {
		case domain.StudentStatusPlaced:
			stats.Placed++
		case domain.StudentStatusInterning:
			stats.Interning++
		case domain.StudentStatusSeeking:
			stats.Seeking++
		}
		dept, ok := byDept[st.Department]
		if !ok {
			dept = &DepartmentPlacement{Department: st.Department}
			byDept[st.Department] = dept
		}
		dept.Total++
		if st.Status == domain.StudentStatusPlaced {
			dept.Placed++
		}
	}
	for _, entry := range logs {
		if entry.Status != domain.LogbookStatusPending {
			continue
		}
		stats.PendingLogs++
		if len(stats.PendingApprovals) < pendingPreviewLimit {
			stats.PendingApprovals = append(stats.PendingApprovals, entry)
		}
	}
	stats.Departments = make([]DepartmentPlacement, 0, len(byDept))
	for _, dept := range byDept {
		stats.Departments = append(stats.Departments, *dept)
	}
	sort.Slice(stats.Departments, func(i, j int) bool {
		return stats.Departments[i].Department < stats.Departments[j].Department
	})
	return stats
}

// StudentDashboard summarises the session user's applications and logbook.
// The outcome is ignored with no_session when nobody is logged in.
func (s *Service) StudentDashboard(ctx context.Context) (StudentStats, domain.Outcome, error) {
	var (
		stats   StudentStats
		outcome = domain.Ignored(domain.ReasonNoSession)
	)
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		user, ok := v.CurrentUser()
		if !ok {
			return nil
		}
		outcome = domain.AppliedOutcome(domain.Result{})
		stats.Applications = []domain.Application{}
		for _, app := range v.ListApplications() {
			if app.StudentID != user.ID {
				continue
			}
			stats.Applications = append(stats.Applications, app)
			if stats.Active == nil && (app.Status == domain.ApplicationStatusAccepted || app.Status == domain.ApplicationStatusShortlisted) {
				active := app
				stats.Active = &active
			}
		}
		for _, entry := range v.ListLogbookEntries() {
			stats.TotalLogs++
			stats.TotalHours += entry.Hours
			if entry.Status == domain.LogbookStatusApproved {
				stats.ApprovedLogs++
			}
		}
		for _, n := range v.ListNotifications() {
			if !n.Read {
				stats.UnreadMessages++
			}
		}
		return nil
	})
	return stats, outcome, err
}

// SearchStudents matches term case-insensitively against name or department.
// The term is used as given, so surrounding spaces take part in the match. An
// empty term returns every student.
func (s *Service) SearchStudents(ctx context.Context, term string) ([]domain.Student, error) {
	students, err := s.Students(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	if needle == "" {
		return students, nil
	}
	out := make([]domain.Student, 0, len(students))
	for _, st := range students {
		if strings.Contains(strings.ToLower(st.Name), needle) || strings.Contains(strings.ToLower(st.Department), needle) {
			out = append(out, st)
		}
	}
	return out, nil
}

// CandidatesFor lists the applications filed against one internship.
func (s *Service) CandidatesFor(ctx context.Context, internshipID string) ([]domain.Application, error) {
	apps, err := s.Applications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Application, 0, len(apps))
	for _, app := range apps {
		if app.InternshipID == internshipID {
			out = append(out, app)
		}
	}
	return out, nil
}
