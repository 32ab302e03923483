package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"placementhub/internal/infra/persistence/memory"
	"placementhub/pkg/domain"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)

func sequentialIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func demoSnapshot() memory.Snapshot {
	return memory.Snapshot{
		Students: []domain.Student{
			{ID: "s1", Name: "Aditi Sharma", Department: "CS", GPA: 9.2, Status: domain.StudentStatusInterning, Skills: []string{"React"}},
			{ID: "s2", Name: "Rahul Verma", Department: "IT", GPA: 8.5, Status: domain.StudentStatusSeeking},
			{ID: "s3", Name: "Sneha Gupta", Department: "CS", GPA: 9.5, Status: domain.StudentStatusPlaced},
		},
		Internships: []domain.Internship{
			{ID: "1", Title: "Frontend Developer Intern", Company: "TechCorp", Type: "Remote"},
			{ID: "2", Title: "Data Science Intern", Company: "DataWorks", Type: "On-site", Applicants: 4},
		},
		Applications: []domain.Application{
			{ID: "a1", InternshipID: "1", StudentID: "s1", Status: domain.ApplicationStatusApplied},
			{ID: "a2", InternshipID: "2", StudentID: "s2", Status: domain.ApplicationStatusRejected},
		},
		LogbookEntries: []domain.LogbookEntry{
			{ID: "l1", Date: "2024-03-01", Activity: "Setup", Hours: 6, Status: domain.LogbookStatusPending},
			{ID: "l2", Date: "2024-02-28", Activity: "Onboarding", Hours: 4, Status: domain.LogbookStatusApproved},
		},
		Notifications: []domain.Notification{
			{ID: "n0", Title: "Welcome", Type: domain.NotificationInfo},
		},
	}
}

func newTestService(t *testing.T, snapshot memory.Snapshot, opts ...ServiceOption) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore(NewDefaultRulesEngine())
	store.ImportState(snapshot)
	base := []ServiceOption{
		WithClock(ClockFunc(func() time.Time { return fixedNow })),
		WithIDGenerator(sequentialIDs()),
	}
	return NewService(store, append(base, opts...)...), store
}

func mustLogin(t *testing.T, svc *Service, role domain.Role, name string) domain.User {
	t.Helper()
	user, outcome, err := svc.Login(context.Background(), role, name)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("expected login applied, got %+v", outcome)
	}
	return user
}

func findInternship(t *testing.T, snap memory.Snapshot, id string) domain.Internship {
	t.Helper()
	for _, in := range snap.Internships {
		if in.ID == id {
			return in
		}
	}
	t.Fatalf("internship %s not found", id)
	return domain.Internship{}
}

func assertUnchanged(t *testing.T, before, after memory.Snapshot) {
	t.Helper()
	if len(before.Students) != len(after.Students) ||
		len(before.Internships) != len(after.Internships) ||
		len(before.Applications) != len(after.Applications) ||
		len(before.LogbookEntries) != len(after.LogbookEntries) ||
		len(before.Notifications) != len(after.Notifications) {
		t.Fatalf("collection sizes changed: before=%+v after=%+v", before, after)
	}
	for i := range before.Internships {
		if before.Internships[i].Applicants != after.Internships[i].Applicants {
			t.Fatalf("applicant counter changed for %s", before.Internships[i].ID)
		}
	}
}
