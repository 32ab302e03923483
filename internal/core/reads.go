package core

import (
	"context"

	"placementhub/pkg/domain"
)

// Snapshot bundles every collection and the session slot as of one instant.
type Snapshot struct {
	User           *domain.User
	Students       []domain.Student
	Internships    []domain.Internship
	Applications   []domain.Application
	LogbookEntries []domain.LogbookEntry
	Notifications  []domain.Notification
}

// Snapshot returns a consistent deep copy of the whole state.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		if u, ok := v.CurrentUser(); ok {
			snap.User = &u
		}
		snap.Students = v.ListStudents()
		snap.Internships = v.ListInternships()
		snap.Applications = v.ListApplications()
		snap.LogbookEntries = v.ListLogbookEntries()
		snap.Notifications = v.ListNotifications()
		return nil
	})
	return snap, err
}

// CurrentUser returns the session user, if any.
func (s *Service) CurrentUser(ctx context.Context) (domain.User, bool, error) {
	var (
		user domain.User
		ok   bool
	)
	err := s.store.View(ctx, func(v domain.TransactionView) error {
		user, ok = v.CurrentUser()
		return nil
	})
	return user, ok, err
}

// Students returns the student collection, newest first.
func (s *Service) Students(ctx context.Context) ([]domain.Student, error) {
	return viewList(ctx, s.store, domain.TransactionView.ListStudents)
}

// Internships returns the internship collection, newest first.
func (s *Service) Internships(ctx context.Context) ([]domain.Internship, error) {
	return viewList(ctx, s.store, domain.TransactionView.ListInternships)
}

// Applications returns the application collection, newest first.
func (s *Service) Applications(ctx context.Context) ([]domain.Application, error) {
	return viewList(ctx, s.store, domain.TransactionView.ListApplications)
}

// LogbookEntries returns the logbook, newest first.
func (s *Service) LogbookEntries(ctx context.Context) ([]domain.LogbookEntry, error) {
	return viewList(ctx, s.store, domain.TransactionView.ListLogbookEntries)
}

// Notifications returns the notifications, newest first.
func (s *Service) Notifications(ctx context.Context) ([]domain.Notification, error) {
	return viewList(ctx, s.store, domain.TransactionView.ListNotifications)
}

func viewList[T any](ctx context.Context, store domain.StateStore, list func(domain.TransactionView) []T) ([]T, error) {
	var out []T
	err := store.View(ctx, func(v domain.TransactionView) error {
		out = list(v)
		return nil
	})
	return out, err
}
