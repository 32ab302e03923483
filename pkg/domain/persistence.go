package domain

import (
	"context"
	"fmt"
)

// Transaction exposes the domain operations that a state store must support
// within an atomic scope. Mutations apply to a private copy of the state that
// is only published when the transaction commits.
type Transaction interface {
	Snapshot() TransactionView

	Session() (User, bool)
	SetSession(User)
	ClearSession() bool

	PrependStudent(Student) Student
	UpdateStudent(id string, mutator func(*Student) error) (Student, error)

	PrependInternship(Internship) Internship
	UpdateInternship(id string, mutator func(*Internship) error) (Internship, error)

	PrependApplication(Application) Application
	UpdateApplication(id string, mutator func(*Application) error) (Application, error)

	PrependLogbookEntry(LogbookEntry) LogbookEntry
	UpdateLogbookEntry(id string, mutator func(*LogbookEntry) error) (LogbookEntry, error)

	PrependNotification(Notification) Notification
	UpdateNotification(id string, mutator func(*Notification) error) (Notification, error)
	UpdateAllNotifications(mutator func(*Notification)) int

	FindStudent(id string) (Student, bool)
	FindInternship(id string) (Internship, bool)
	FindApplication(id string) (Application, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// readers. Every returned value is a deep copy.
type TransactionView interface {
	CurrentUser() (User, bool)
	ListStudents() []Student
	ListInternships() []Internship
	ListApplications() []Application
	ListLogbookEntries() []LogbookEntry
	ListNotifications() []Notification
	FindStudent(id string) (Student, bool)
	FindInternship(id string) (Internship, bool)
	FindApplication(id string) (Application, bool)
}

// StateStore is the abstraction the service facade depends on.
type StateStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
}

// ErrNotFound is returned by transactional updates addressing an unknown id.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
