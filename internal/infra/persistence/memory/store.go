// Package memory provides the in-memory transactional implementation of the
// domain state store. All state lives in process memory; nothing is persisted.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"placementhub/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain store interface.
var _ domain.StateStore = (*Store)(nil)

type (
	// User aliases domain.User for in-memory state operations.
	User = domain.User
	// Student aliases domain.Student.
	Student = domain.Student
	// Internship aliases domain.Internship.
	Internship = domain.Internship
	// Application aliases domain.Application.
	Application = domain.Application
	// LogbookEntry aliases domain.LogbookEntry.
	LogbookEntry = domain.LogbookEntry
	// Notification aliases domain.Notification.
	Notification = domain.Notification
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// memoryState keeps every collection newest-first.
type memoryState struct {
	session       *User
	students      []Student
	internships   []Internship
	applications  []Application
	logbook       []LogbookEntry
	notifications []Notification
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Session        *User          `json:"session,omitempty" yaml:"session,omitempty"`
	Students       []Student      `json:"students" yaml:"students"`
	Internships    []Internship   `json:"internships" yaml:"internships"`
	Applications   []Application  `json:"applications" yaml:"applications"`
	LogbookEntries []LogbookEntry `json:"logbook_entries" yaml:"logbook_entries"`
	Notifications  []Notification `json:"notifications" yaml:"notifications"`
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		students:      cloneSlice(s.students, cloneStudent),
		internships:   cloneSlice(s.internships, cloneInternship),
		applications:  cloneSlice(s.applications, cloneApplication),
		logbook:       cloneSlice(s.logbook, cloneLogbookEntry),
		notifications: cloneSlice(s.notifications, cloneNotification),
	}
	if s.session != nil {
		u := *s.session
		cloned.session = &u
	}
	return cloned
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	cloned := state.clone()
	return Snapshot{
		Session:        cloned.session,
		Students:       cloned.students,
		Internships:    cloned.internships,
		Applications:   cloned.applications,
		LogbookEntries: cloned.logbook,
		Notifications:  cloned.notifications,
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := memoryState{
		session:       s.Session,
		students:      s.Students,
		internships:   s.Internships,
		applications:  s.Applications,
		logbook:       s.LogbookEntries,
		notifications: s.Notifications,
	}
	return state.clone()
}

// Store provides an in-memory transactional store for the placement domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an empty in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  memoryState{},
		engine: engine,
		nowFn:  time.Now,
	}
}

// RulesEngine exposes the engine evaluated at commit time.
func (s *Store) RulesEngine() *RulesEngine { return s.engine }

// NowFunc exposes the store clock so the service can share it.
func (s *Store) NowFunc() func() time.Time { return s.nowFn }

// ImportState replaces the store contents with a clone of the snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// ExportState returns a deep copy of the current store contents.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// RunInTransaction executes fn against a private copy of the state and
// publishes it only when fn succeeds and no blocking rule violation occurs.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil && len(tx.changes) > 0 {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, fmt.Errorf("evaluate rules: %w", err)
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *transaction) Session() (User, bool) {
	if tx.state.session == nil {
		return User{}, false
	}
	return *tx.state.session, true
}

func (tx *transaction) SetSession(u User) {
	var before any
	if tx.state.session != nil {
		before = *tx.state.session
	}
	tx.state.session = &u
	tx.recordChange(Change{Entity: domain.EntitySession, Action: domain.ActionUpdate, Before: before, After: u})
}

func (tx *transaction) ClearSession() bool {
	if tx.state.session == nil {
		return false
	}
	before := *tx.state.session
	tx.state.session = nil
	tx.recordChange(Change{Entity: domain.EntitySession, Action: domain.ActionDelete, Before: before})
	return true
}

func (tx *transaction) PrependStudent(st Student) Student {
	tx.state.students = prepend(tx.state.students, cloneStudent(st))
	tx.recordChange(Change{Entity: domain.EntityStudent, Action: domain.ActionCreate, After: cloneStudent(st)})
	return cloneStudent(st)
}

func (tx *transaction) UpdateStudent(id string, mutator func(*Student) error) (Student, error) {
	return updateMatching(tx, domain.EntityStudent, tx.state.students, id,
		func(st Student) string { return st.ID }, cloneStudent, mutator)
}

func (tx *transaction) PrependInternship(in Internship) Internship {
	tx.state.internships = prepend(tx.state.internships, cloneInternship(in))
	tx.recordChange(Change{Entity: domain.EntityInternship, Action: domain.ActionCreate, After: cloneInternship(in)})
	return cloneInternship(in)
}

func (tx *transaction) UpdateInternship(id string, mutator func(*Internship) error) (Internship, error) {
	return updateMatching(tx, domain.EntityInternship, tx.state.internships, id,
		func(in Internship) string { return in.ID }, cloneInternship, mutator)
}

func (tx *transaction) PrependApplication(app Application) Application {
	tx.state.applications = prepend(tx.state.applications, app)
	tx.recordChange(Change{Entity: domain.EntityApplication, Action: domain.ActionCreate, After: app})
	return app
}

func (tx *transaction) UpdateApplication(id string, mutator func(*Application) error) (Application, error) {
	return updateMatching(tx, domain.EntityApplication, tx.state.applications, id,
		func(a Application) string { return a.ID }, cloneApplication, mutator)
}

func (tx *transaction) PrependLogbookEntry(e LogbookEntry) LogbookEntry {
	tx.state.logbook = prepend(tx.state.logbook, cloneLogbookEntry(e))
	tx.recordChange(Change{Entity: domain.EntityLogbookEntry, Action: domain.ActionCreate, After: cloneLogbookEntry(e)})
	return cloneLogbookEntry(e)
}

func (tx *transaction) UpdateLogbookEntry(id string, mutator func(*LogbookEntry) error) (LogbookEntry, error) {
	return updateMatching(tx, domain.EntityLogbookEntry, tx.state.logbook, id,
		func(e LogbookEntry) string { return e.ID }, cloneLogbookEntry, mutator)
}

func (tx *transaction) PrependNotification(n Notification) Notification {
	tx.state.notifications = prepend(tx.state.notifications, n)
	tx.recordChange(Change{Entity: domain.EntityNotification, Action: domain.ActionCreate, After: n})
	return n
}

func (tx *transaction) UpdateNotification(id string, mutator func(*Notification) error) (Notification, error) {
	return updateMatching(tx, domain.EntityNotification, tx.state.notifications, id,
		func(n Notification) string { return n.ID }, cloneNotification, mutator)
}

func (tx *transaction) UpdateAllNotifications(mutator func(*Notification)) int {
	for i := range tx.state.notifications {
		before := tx.state.notifications[i]
		mutator(&tx.state.notifications[i])
		tx.recordChange(Change{Entity: domain.EntityNotification, Action: domain.ActionUpdate, Before: before, After: tx.state.notifications[i]})
	}
	return len(tx.state.notifications)
}

func (tx *transaction) FindStudent(id string) (Student, bool) {
	return tx.Snapshot().FindStudent(id)
}

func (tx *transaction) FindInternship(id string) (Internship, bool) {
	return tx.Snapshot().FindInternship(id)
}

func (tx *transaction) FindApplication(id string) (Application, bool) {
	return tx.Snapshot().FindApplication(id)
}

// updateMatching applies mutator to every record carrying id, since ids are
// not deduplicated on insert. The first updated record is returned.
func updateMatching[T any](tx *transaction, entity domain.EntityType, items []T, id string, idOf func(T) string, clone func(T) T, mutator func(*T) error) (T, error) {
	var (
		first T
		found bool
	)
	for i := range items {
		if idOf(items[i]) != id {
			continue
		}
		before := clone(items[i])
		current := clone(items[i])
		if err := mutator(&current); err != nil {
			var zero T
			return zero, err
		}
		items[i] = current
		tx.recordChange(Change{Entity: entity, Action: domain.ActionUpdate, Before: before, After: clone(current)})
		if !found {
			first = clone(current)
			found = true
		}
	}
	if !found {
		var zero T
		return zero, domain.ErrNotFound{Entity: entity, ID: id}
	}
	return first, nil
}

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}
