package memory

import (
	"context"
	"errors"
	"testing"

	"placementhub/pkg/domain"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(nil)
	store.ImportState(Snapshot{
		Students: []Student{
			{ID: "s1", Name: "Aditi", Status: domain.StudentStatusSeeking, Skills: []string{"React"}},
			{ID: "s2", Name: "Rahul", Status: domain.StudentStatusPlaced},
		},
		Internships:   []Internship{{ID: "1", Title: "Frontend", Company: "Acme", Applicants: 2}},
		Applications:  []Application{{ID: "a1", InternshipID: "1", StudentID: "s1", Status: domain.ApplicationStatusApplied}},
		Notifications: []Notification{{ID: "n1", Title: "Welcome"}},
	})
	return store
}

func TestStoreRunInTransactionAndSnapshots(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindInternship("missing"); ok {
			t.Fatalf("expected missing internship lookup")
		}
		tx.PrependInternship(Internship{ID: "1", Title: "Backend"})
		tx.PrependInternship(Internship{ID: "2", Title: "Data"})
		view := tx.Snapshot()
		if len(view.ListInternships()) != 2 {
			t.Fatalf("snapshot mismatch")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}
	snapshot := store.ExportState()
	if len(snapshot.Internships) != 2 || snapshot.Internships[0].ID != "2" {
		t.Fatalf("expected newest-first internships, got %+v", snapshot.Internships)
	}
	store.ImportState(Snapshot{})
	if got := store.ExportState(); len(got.Internships) != 0 {
		t.Fatalf("expected cleared state")
	}
	store.ImportState(snapshot)
	if got := store.ExportState(); len(got.Internships) != 2 {
		t.Fatalf("expected restored state")
	}
	if store.RulesEngine() == nil {
		t.Fatalf("expected rules engine")
	}
	if store.NowFunc() == nil {
		t.Fatalf("expected now func")
	}
}

func TestStoreFailedTransactionLeavesStateUntouched(t *testing.T) {
	store := seededStore(t)
	before := store.ExportState()
	sentinel := errors.New("abort")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.PrependNotification(Notification{ID: "n2"})
		if _, err := tx.UpdateInternship("1", func(in *Internship) error {
			in.Applicants++
			return nil
		}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	after := store.ExportState()
	if len(after.Notifications) != len(before.Notifications) {
		t.Fatalf("notification leaked from aborted transaction")
	}
	if after.Internships[0].Applicants != 2 {
		t.Fatalf("applicant counter leaked from aborted transaction: %d", after.Internships[0].Applicants)
	}
}

func TestStoreRuleViolation(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	store.RulesEngine().Register(blockingRule{})
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.PrependStudent(Student{ID: "s9"})
		return nil
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if len(store.ExportState().Students) != 0 {
		t.Fatalf("blocked transaction must not commit")
	}
}

type blockingRule struct{}

func (blockingRule) Name() string { return "block" }

func (blockingRule) Evaluate(context.Context, domain.TransactionView, []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	res.Merge(domain.Result{Violations: []domain.Violation{{Rule: "block", Severity: domain.SeverityBlock}}})
	return res, nil
}

func TestUpdateMissingRecordReturnsNotFound(t *testing.T) {
	store := seededStore(t)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdateStudent("missing", func(*Student) error { return nil })
		return err
	})
	var nf domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if nf.Entity != domain.EntityStudent || nf.ID != "missing" {
		t.Fatalf("unexpected not found payload: %+v", nf)
	}
}

func TestUpdateAppliesToEveryDuplicateID(t *testing.T) {
	store := NewStore(nil)
	store.ImportState(Snapshot{Internships: []Internship{{ID: "dup", Applicants: 1}, {ID: "dup", Applicants: 5}}})
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		updated, err := tx.UpdateInternship("dup", func(in *Internship) error {
			in.Applicants++
			return nil
		})
		if updated.Applicants != 2 {
			t.Fatalf("expected first match returned, got %d", updated.Applicants)
		}
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got := store.ExportState().Internships
	if got[0].Applicants != 2 || got[1].Applicants != 6 {
		t.Fatalf("expected both duplicates updated, got %+v", got)
	}
}

func TestSessionLifecycleRecordsChanges(t *testing.T) {
	engine := domain.NewRulesEngine()
	capture := &changeCapture{}
	engine.Register(capture)
	store := NewStore(engine)
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if tx.ClearSession() {
			t.Fatalf("expected no session to clear")
		}
		tx.SetSession(User{ID: "s1", Role: domain.RoleStudent})
		return nil
	}); err != nil {
		t.Fatalf("login tx: %v", err)
	}
	if len(capture.changes) != 1 || capture.changes[0].Entity != domain.EntitySession {
		t.Fatalf("expected single session change, got %+v", capture.changes)
	}
	if err := store.View(ctx, func(v domain.TransactionView) error {
		u, ok := v.CurrentUser()
		if !ok || u.ID != "s1" {
			t.Fatalf("expected session user, got %+v", u)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if !tx.ClearSession() {
			t.Fatalf("expected session cleared")
		}
		return nil
	}); err != nil {
		t.Fatalf("logout tx: %v", err)
	}
	if store.ExportState().Session != nil {
		t.Fatalf("expected empty session")
	}
}

type changeCapture struct{ changes []domain.Change }

func (*changeCapture) Name() string { return "capture" }

func (c *changeCapture) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	c.changes = append([]domain.Change(nil), changes...)
	return domain.Result{}, nil
}

func TestViewReturnsDeepCopies(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	if err := store.View(ctx, func(v domain.TransactionView) error {
		students := v.ListStudents()
		students[0].Skills[0] = "mutated"
		students[0].Name = "mutated"
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	got := store.ExportState().Students[0]
	if got.Name != "Aditi" || got.Skills[0] != "React" {
		t.Fatalf("snapshot mutation leaked into store: %+v", got)
	}
}

func TestUpdateAllNotifications(t *testing.T) {
	store := seededStore(t)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.PrependNotification(Notification{ID: "n2"})
		if n := tx.UpdateAllNotifications(func(n *Notification) { n.Read = true }); n != 2 {
			t.Fatalf("expected 2 notifications updated, got %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	for _, n := range store.ExportState().Notifications {
		if !n.Read {
			t.Fatalf("expected %s read", n.ID)
		}
	}
}

func TestCancelledContextSkipsTransaction(t *testing.T) {
	store := seededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := store.RunInTransaction(ctx, func(domain.Transaction) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("expected cancelled context to short-circuit, err=%v called=%v", err, called)
	}
	if err := store.View(ctx, func(domain.TransactionView) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled view, got %v", err)
	}
}
