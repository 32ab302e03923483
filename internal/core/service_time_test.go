package core

import (
	"context"
	"testing"
	"time"

	"placementhub/internal/infra/persistence/memory"
	"placementhub/pkg/domain"
)

func TestClockFuncNowNilFallsBackToWallClock(t *testing.T) {
	if ClockFunc(nil).Now().IsZero() {
		t.Fatal("expected non-zero time from nil ClockFunc")
	}
}

func TestClockFuncNowDelegatesToFunction(t *testing.T) {
	expected := time.Date(2024, 7, 4, 12, 34, 56, 0, time.FixedZone("offset", -5*3600))
	if got := ClockFunc(func() time.Time { return expected }).Now(); !got.Equal(expected) {
		t.Fatalf("expected %s, got %s", expected, got)
	}
}

func TestExtractRulesEngine(t *testing.T) {
	engine := domain.NewRulesEngine()
	if got := extractRulesEngine(memory.NewStore(engine)); got != engine {
		t.Fatalf("expected engine pointer, got %v", got)
	}
	if extractRulesEngine(bareStore{}) != nil {
		t.Fatal("expected nil for stores without RulesEngine provider")
	}
}

type providerStore struct {
	bareStore
	now func() time.Time
}

func (p providerStore) NowFunc() func() time.Time { return p.now }

func TestSelectNowFuncOrder(t *testing.T) {
	storeTime := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	clockTime := time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)
	store := providerStore{now: func() time.Time { return storeTime }}

	if got := selectNowFunc(store, ClockFunc(func() time.Time { return clockTime }))(); !got.Equal(clockTime) {
		t.Fatalf("expected explicit clock to win, got %s", got)
	}
	if got := selectNowFunc(store, nil)(); !got.Equal(storeTime) {
		t.Fatalf("expected store clock, got %s", got)
	}
	if got := selectNowFunc(providerStore{}, nil)(); got.IsZero() {
		t.Fatalf("expected wall clock fallback")
	}
}

func TestAppliedDateUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	lateEvening := time.Date(2024, 6, 30, 23, 50, 0, 0, loc)
	svc, store := newTestService(t, demoSnapshot(), WithClock(ClockFunc(func() time.Time { return lateEvening })))
	mustLogin(t, svc, domain.RoleStudent, "")
	if _, _, err := svc.ApplyForInternship(context.Background(), "2"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := store.ExportState().Applications[0].AppliedDate; got != "2024-06-30" {
		t.Fatalf("expected local date 2024-06-30, got %s", got)
	}
}
