package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"placementhub/internal/infra/persistence/memory"
	"placementhub/pkg/domain"
)

// Service exposes the placement dashboard operations over a transactional
// state store. Every mutation either applies its full effect set or leaves
// the state untouched and reports why through domain.Outcome.
type Service struct {
	store   domain.StateStore
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	clock   Clock
	now     func() time.Time
	newID   func(prefix string) string
	profile domain.User
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for applied dates and audit timestamps.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithAuditRecorder sets the audit trail sink.
func WithAuditRecorder(rec AuditRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.audit = rec
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer sets the tracer used to wrap every operation.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithIDGenerator overrides generation of application and notification ids.
func WithIDGenerator(fn func(prefix string) string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithDefaultProfile sets the profile template used by Login.
func WithDefaultProfile(profile domain.User) ServiceOption {
	return func(s *Service) {
		s.profile = profile
	}
}

// DefaultProfile is the login template used when none is configured.
var DefaultProfile = domain.User{
	Name:   "Demo User",
	Email:  "demo@placementhub.local",
	Avatar: "https://ui-avatars.com/api/?name=Demo+User",
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.StateStore, opts ...ServiceOption) *Service {
	svc := &Service{
		store:   store,
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		newID:   defaultID,
		profile: DefaultProfile,
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.now = selectNowFunc(store, svc.clock)
	return svc
}

// NewInMemoryService creates a service and in-memory store with the given rules engine.
func NewInMemoryService(engine *domain.RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying state store.
func (s *Service) Store() domain.StateStore {
	return s.store
}

func defaultID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

type nowFuncProvider interface {
	NowFunc() func() time.Time
}

// selectNowFunc prefers an explicit clock, then the store's clock, then the wall clock.
func selectNowFunc(store domain.StateStore, clock Clock) func() time.Time {
	if clock != nil {
		return clock.Now
	}
	if provider, ok := store.(nowFuncProvider); ok {
		if fn := provider.NowFunc(); fn != nil {
			return fn
		}
	}
	return time.Now
}

type rulesEngineProvider interface {
	RulesEngine() *domain.RulesEngine
}

func extractRulesEngine(store domain.StateStore) *domain.RulesEngine {
	if provider, ok := store.(rulesEngineProvider); ok {
		return provider.RulesEngine()
	}
	return nil
}

// RegisterRule adds a rule to the store's engine when the store exposes one.
func (s *Service) RegisterRule(rule domain.Rule) error {
	engine := extractRulesEngine(s.store)
	if engine == nil {
		return fmt.Errorf("store %T does not expose a rules engine", s.store)
	}
	engine.Register(rule)
	return nil
}

// ignoreError aborts a transaction as a silent no-op.
type ignoreError struct {
	reason domain.IgnoreReason
}

func (e ignoreError) Error() string { return "ignored: " + string(e.reason) }

func ignore(reason domain.IgnoreReason) error { return ignoreError{reason: reason} }

// ignoreMissing maps a not-found update to the supplied ignore reason.
func ignoreMissing(err error, reason domain.IgnoreReason) error {
	var nf domain.ErrNotFound
	if errors.As(err, &nf) {
		return ignore(reason)
	}
	return err
}

// run executes fn in a transaction and wraps it with tracing, metrics, audit
// and logging. Ignored operations and blocking rule violations resolve to an
// ignored Outcome with a nil error.
func (s *Service) run(ctx context.Context, op, entityID string, fn func(domain.Transaction) error) (domain.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, op)
	started := s.now()

	var actor string
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if u, ok := tx.Session(); ok {
			actor = u.ID
		}
		return fn(tx)
	})
	outcome, err := resolveOutcome(res, err)
	duration := s.now().Sub(started)
	span.End(err)

	status := StatusApplied
	switch {
	case err != nil:
		status = StatusError
		s.logger.Error("operation failed", "operation", op, "error", err)
	case outcome.Ignored():
		status = StatusIgnored
		s.logger.Info("operation ignored", "operation", op, "reason", string(outcome.Reason), "entity_id", entityID)
	default:
		s.logger.Debug("operation applied", "operation", op, "entity_id", entityID, "duration", duration)
	}
	if len(outcome.Violations) > 0 {
		s.logger.Warn("rule violations", "operation", op, "count", len(outcome.Violations), "violations", outcome.Violations)
	}
	s.metrics.Observe(ctx, op, status, duration)
	s.recordAudit(ctx, AuditEntry{
		Operation: op,
		EntityID:  entityID,
		Actor:     actor,
		Status:    status,
		Reason:    outcome.Reason,
		Error:     errString(err),
		Duration:  duration,
	})
	return outcome, err
}

func resolveOutcome(res domain.Result, err error) (domain.Outcome, error) {
	if err == nil {
		return domain.AppliedOutcome(res), nil
	}
	var ignored ignoreError
	if errors.As(err, &ignored) {
		return domain.Ignored(ignored.reason), nil
	}
	var violation domain.RuleViolationError
	if errors.As(err, &violation) {
		out := domain.Ignored(domain.ReasonBlockedByRule)
		out.Violations = violation.Result.Violations
		return out, nil
	}
	return domain.Outcome{}, err
}

func (s *Service) recordAudit(ctx context.Context, entry AuditEntry) {
	meta, ok := operationMetadata[entry.Operation]
	if !ok {
		return
	}
	entry.Entity = meta.entity
	entry.Action = meta.action
	entry.Timestamp = s.now()
	s.audit.Record(ctx, entry)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
