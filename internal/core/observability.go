package core

import (
	"context"
	"time"

	"placementhub/pkg/domain"
)

// Logger is the structured logging surface used by the service. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns the function's time, or the local wall clock when nil.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

// OperationStatus classifies how a service operation finished.
type OperationStatus string

const (
	StatusApplied OperationStatus = "applied"
	StatusIgnored OperationStatus = "ignored"
	StatusError   OperationStatus = "error"
)

// AuditEntry captures one service operation for the audit trail.
type AuditEntry struct {
	Operation string
	Entity    domain.EntityType
	Action    domain.Action
	EntityID  string
	Actor     string
	Status    OperationStatus
	Reason    domain.IgnoreReason
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives audit entries for every known operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes operation outcomes and latency.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, status OperationStatus, duration time.Duration)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, OperationStatus, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type operationMeta struct {
	entity domain.EntityType
	action domain.Action
}

// Operation names as they appear in logs, metrics, traces and audit entries.
const (
	OpLogin                    = "login"
	OpLogout                   = "logout"
	OpUpdateUserProfile        = "update_user_profile"
	OpAddLogEntry              = "add_log_entry"
	OpApproveLogbookEntry      = "approve_logbook_entry"
	OpApplyForInternship       = "apply_for_internship"
	OpMarkNotificationRead     = "mark_notification_read"
	OpMarkAllNotificationsRead = "mark_all_notifications_read"
	OpPostInternship           = "post_internship"
	OpUpdateStudentStatus      = "update_student_status"
	OpAddStudent               = "add_student"
	OpUpdateApplicationStatus  = "update_application_status"
)

var operationMetadata = map[string]operationMeta{
	OpLogin:                    {entity: domain.EntitySession, action: domain.ActionUpdate},
	OpLogout:                   {entity: domain.EntitySession, action: domain.ActionDelete},
	OpUpdateUserProfile:        {entity: domain.EntitySession, action: domain.ActionUpdate},
	OpAddLogEntry:              {entity: domain.EntityLogbookEntry, action: domain.ActionCreate},
	OpApproveLogbookEntry:      {entity: domain.EntityLogbookEntry, action: domain.ActionUpdate},
	OpApplyForInternship:       {entity: domain.EntityApplication, action: domain.ActionCreate},
	OpMarkNotificationRead:     {entity: domain.EntityNotification, action: domain.ActionUpdate},
	OpMarkAllNotificationsRead: {entity: domain.EntityNotification, action: domain.ActionUpdate},
	OpPostInternship:           {entity: domain.EntityInternship, action: domain.ActionCreate},
	OpUpdateStudentStatus:      {entity: domain.EntityStudent, action: domain.ActionUpdate},
	OpAddStudent:               {entity: domain.EntityStudent, action: domain.ActionCreate},
	OpUpdateApplicationStatus:  {entity: domain.EntityApplication, action: domain.ActionUpdate},
}

// Operations lists every mutation operation name in a stable order.
func Operations() []string {
	return []string{
		OpLogin, OpLogout, OpUpdateUserProfile, OpAddLogEntry, OpApproveLogbookEntry,
		OpApplyForInternship, OpMarkNotificationRead, OpMarkAllNotificationsRead,
		OpPostInternship, OpUpdateStudentStatus, OpAddStudent, OpUpdateApplicationStatus,
	}
}
