// Package domain defines the placement-tracking entities, value types, and
// rule evaluation primitives shared by the store, the service facade and the
// seed/report adapters.
package domain

import "time"

// EntityType identifies the type of record stored in the domain state.
type EntityType string

// Supported entity type identifiers used in Change records and seed buckets.
const (
	// EntitySession identifies the current-user session slot.
	EntitySession EntityType = "session"
	// EntityStudent identifies a student record.
	EntityStudent EntityType = "student"
	// EntityInternship identifies an internship posting.
	EntityInternship EntityType = "internship"
	// EntityApplication identifies a student's application to an internship.
	EntityApplication EntityType = "application"
	// EntityLogbookEntry identifies a dated logbook activity record.
	EntityLogbookEntry EntityType = "logbook_entry"
	// EntityNotification identifies a notification surfaced to the session user.
	EntityNotification EntityType = "notification"
)

// Role enumerates the actor roles that may hold the session slot.
type Role string

const (
	RoleStudent  Role = "student"
	RoleCollege  Role = "college"
	RoleIndustry Role = "industry"
)

// Valid reports whether r is one of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCollege, RoleIndustry:
		return true
	default:
		return false
	}
}

// StudentStatus captures where a student is in the placement pipeline.
type StudentStatus string

const (
	StudentStatusSeeking   StudentStatus = "Seeking"
	StudentStatusInterning StudentStatus = "Interning"
	StudentStatusPlaced    StudentStatus = "Placed"
)

// Valid reports whether s is a known student status.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusSeeking, StudentStatusInterning, StudentStatusPlaced:
		return true
	default:
		return false
	}
}

// ApplicationStatus enumerates application lifecycle states. Applied is the
// initial state; Rejected and Accepted are terminal.
type ApplicationStatus string

const (
	ApplicationStatusApplied     ApplicationStatus = "Applied"
	ApplicationStatusShortlisted ApplicationStatus = "Shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "Rejected"
	ApplicationStatusAccepted    ApplicationStatus = "Accepted"
)

// Terminal reports whether the status ends the application lifecycle.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusAccepted
}

// Reviewable reports whether a reviewer may set the status directly.
func (s ApplicationStatus) Reviewable() bool {
	switch s {
	case ApplicationStatusShortlisted, ApplicationStatusRejected, ApplicationStatusAccepted:
		return true
	default:
		return false
	}
}

// LogbookStatus enumerates logbook review states.
type LogbookStatus string

const (
	LogbookStatusPending  LogbookStatus = "Pending"
	LogbookStatusApproved LogbookStatus = "Approved"
	LogbookStatusRejected LogbookStatus = "Rejected"
)

// NotificationType classifies a notification for display.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// User is the identity held in the session slot.
type User struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email,omitempty" yaml:"email,omitempty"`
	Role   Role   `json:"role" yaml:"role"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// UserPatch carries a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Name   *string
	Email  *string
	Role   *Role
	Avatar *string
}

// Apply merges the non-nil patch fields into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}

// Empty reports whether the patch carries no fields.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil && p.Avatar == nil
}

// Student is a college-managed student record.
type Student struct {
	ID         string        `json:"id" yaml:"id"`
	Name       string        `json:"name" yaml:"name"`
	Email      string        `json:"email" yaml:"email"`
	Department string        `json:"department" yaml:"department"`
	Year       string        `json:"year" yaml:"year"`
	GPA        float64       `json:"gpa" yaml:"gpa"`
	Status     StudentStatus `json:"status" yaml:"status"`
	Skills     []string      `json:"skills" yaml:"skills"`
	Employer   *string       `json:"employer,omitempty" yaml:"employer,omitempty"`
	Avatar     string        `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Internship is an employer posting.
type Internship struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Company      string   `json:"company" yaml:"company"`
	Type         string   `json:"type" yaml:"type"`
	Location     string   `json:"location,omitempty" yaml:"location,omitempty"`
	Stipend      string   `json:"stipend,omitempty" yaml:"stipend,omitempty"`
	Duration     string   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	PostedDate   string   `json:"posted_date,omitempty" yaml:"posted_date,omitempty"`
	Applicants   int      `json:"applicants" yaml:"applicants"`
	Logo         string   `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// Application is a student's request to be considered for an internship.
//
// StudentName, StudentAvatar, StudentGPA and JobTitle are copied when the
// application is filed and are not refreshed if the student or internship
// records change afterwards.
type Application struct {
	ID            string            `json:"id" yaml:"id"`
	InternshipID  string            `json:"internship_id" yaml:"internship_id"`
	StudentID     string            `json:"student_id" yaml:"student_id"`
	Status        ApplicationStatus `json:"status" yaml:"status"`
	AppliedDate   string            `json:"applied_date" yaml:"applied_date"`
	StudentName   string            `json:"student_name" yaml:"student_name"`
	StudentAvatar string            `json:"student_avatar,omitempty" yaml:"student_avatar,omitempty"`
	StudentGPA    float64           `json:"student_gpa,omitempty" yaml:"student_gpa,omitempty"`
	JobTitle      string            `json:"job_title" yaml:"job_title"`
}

// LogbookEntry is a dated activity record submitted by a student.
type LogbookEntry struct {
	ID            string        `json:"id" yaml:"id"`
	Date          string        `json:"date" yaml:"date"`
	Activity      string        `json:"activity" yaml:"activity"`
	Hours         float64       `json:"hours" yaml:"hours"`
	SkillsLearned []string      `json:"skills_learned" yaml:"skills_learned"`
	Status        LogbookStatus `json:"status" yaml:"status"`
}

// Notification is a read/unread message produced as a mutation side effect.
type Notification struct {
	ID        string           `json:"id" yaml:"id"`
	Title     string           `json:"title" yaml:"title"`
	Message   string           `json:"message" yaml:"message"`
	Date      string           `json:"date" yaml:"date"`
	Read      bool             `json:"read" yaml:"read"`
	Type      NotificationType `json:"type" yaml:"type"`
	CreatedAt time.Time        `json:"created_at,omitzero" yaml:"created_at,omitempty"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Severity captures rule outcomes.
type Severity string

const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
