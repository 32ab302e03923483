package core

import (
	"context"
	"time"

	"placementhub/pkg/domain"
)

// sessionIDs maps each role to the representative id that the seeded
// dataset cross-references.
var sessionIDs = map[domain.Role]string{
	domain.RoleStudent:  "s1",
	domain.RoleCollege:  "admin1",
	domain.RoleIndustry: "admin1",
}

// SessionIDFor returns the fixed session id assigned to role.
func SessionIDFor(role domain.Role) string {
	return sessionIDs[role]
}

// Login replaces the session slot with the default profile for role. An
// empty name keeps the profile's name.
func (s *Service) Login(ctx context.Context, role domain.Role, name string) (domain.User, domain.Outcome, error) {
	var user domain.User
	outcome, err := s.run(ctx, OpLogin, SessionIDFor(role), func(tx domain.Transaction) error {
		if !role.Valid() {
			return ignore(domain.ReasonInvalidRole)
		}
		user = s.profile
		user.Role = role
		user.ID = SessionIDFor(role)
		if name != "" {
			user.Name = name
		}
		tx.SetSession(user)
		return nil
	})
	if outcome.Ignored() {
		user = domain.User{}
	}
	return user, outcome, err
}

// Logout clears the session slot. Logging out twice is harmless.
func (s *Service) Logout(ctx context.Context) (domain.Outcome, error) {
	return s.run(ctx, OpLogout, "", func(tx domain.Transaction) error {
		if !tx.ClearSession() {
			return ignore(domain.ReasonNoSession)
		}
		return nil
	})
}

// UpdateUserProfile merges patch into the session user.
func (s *Service) UpdateUserProfile(ctx context.Context, patch domain.UserPatch) (domain.User, domain.Outcome, error) {
	var updated domain.User
	outcome, err := s.run(ctx, OpUpdateUserProfile, "", func(tx domain.Transaction) error {
		current, ok := tx.Session()
		if !ok {
			return ignore(domain.ReasonNoSession)
		}
		patch.Apply(&current)
		tx.SetSession(current)
		updated = current
		return nil
	})
	if outcome.Ignored() {
		updated = domain.User{}
	}
	return updated, outcome, err
}

// AddLogEntry prepends a caller-built entry and notifies that it awaits approval.
func (s *Service) AddLogEntry(ctx context.Context, entry domain.LogbookEntry) (domain.Outcome, error) {
	notification := s.newNotification(domain.NotificationInfo,
		"Log Entry Submitted",
		"Your entry for "+entry.Date+" is pending approval.")
	return s.run(ctx, OpAddLogEntry, entry.ID, func(tx domain.Transaction) error {
		tx.PrependLogbookEntry(entry)
		tx.PrependNotification(notification)
		return nil
	})
}

// ApproveLogbookEntry marks the entry Approved.
func (s *Service) ApproveLogbookEntry(ctx context.Context, id string) (domain.Outcome, error) {
	return s.run(ctx, OpApproveLogbookEntry, id, func(tx domain.Transaction) error {
		_, err := tx.UpdateLogbookEntry(id, func(e *domain.LogbookEntry) error {
			e.Status = domain.LogbookStatusApproved
			return nil
		})
		return ignoreMissing(err, domain.ReasonLogbookEntryNotFound)
	})
}

// ApplyForInternship files an application for the session user. The new
// application, the applicant increment and the confirmation notification
// commit together or not at all.
func (s *Service) ApplyForInternship(ctx context.Context, internshipID string) (domain.Application, domain.Outcome, error) {
	appID := s.newID("a")
	var created domain.Application
	outcome, err := s.run(ctx, OpApplyForInternship, appID, func(tx domain.Transaction) error {
		user, ok := tx.Session()
		if !ok {
			return ignore(domain.ReasonNoSession)
		}
		internship, ok := tx.FindInternship(internshipID)
		if !ok {
			return ignore(domain.ReasonInternshipNotFound)
		}
		app := domain.Application{
			ID:            appID,
			InternshipID:  internshipID,
			StudentID:     user.ID,
			Status:        domain.ApplicationStatusApplied,
			AppliedDate:   s.now().Format(time.DateOnly),
			StudentName:   user.Name,
			StudentAvatar: user.Avatar,
			JobTitle:      internship.Title,
		}
		if student, ok := tx.FindStudent(user.ID); ok {
			app.StudentGPA = student.GPA
		}
		created = tx.PrependApplication(app)
		if _, err := tx.UpdateInternship(internshipID, func(in *domain.Internship) error {
			in.Applicants++
			return nil
		}); err != nil {
			return err
		}
		n := s.newNotification(domain.NotificationSuccess,
			"Application Sent",
			"You successfully applied for "+internship.Title+" at "+internship.Company+".")
		tx.PrependNotification(n)
		return nil
	})
	if outcome.Ignored() {
		created = domain.Application{}
	}
	return created, outcome, err
}

// MarkNotificationRead sets the read flag on one notification.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) (domain.Outcome, error) {
	return s.run(ctx, OpMarkNotificationRead, id, func(tx domain.Transaction) error {
		_, err := tx.UpdateNotification(id, func(n *domain.Notification) error {
			n.Read = true
			return nil
		})
		return ignoreMissing(err, domain.ReasonNotificationNotFound)
	})
}

// MarkAllNotificationsRead sets the read flag on every notification.
func (s *Service) MarkAllNotificationsRead(ctx context.Context) (domain.Outcome, error) {
	return s.run(ctx, OpMarkAllNotificationsRead, "", func(tx domain.Transaction) error {
		tx.UpdateAllNotifications(func(n *domain.Notification) { n.Read = true })
		return nil
	})
}

// PostInternship prepends a caller-built posting and confirms it went live.
// Duplicate ids are not detected.
func (s *Service) PostInternship(ctx context.Context, internship domain.Internship) (domain.Outcome, error) {
	notification := s.newNotification(domain.NotificationSuccess,
		"Job Posted Successfully",
		internship.Title+" is now live.")
	return s.run(ctx, OpPostInternship, internship.ID, func(tx domain.Transaction) error {
		tx.PrependInternship(internship)
		tx.PrependNotification(notification)
		return nil
	})
}

// UpdateStudentStatus sets a student's placement status.
func (s *Service) UpdateStudentStatus(ctx context.Context, id string, status domain.StudentStatus) (domain.Outcome, error) {
	return s.run(ctx, OpUpdateStudentStatus, id, func(tx domain.Transaction) error {
		if !status.Valid() {
			return ignore(domain.ReasonInvalidStatus)
		}
		_, err := tx.UpdateStudent(id, func(st *domain.Student) error {
			st.Status = status
			return nil
		})
		return ignoreMissing(err, domain.ReasonStudentNotFound)
	})
}

// AddStudent prepends a caller-built student record.
func (s *Service) AddStudent(ctx context.Context, student domain.Student) (domain.Outcome, error) {
	return s.run(ctx, OpAddStudent, student.ID, func(tx domain.Transaction) error {
		tx.PrependStudent(student)
		return nil
	})
}

// UpdateApplicationStatus sets a reviewer decision on an application. Any
// current status may be overwritten unless a blocking rule forbids it.
func (s *Service) UpdateApplicationStatus(ctx context.Context, appID string, status domain.ApplicationStatus) (domain.Outcome, error) {
	return s.run(ctx, OpUpdateApplicationStatus, appID, func(tx domain.Transaction) error {
		if !status.Reviewable() {
			return ignore(domain.ReasonInvalidStatus)
		}
		_, err := tx.UpdateApplication(appID, func(app *domain.Application) error {
			app.Status = status
			return nil
		})
		return ignoreMissing(err, domain.ReasonApplicationNotFound)
	})
}
