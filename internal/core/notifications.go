package core

import "placementhub/pkg/domain"

// justNowLabel is the display label carried by freshly generated notifications.
const justNowLabel = "Just now"

func (s *Service) newNotification(kind domain.NotificationType, title, message string) domain.Notification {
	return domain.Notification{
		ID:        s.newID("n"),
		Title:     title,
		Message:   message,
		Date:      justNowLabel,
		Read:      false,
		Type:      kind,
		CreatedAt: s.now(),
	}
}
