package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sur-voley/club-system/models"
)

type EmailService interface {
	SendActivityReminder(to []string, activity *models.Activity) error
}

type smtpEmailService struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPEmailService(host string, port int, user, pass, from string) EmailService {
	return &smtpEmailService{
		host: host,
		port: port,
		user: user,
		pass: pass,
		from: from,
	}
}

func (s *smtpEmailService) SendActivityReminder(to []string, activity *models.Activity) error {
	if s.host == "" {
		// SMTP не настроен — напоминания молча отключены.
		return nil
	}

	subject := fmt.Sprintf("Recordatorio: %s el %s", activity.Title, activity.StartDate.Format("02-01-2006"))

	var body strings.Builder
	fmt.Fprintf(&body, "Hola,\r\n\r\nTe recordamos la actividad %q (%s) programada para el %s",
		activity.Title, activity.Kind, activity.StartDate.Format("02-01-2006"))
	if activity.StartTime != nil && activity.EndTime != nil {
		fmt.Fprintf(&body, " de %s a %s", activity.StartTime.Format("15:04"), activity.EndTime.Format("15:04"))
	}
	body.WriteString(".\r\n")
	if activity.Description != nil && *activity.Description != "" {
		fmt.Fprintf(&body, "\r\n%s\r\n", *activity.Description)
	}
	body.WriteString("\r\nClub Sur Voley\r\n")

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body.String(),
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	if err := smtp.SendMail(addr, auth, s.from, to, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}
