package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/linkface/linkface/internal/models"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c SMTPConfig) configured() bool { return c.Host != "" && c.From != "" }

// Notifier delivers the fire-and-forget "submission received" signal: a
// structured event to Kafka when a broker is configured, and an email to the
// referring employee when SMTP is configured. Every failure is logged and
// swallowed; the submitter's response never depends on this path.
type Notifier struct {
	Producer *Producer
	SMTP     SMTPConfig
	Log      *slog.Logger
}

type submissionEvent struct {
	Type          string `json:"type"`
	SubmissionID  uint   `json:"submission_id"`
	EmployeeToken string `json:"employee_token,omitempty"`
	Name          string `json:"name"`
	CPF           string `json:"cpf"`
}

func (n *Notifier) SubmissionReceived(ctx context.Context, sub *models.Submission, employee *models.Employee) {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}

	if n.Producer != nil {
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		event := submissionEvent{
			Type:          "submission_received",
			SubmissionID:  sub.ID,
			EmployeeToken: sub.EmployeeToken,
			Name:          sub.Name,
			CPF:           sub.CPF,
		}
		if err := n.Producer.PublishEvent(pubCtx, fmt.Sprint(sub.ID), event); err != nil {
			log.Error("kafka publish error", "error", err, "submission_id", sub.ID)
		}
	}

	if employee == nil || employee.Email == "" {
		return
	}

	body := fmt.Sprintf("New submission received:\nClient: %s\nCPF: %s", sub.Name, sub.CPF)
	if !n.SMTP.configured() {
		log.Info("email notification (console)", "to", employee.Email, "message", body)
		return
	}

	if err := n.sendEmail(employee.Email, "New submission", body); err != nil {
		log.Error("email notification error", "error", err, "to", employee.Email)
	}
}

func (n *Notifier) sendEmail(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.SMTP.Host, n.SMTP.Port)

	var auth smtp.Auth
	if n.SMTP.User != "" {
		auth = smtp.PlainAuth("", n.SMTP.User, n.SMTP.Password, n.SMTP.Host)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.SMTP.From, to, subject, body))

	return smtp.SendMail(addr, auth, n.SMTP.From, []string{to}, msg)
}
