// Package notification отправляет письма о решениях по бета-заявкам,
// потребляя сообщения из очереди beta.decision.
package notification

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/entitlement-service/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-service/internal/lib/smtp"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

// SenderService отправляет уведомления по SMTP.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// Transport описывает SMTP-транспорт.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendBetaDecision разбирает сообщение очереди и отправляет заявителю
// письмо о решении по его заявке.
func (s *SenderService) SendBetaDecision(body []byte) error {
	var message models.BetaDecisionNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if message.Email == "" {
		return fmt.Errorf("beta decision notification without email")
	}

	var subject, bodyText string
	switch message.Status {
	case models.BetaApproved:
		subject = "Ваша заявка на бета-чтение одобрена"
		bodyText = "Здравствуйте!\n\nВаша заявка на участие в бета-чтении одобрена. Бета-портал уже доступен в вашем аккаунте."
	case models.BetaRejected:
		subject = "Решение по вашей заявке на бета-чтение"
		bodyText = "Здравствуйте!\n\nК сожалению, ваша заявка на участие в бета-чтении отклонена. Вы можете подать новую заявку позже."
	default:
		return fmt.Errorf("unexpected beta decision status %q", message.Status)
	}

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message", sl.Err(err))
		return err
	}
	if err := wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	s.log.Info("sent beta decision email", slog.String("to", strings.Join(to, ";")))
	return nil
}
