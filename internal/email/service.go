package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/minishop/internal/domain/order"
)

// Service sends customer emails via SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation mails the order confirmation to the customer.
func (s *Service) SendOrderConfirmation(to string, o order.Order) error {
	subject := fmt.Sprintf("Order confirmation (#%s)", shortID(o.ID))
	body, err := BuildConfirmationBody(o)
	if err != nil {
		return fmt.Errorf("render confirmation email: %w", err)
	}
	return s.send(to, subject, body)
}

// SendStatusUpdate mails a status change notice to the customer.
func (s *Service) SendStatusUpdate(to string, o order.Order, previous order.Status) error {
	subject := fmt.Sprintf("Order #%s is now %s", shortID(o.ID), o.Status)
	body, err := BuildStatusUpdateBody(o, previous)
	if err != nil {
		return fmt.Errorf("render status email: %w", err)
	}
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
