package messages

import (
	"fmt"
	"net/smtp"

	"fishcatch/internal/config"
)

// carrierGateways maps carriers to their email-to-SMS gateway domains.
var carrierGateways = map[string]string{
	"verizon": "vtext.com",
	"att":     "txt.att.net",
	"tmobile": "tmomail.net",
	"sprint":  "messaging.sprintpcs.com",
}

// GatewayAddress returns the email address that delivers as a text to
// the given phone on the given carrier.
func GatewayAddress(phone, carrier string) (string, error) {
	domain, ok := carrierGateways[carrier]
	if !ok {
		return "", fmt.Errorf("no SMS gateway for carrier %q", carrier)
	}
	return phone + "@" + domain, nil
}

// Sender delivers message bodies as texts via an SMTP email-to-SMS
// gateway. The send function is swappable for tests.
type Sender struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSender creates a sender using the configured SMTP account.
func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg, send: smtp.SendMail}
}

// Configured reports whether an SMTP account is set up. Unconfigured
// senders can still draft; they just cannot deliver.
func (s *Sender) Configured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != ""
}

// Send delivers one body to the given phone/carrier pair.
func (s *Sender) Send(phone, carrier, body string) error {
	if !s.Configured() {
		return fmt.Errorf("SMTP is not configured; set smtp credentials in .fishcatch.yml")
	}

	to, err := GatewayAddress(phone, carrier)
	if err != nil {
		return err
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	// SMS gateways ignore the subject; keep the payload to headers
	// plus the bare body.
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\n\r\n%s\r\n", to, from, body))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := s.send(addr, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("sending via %s: %w", s.cfg.Host, err)
	}
	return nil
}
