package mail

import (
	"bytes"
	"fmt"
	htmlTemplate "html/template"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/services/logging"
)

type Service struct {
	config *config.MailConfig
	client *mail.Client
	logger *logging.Service
}

// verificationTemplate renders the two-step login email. The code is shown
// prominently with the expiry window spelled out for the user.
var verificationTemplate = htmlTemplate.Must(htmlTemplate.New("verification_code").Parse(`<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; padding: 30px; border-radius: 10px; margin-bottom: 20px; background: #8B5CF6;">
    <h1 style="color: white; margin: 0;">{{.AppName}}</h1>
    <p style="color: #f0f0f0; margin: 10px 0 0 0;">Login Verification</p>
  </div>
  <div style="background: #f9f9f9; padding: 30px; border-radius: 10px; text-align: center;">
    <h2 style="color: #333;">Your Verification Code</h2>
    <div style="background: white; padding: 20px; border-radius: 8px; border: 2px solid #8B5CF6; display: inline-block;">
      <h1 style="color: #8B5CF6; font-size: 36px; letter-spacing: 8px; margin: 0; font-family: 'Courier New', monospace;">{{.Code}}</h1>
    </div>
    <p style="color: #666; font-size: 16px;">Enter this code in your browser to complete login</p>
    <p style="color: #999; font-size: 14px;">This code will expire in <strong>{{.Expiry}}</strong></p>
  </div>
  <p style="color: #856404; font-size: 14px;">If you didn't request this code, please ignore this email and consider changing your password.</p>
</body>
</html>`))

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	logger.Info("initializing mail service",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("encryption", cfg.Encryption),
		zap.String("from_address", cfg.FromAddress))

	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	switch cfg.Encryption {
	case "tls", "starttls":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &Service{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

func (s *Service) newMessage() (*mail.Msg, error) {
	message := mail.NewMsg()

	fromAddr := s.config.FromAddress
	if s.config.FromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	if err := message.From(fromAddr); err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}

	return message, nil
}

func (s *Service) send(message *mail.Msg) error {
	startTime := time.Now()
	err := s.client.DialAndSend(message)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("failed to send email",
			zap.Error(err),
			zap.Duration("attempt_duration", duration))
		return err
	}

	s.logger.Info("email sent successfully", zap.Duration("send_duration", duration))
	return nil
}

// SendVerificationCode delivers a login verification code. A failure here
// fails the enclosing login step; the persisted code stays valid until the
// user requests a resend or it expires.
func (s *Service) SendVerificationCode(to, code string, expiry time.Duration) error {
	s.logger.Info("sending verification code email", zap.String("to", to))

	message, err := s.newMessage()
	if err != nil {
		return err
	}

	if err := message.To(to); err != nil {
		return fmt.Errorf("failed to set TO address: %w", err)
	}

	message.Subject(fmt.Sprintf("%s - Login Verification Code", s.config.FromName))

	var body bytes.Buffer
	data := map[string]any{
		"AppName": s.config.FromName,
		"Code":    code,
		"Expiry":  fmt.Sprintf("%d minutes", int(expiry.Minutes())),
	}
	if err := verificationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	message.SetBodyString(mail.TypeTextHTML, body.String())

	return s.send(message)
}

func (s *Service) SendPlain(to, subject, body string) error {
	message, err := s.newMessage()
	if err != nil {
		return err
	}

	if err := message.To(to); err != nil {
		return fmt.Errorf("failed to set TO address: %w", err)
	}

	message.Subject(subject)
	message.SetBodyString(mail.TypeTextPlain, body)

	return s.send(message)
}
