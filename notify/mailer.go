package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const timeLayout = "02.01.2006 15:04 MST"

type Mailer interface {
	SendAdminInvite(ctx context.Context, to, token string, expiresAt time.Time) error
	SendEventReminder(ctx context.Context, to []string, teamName, title string, location *string, startTime time.Time) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type GomailMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewGomailMailer(cfg SMTPConfig) *GomailMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return &GomailMailer{cfg: cfg, dialer: d}
}

func (m *GomailMailer) SendAdminInvite(_ context.Context, to, token string, expiresAt time.Time) error {
	body, err := renderAdminInvite(to, token, expiresAt)
	if err != nil {
		return err
	}
	return m.send([]string{to}, "Приглашение администратора Team Hub", body)
}

func (m *GomailMailer) SendEventReminder(_ context.Context, to []string, teamName, title string, location *string, startTime time.Time) error {
	body, err := renderEventReminder(teamName, title, location, startTime)
	if err != nil {
		return err
	}
	return m.send(to, fmt.Sprintf("%s: %s", teamName, title), body)
}

// send отправляет одно письмо на каждого получателя, чтобы адреса
// участников не попадали в заголовок To друг другу.
func (m *GomailMailer) send(to []string, subject, htmlBody string) error {
	messages := make([]*gomail.Message, 0, len(to))
	for _, addr := range to {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.cfg.From)
		msg.SetHeader("To", addr)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/html", htmlBody)
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return nil
	}
	if err := m.dialer.DialAndSend(messages...); err != nil {
		return fmt.Errorf("failed to send %q: %w", subject, err)
	}
	return nil
}

func renderAdminInvite(email, token string, expiresAt time.Time) (string, error) {
	return render("admin_invite_email.html", struct {
		Email     string
		Token     string
		ExpiresAt string
	}{
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(timeLayout),
	})
}

func renderEventReminder(teamName, title string, location *string, startTime time.Time) (string, error) {
	data := struct {
		TeamName  string
		Title     string
		Location  string
		StartTime string
	}{
		TeamName:  teamName,
		Title:     title,
		StartTime: startTime.UTC().Format(timeLayout),
	}
	if location != nil {
		data.Location = *location
	}
	return render("event_reminder_email.html", data)
}

func render(name string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return body.String(), nil
}

// LogMailer используется, когда SMTP не настроен.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{log: log.Named("mailer")}
}

func (m *LogMailer) SendAdminInvite(_ context.Context, to, token string, expiresAt time.Time) error {
	m.log.Info("admin invite (smtp disabled)",
		zap.String("to", to),
		zap.String("token", token),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

func (m *LogMailer) SendEventReminder(_ context.Context, to []string, teamName, title string, _ *string, startTime time.Time) error {
	m.log.Info("event reminder (smtp disabled)",
		zap.Strings("to", to),
		zap.String("team", teamName),
		zap.String("title", title),
		zap.Time("start_time", startTime),
	)
	return nil
}
