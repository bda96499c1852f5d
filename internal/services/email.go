package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/gitfolio/gitfolio/internal/config"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/logger"
)

// EmailService renders and delivers outbound mail. When SMTP is disabled
// in config, BuildInviteTask returns nil and nothing is sent.
type EmailService struct {
	smtp    *config.SMTPConfig
	baseURL string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		smtp:    &cfg.SMTP,
		baseURL: strings.TrimRight(cfg.Server.BaseURL, "/"),
	}
}

// BuildInviteTask renders the invite mail for the queue. The body is
// complete at this point: delivery needs no database access.
func (s *EmailService) BuildInviteTask(invite *models.OrganizationInvite, org *models.Organization, sender *models.User) *EmailTask {
	if !s.smtp.Enabled || s.smtp.Host == "" {
		return nil
	}

	subject := fmt.Sprintf("[Gitfolio] %s invited you to join %s", sender.Name, org.Name)
	acceptURL := fmt.Sprintf("%s/invites/%s", s.baseURL, invite.Token)

	return &EmailTask{
		To:      []string{invite.Email},
		Subject: subject,
		Body:    s.buildInviteBody(invite, org, sender, acceptURL),
	}
}

func (s *EmailService) buildInviteBody(invite *models.OrganizationInvite, org *models.Organization, sender *models.User, acceptURL string) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>You have been invited to join %s</h2>", org.Name))
	sb.WriteString(fmt.Sprintf("<p>%s (%s) invited you to join the <strong>%s</strong> organization as a <strong>%s</strong>.</p>",
		sender.Name, sender.Email, org.Name, invite.Role))

	if org.Description != "" {
		sb.WriteString(fmt.Sprintf("<blockquote style=\"background: #f5f5f5; padding: 12px; border-radius: 4px;\">%s</blockquote>", org.Description))
	}

	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"display: inline-block; padding: 10px 20px; background: #2563eb; color: #fff; border-radius: 4px; text-decoration: none;\">Accept Invitation</a></p>", acceptURL))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #888;\">This invitation expires on %s.</p>", invite.ExpiresAt.Format("January 2, 2006")))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by Gitfolio</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

// Send delivers a rendered task over SMTP. It is the processor wired into
// the task queue and the worker.
func (s *EmailService) Send(ctx context.Context, task *EmailTask) error {
	if !s.smtp.Enabled || s.smtp.Host == "" {
		return nil
	}
	if len(task.To) == 0 {
		return nil
	}

	from := s.smtp.From
	if from == "" {
		from = s.smtp.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(task.To, ",")
	headers["Subject"] = task.Subject
	headers["Date"] = time.Now().Format(time.RFC1123Z)
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(task.Body)

	addr := fmt.Sprintf("%s:%d", s.smtp.Host, s.smtp.Port)

	var auth smtp.Auth
	if s.smtp.Username != "" && s.smtp.Password != "" {
		auth = smtp.PlainAuth("", s.smtp.Username, s.smtp.Password, s.smtp.Host)
	}

	var err error
	if s.smtp.UseTLS {
		err = s.sendTLS(addr, auth, from, task.To, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, task.To, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent %q to %v", task.Subject, task.To)
	return nil
}

func (s *EmailService) sendTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: s.smtp.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.smtp.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write([]byte(message)); err != nil {
		return err
	}

	return w.Close()
}
