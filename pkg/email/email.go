package email

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/sirupsen/logrus"
)

// SendEmail sends a plain text email using SMTP.
func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_SENDER")
	password := os.Getenv("SMTP_PASSWORD")
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")

	if smtpHost == "" {
		return fmt.Errorf("smtp is not configured")
	}

	auth := smtp.PlainAuth("", from, password, smtpHost)

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := smtpHost + ":" + smtpPort

	err := smtp.SendMail(address, auth, from, []string{to}, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendAsync fires an email off the request path. Notification mail is a side
// effect here, never part of the critical path, so failures are only logged.
func SendAsync(to, subject, body string) {
	go func() {
		if err := SendEmail(to, subject, body); err != nil {
			logrus.WithFields(logrus.Fields{
				"to":      to,
				"subject": subject,
				"error":   err,
			}).Warn("Failed to send notification email")
		}
	}()
}
