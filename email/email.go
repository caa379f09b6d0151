package email

import (
	"fmt"
	"net/smtp"
	"os"

	log "github.com/sirupsen/logrus"
)

func send(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	if host == "" || port == "" || user == "" || pass == "" || from == "" {
		return fmt.Errorf("SMTP environment variables missing")
	}
	addr := fmt.Sprintf("%s:%s", host, port)
	auth := smtp.PlainAuth("", user, pass, host)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}

func SendWelcome(to string) error {
	subject := "Welcome to Wiper"
	body := "Thanks for signing up. Add your car and pick a plan to get your daily doorstep cleaning started."
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.WithField("to", to).Info("[EMAIL] welcome sent")
	return nil
}

func SendPasswordChanged(to string) error {
	subject := "Your password was changed"
	body := "Your Wiper password has been updated. If this wasn't you, contact support right away."
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.WithField("to", to).Info("[EMAIL] password change notification sent")
	return nil
}

// SendExpiryReminder nudges an owner whose plan runs out soon.
func SendExpiryReminder(to, planType string, daysLeft int) error {
	subject := "Your Wiper plan is about to expire"
	body := fmt.Sprintf(`Hi,

Your %s plan ends in %d day(s). Renew now to keep your car's daily cleaning going without a break.

Team Wiper`, planType, daysLeft)
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.WithField("to", to).Info("[EMAIL] expiry reminder sent")
	return nil
}
