package mailer

import (
	"fmt"
	"strings"

	"pos-app/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends operational notification mail. It is disabled (every call a
// no-op) when SMTP_HOST or MAIL_REPORT_TO is unset.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       []string
}

func NewFromConfig() *Mailer {
	var to []string
	for _, addr := range strings.Split(config.MailReportTo, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			to = append(to, addr)
		}
	}

	return &Mailer{
		host:     config.SMTPHost,
		port:     config.SMTPPort,
		user:     config.SMTPUser,
		password: config.SMTPPassword,
		from:     config.MailFrom,
		to:       to,
	}
}

func (m *Mailer) enabled() bool {
	return m.host != "" && len(m.to) > 0
}

func (m *Mailer) SendBalanceReport(sessionCode, actor string, updated int) error {
	if !m.enabled() {
		return nil
	}

	subject := "Stocktake balanced: " + sessionCode
	body := fmt.Sprintf(`
		<html>
			<body>
				<h3>Stocktake session balanced</h3>
				<p>Session: <strong>%s</strong></p>
				<p>Products updated: <strong>%d</strong></p>
				<p>Balanced by: <strong>%s</strong></p>
				<p>This is an auto-generated email. Please do not reply.</p>
			</body>
		</html>
	`, sessionCode, updated, actor)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.password)
	return dialer.DialAndSend(msg)
}
