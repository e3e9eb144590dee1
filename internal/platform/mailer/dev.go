package mailer

import (
	"fmt"

	"github.com/rigaestates/listings-api/pkg/logger"
)

// DevMailer prints emails to the log instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("[DEV MAIL]",
		"to", toEmail,
		"subject", subject,
		"text", text,
	)
	return "dev-mail", nil
}

func (d *DevMailer) SendAccessCode(email, code, magicLink string) error {
	logger.Info("[DEV MAIL] Access code email",
		"to", email,
		"code", code,
		"magic_link", magicLink,
	)

	fmt.Printf("\n"+
		"=================================================================\n"+
		"ACCESS CODE EMAIL (DEV MODE)\n"+
		"=================================================================\n"+
		"To: %s\n"+
		"Subject: Your private listings access code\n"+
		"\n"+
		"Access Code: %s\n"+
		"Magic Link: %s\n"+
		"=================================================================\n\n",
		email, code, magicLink)

	return nil
}
