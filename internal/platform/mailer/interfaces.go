package mailer

// Service delivers the access-gate emails. Implementations must treat a
// failed send as reportable but non-fatal; the caller keeps the stored
// request so verification can be retried after a resend.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendAccessCode(email, code, magicLink string) error
}
