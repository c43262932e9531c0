package domain

// Mailer sends an email. Implementations include AWS SES and a no-op mailer
// for development.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template into subject, html,
// and text bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}
