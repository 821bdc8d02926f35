package mailer

import (
	"errors"
	"fmt"

	"github.com/oksasatya/go-auth-lifecycle/pkg/mailer/templates"
)

var ErrEmptyJob = errors.New("mailer: job has no recipient or body")

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or Subject+Text(+HTML) must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "activate" or "recover"
	Data     map[string]any `json:"data,omitempty"`
}

// Render resolves the job into subject, text and html bodies.
func (j EmailJob) Render() (subject, text, html string, err error) {
	if j.To == "" {
		return "", "", "", ErrEmptyJob
	}
	if j.Template != "" {
		if !templates.Known(j.Template) {
			return "", "", "", fmt.Errorf("mailer: unknown template %q", j.Template)
		}
		return templates.Render(j.Template, j.Data)
	}
	if j.Subject == "" || (j.Text == "" && j.HTML == "") {
		return "", "", "", ErrEmptyJob
	}
	return j.Subject, j.Text, j.HTML, nil
}
