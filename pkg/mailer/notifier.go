package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/pkg/mailer/templates"
)

// Links carries what account emails need to build their URLs.
type Links struct {
	AppName     string
	ActivateURL string
	RecoverURL  string
	TokenTTL    time.Duration
}

// ActivationJob builds the activation email for one account.
func (l Links) ActivationJob(username, email, token string, now time.Time) EmailJob {
	opts := []templates.Option{
		templates.WithUsername(username),
		templates.WithEmail(email),
		templates.WithActivateLinks(l.ActivateURL, token),
		templates.WithTime(now),
	}
	if l.TokenTTL > 0 {
		opts = append(opts, templates.WithExpiresAt(now.Add(l.TokenTTL)))
	}
	return EmailJob{
		To:       email,
		Template: templates.Activate,
		Data:     templates.ToMap(templates.NewEmailData(l.AppName, opts...)),
	}
}

// RecoveryJob builds the password recovery email for one account.
func (l Links) RecoveryJob(username, email, token string, now time.Time) EmailJob {
	opts := []templates.Option{
		templates.WithUsername(username),
		templates.WithEmail(email),
		templates.WithRecoverLink(l.RecoverURL, token),
		templates.WithTime(now),
	}
	if l.TokenTTL > 0 {
		opts = append(opts, templates.WithExpiresAt(now.Add(l.TokenTTL)))
	}
	return EmailJob{
		To:       email,
		Template: templates.Recover,
		Data:     templates.ToMap(templates.NewEmailData(l.AppName, opts...)),
	}
}

// JobPublisher puts a JSON message on the mail queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier hands account emails to the email worker through RabbitMQ.
type QueueNotifier struct {
	pub   JobPublisher
	links Links
	now   func() time.Time
}

func NewQueueNotifier(pub JobPublisher, links Links) *QueueNotifier {
	return &QueueNotifier{pub: pub, links: links, now: time.Now}
}

func (n *QueueNotifier) SendActivation(ctx context.Context, username, email, token string) error {
	return n.publish(ctx, n.links.ActivationJob(username, email, token, n.now()))
}

func (n *QueueNotifier) SendRecovery(ctx context.Context, username, email, token string) error {
	return n.publish(ctx, n.links.RecoveryJob(username, email, token, n.now()))
}

func (n *QueueNotifier) publish(ctx context.Context, job EmailJob) error {
	if err := n.pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("mailer: publish %s: %w", job.Template, err)
	}
	return nil
}

// DirectNotifier renders and sends account emails in the request path.
type DirectNotifier struct {
	sender Sender
	links  Links
	now    func() time.Time
}

func NewDirectNotifier(sender Sender, links Links) *DirectNotifier {
	return &DirectNotifier{sender: sender, links: links, now: time.Now}
}

func (n *DirectNotifier) SendActivation(ctx context.Context, username, email, token string) error {
	return n.send(ctx, n.links.ActivationJob(username, email, token, n.now()))
}

func (n *DirectNotifier) SendRecovery(ctx context.Context, username, email, token string) error {
	return n.send(ctx, n.links.RecoveryJob(username, email, token, n.now()))
}

func (n *DirectNotifier) send(ctx context.Context, job EmailJob) error {
	subject, text, html, err := job.Render()
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, job.To, subject, text, html); err != nil {
		return fmt.Errorf("mailer: send %s: %w", job.Template, err)
	}
	return nil
}

// LogNotifier is used when mail sending is disabled: it logs the link and
// reports success.
type LogNotifier struct {
	log   *logrus.Logger
	links Links
}

func NewLogNotifier(log *logrus.Logger, links Links) *LogNotifier {
	return &LogNotifier{log: log, links: links}
}

func (n *LogNotifier) SendActivation(_ context.Context, username, email, token string) error {
	n.log.WithFields(logrus.Fields{
		"to":       email,
		"username": username,
		"link":     templates.Link(n.links.ActivateURL, "token", token),
	}).Info("mail disabled: activation email not sent")
	return nil
}

func (n *LogNotifier) SendRecovery(_ context.Context, username, email, token string) error {
	n.log.WithFields(logrus.Fields{
		"to":       email,
		"username": username,
		"link":     templates.Link(n.links.RecoverURL, "recover", token),
	}).Info("mail disabled: recovery email not sent")
	return nil
}
