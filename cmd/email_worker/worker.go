package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/pkg/mailer"
)

// disposition tells the consumer loop what to do with a delivery.
type disposition int

const (
	ack     disposition = iota
	drop                // nack without requeue: the message can never succeed
	requeue             // nack with requeue: the provider may recover
)

func (d disposition) String() string {
	switch d {
	case ack:
		return "ack"
	case drop:
		return "drop"
	default:
		return "requeue"
	}
}

const sendTimeout = 15 * time.Second

// processJob decodes, renders and sends one queued email.
func processJob(ctx context.Context, sender mailer.Sender, log *logrus.Logger, body []byte) disposition {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		log.WithError(err).Warn("bad message")
		return drop
	}
	entry := log.WithFields(logrus.Fields{"template": job.Template, "to": job.To})

	subject, text, html, err := job.Render()
	if err != nil {
		entry.WithError(err).Warn("render failed")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := sender.Send(c, job.To, subject, text, html); err != nil {
		entry.WithError(err).Error("send failed")
		return requeue
	}
	entry.Info("email sent")
	return ack
}
