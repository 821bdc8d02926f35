package container

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/config"
	"github.com/oksasatya/go-auth-lifecycle/internal/application"
	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-auth-lifecycle/pkg/mailer"
)

// dialRabbit is replaced in tests.
var dialRabbit = func(url, queue string) (mailer.JobPublisher, *helpers.RabbitPublisher, error) {
	pub, err := helpers.NewRabbitPublisher(url, queue)
	if err != nil {
		return nil, nil, err
	}
	return pub, pub, nil
}

// BuildNotifier picks the mail transport from configuration. The returned
// publisher is non-nil only for the queue transport and must be closed by
// the caller.
func BuildNotifier(cfg *config.Config, logger *logrus.Logger, tokenTTL time.Duration) (application.Notifier, *helpers.RabbitPublisher, error) {
	links := mailer.Links{
		AppName:     cfg.SiteTitle,
		ActivateURL: cfg.ActivateURL,
		RecoverURL:  cfg.RecoverURL,
		TokenTTL:    tokenTTL,
	}
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; activation and recovery links are only logged")
		return mailer.NewLogNotifier(logger, links), nil, nil
	}
	if cfg.MailTransport == "direct" {
		mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		return mailer.NewDirectNotifier(mg, links), nil, nil
	}
	pub, closer, err := dialRabbit(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		return nil, nil, err
	}
	return mailer.NewQueueNotifier(pub, links), closer, nil
}
