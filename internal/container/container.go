package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/config"
	"github.com/oksasatya/go-auth-lifecycle/internal/application"
	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
)

// Container is the set of components built once at startup and handed to
// the router. Optional clients are nil when their service is not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool *pgxpool.Pool
	Redis  *redis.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher

	Tokens    *helpers.TokenManager
	Notifier  application.Notifier
	Lifecycle *application.Service
}

// Close releases the clients the container owns.
func (c *Container) Close() {
	if c == nil {
		return
	}
	c.Rabbit.Close()
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
