package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/internal/application"
)

const (
	indexTimeout = 3 * time.Second
	maxInFlight  = 64
)

// AuditSink indexes lifecycle events into a single Elasticsearch index in
// the background. Indexing failures are logged and never reach the caller.
type AuditSink struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger

	slots chan struct{}
	wg    sync.WaitGroup
}

func NewAuditSink(es *elasticsearch.Client, index string, logger *logrus.Logger) *AuditSink {
	return &AuditSink{es: es, index: index, logger: logger, slots: make(chan struct{}, maxInFlight)}
}

// Record encodes ev and returns; the index request runs on its own
// goroutine. Events are dropped with a warning when maxInFlight requests
// are already pending.
func (s *AuditSink) Record(ctx context.Context, ev application.AuditEvent) {
	if s == nil || s.es == nil || s.index == "" {
		return
	}
	b, err := json.Marshal(ev)
	if err != nil {
		s.logger.WithError(err).WithField("action", ev.Action).Warn("es audit encode failed")
		return
	}
	select {
	case s.slots <- struct{}{}:
	default:
		s.logger.WithField("action", ev.Action).Warn("es audit backlog full, event dropped")
		return
	}
	s.wg.Add(1)
	go func() {
		defer func() {
			<-s.slots
			s.wg.Done()
		}()
		s.send(context.WithoutCancel(ctx), ev.Action, b)
	}()
}

// Flush waits for pending index requests.
func (s *AuditSink) Flush() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func (s *AuditSink) send(ctx context.Context, action string, b []byte) {
	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: uuid.NewString(),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	res, err := req.Do(c, s.es)
	if err != nil {
		s.logger.WithError(err).WithField("action", action).Warn("es audit index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.logger.WithField("status", res.Status()).WithField("action", action).Warn("es audit response error")
	}
}
