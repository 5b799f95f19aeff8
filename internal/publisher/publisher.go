package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/clearbook-finance/rates-adapter/internal/metrics"
	"github.com/clearbook-finance/rates-adapter/pkg/logger"
	"github.com/clearbook-finance/rates-adapter/pkg/model"
)

// jetStream is the slice of nats.JetStreamContext the publisher uses.
type jetStream interface {
	PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher wraps a NATS connection and publishes canonical surface events.
type Publisher struct {
	nc      *nats.Conn
	js      jetStream
	subject string
	service string
}

// New creates a new Publisher with JetStream enabled.
func New(nc *nats.Conn, subject, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
	}, nil
}

// PublishSurfaceRebuilt emits one surface.rebuilt event per successful build.
func (p *Publisher) PublishSurfaceRebuilt(ctx context.Context, evt model.SurfaceRebuiltEvent) error {
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: evt.SurfaceID,
		Service:       p.service,
		Topic:         p.subject,
		EventType:     "surface.rebuilt",
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}
	env.Payload = payload

	return p.PublishEnvelope(ctx, p.subject, env)
}

// PublishEnvelope serializes and publishes a canonical event envelope to NATS.
func (p *Publisher) PublishEnvelope(ctx context.Context, subject string, env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		logger.S().Errorw("publisher.marshal_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	if subject == "" {
		subject = p.subject
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	start := time.Now()
	_, err = p.js.PublishMsg(msg)
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, subject)

	if err != nil {
		logger.S().Errorw("publisher.publish_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncNATSMessage(subject, "error")
		return err
	}

	logger.S().Infow("publisher.publish_success",
		"subject", subject,
		"event_type", env.EventType,
	)

	metrics.IncNATSMessage(subject, "ok")
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
