package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearbook-finance/rates-adapter/pkg/model"
)

type mockJetStream struct {
	published []*nats.Msg
	fail      bool
}

func (m *mockJetStream) PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error) {
	if m.fail {
		return nil, errors.New("mock publish error")
	}
	m.published = append(m.published, msg)
	return &nats.PubAck{Stream: "mock-stream"}, nil
}

func newTestPublisher(js jetStream) *Publisher {
	return &Publisher{
		js:      js,
		subject: "evt.rates.surface.rebuilt.v1",
		service: "rates-adapter",
	}
}

func TestPublishSurfaceRebuilt(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	evt := model.SurfaceRebuiltEvent{
		SurfaceID: uuid.New(),
		FirstDate: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		LastDate:  time.Date(2024, time.June, 28, 0, 0, 0, 0, time.UTC),
		Rows:      179,
		Series:    []string{"USDONTD156N", "USD12MD156N"},
		BuiltAt:   time.Now().UTC(),
	}

	require.NoError(t, p.PublishSurfaceRebuilt(context.Background(), evt))
	require.Len(t, js.published, 1)

	msg := js.published[0]
	assert.Equal(t, "evt.rates.surface.rebuilt.v1", msg.Subject)
	assert.Equal(t, "surface.rebuilt", msg.Header.Get("event_type"))
	assert.Equal(t, "rates-adapter", msg.Header.Get("service"))
	assert.Equal(t, evt.SurfaceID.String(), msg.Header.Get("correlation_id"))

	var env model.Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, "surface.rebuilt", env.EventType)
	assert.Equal(t, evt.SurfaceID, env.CorrelationID)

	var got model.SurfaceRebuiltEvent
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, evt.Rows, got.Rows)
	assert.Equal(t, evt.Series, got.Series)
}

func TestPublishEnvelope_DefaultSubject(t *testing.T) {
	js := &mockJetStream{}
	p := newTestPublisher(js)

	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		EventType:     "surface.rebuilt",
	}
	require.NoError(t, p.PublishEnvelope(context.Background(), "", env))
	require.Len(t, js.published, 1)
	assert.Equal(t, "evt.rates.surface.rebuilt.v1", js.published[0].Subject)
}

func TestPublishSurfaceRebuilt_Error(t *testing.T) {
	js := &mockJetStream{fail: true}
	p := newTestPublisher(js)

	err := p.PublishSurfaceRebuilt(context.Background(), model.SurfaceRebuiltEvent{})
	require.Error(t, err)
	assert.Empty(t, js.published)
}
