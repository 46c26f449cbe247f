package live

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/streadway/amqp"
)

type fakeChannel struct {
	mu         sync.Mutex
	published  []amqp.Publishing
	deliveries chan amqp.Delivery
	publishErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery, 4)}
}

func (f *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return nil
}

func (f *fakeChannel) QueueDeclare(string, bool, bool, bool, bool, amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: "q1"}, nil
}

func (f *fakeChannel) QueueBind(string, string, string, bool, amqp.Table) error { return nil }

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Publish(_, _ string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, msg)
	return f.publishErr
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func TestBridgePublishesLocallyAndForwards(t *testing.T) {
	hub := NewHub(4)
	ch := newFakeChannel()
	bridge, err := NewBridge(ch, DefaultExchange, hub, quietLogger())
	require.NoError(t, err)

	user := uuid.New()
	sub := hub.Subscribe(user)
	sub.Start()
	defer sub.Stop()

	bridge.Publish(Event{Collection: CollectionMenu, Action: ActionCreated, ID: "m1", UserID: user})

	require.Len(t, sub.Events(), 1)
	require.Len(t, ch.published, 1)

	var env envelope
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &env))
	assert.Equal(t, "m1", env.Event.ID)
	assert.Equal(t, bridge.origin, env.Origin)
}

func TestBridgeBrokerFailureStillDeliversLocally(t *testing.T) {
	hub := NewHub(4)
	ch := newFakeChannel()
	ch.publishErr = errors.New("channel closed")
	bridge, err := NewBridge(ch, DefaultExchange, hub, quietLogger())
	require.NoError(t, err)

	user := uuid.New()
	sub := hub.Subscribe(user)
	sub.Start()
	defer sub.Stop()

	bridge.Publish(Event{Collection: CollectionTasks, UserID: user})
	assert.Len(t, sub.Events(), 1)
}

func TestBridgeRunDeliversRemoteEvents(t *testing.T) {
	hub := NewHub(4)
	ch := newFakeChannel()
	bridge, err := NewBridge(ch, DefaultExchange, hub, quietLogger())
	require.NoError(t, err)

	user := uuid.New()
	sub := hub.Subscribe(user)
	sub.Start()
	defer sub.Stop()

	remote, _ := json.Marshal(envelope{Origin: "other", Event: Event{Collection: CollectionTasks, ID: "t9", UserID: user}})
	own, _ := json.Marshal(envelope{Origin: bridge.origin, Event: Event{Collection: CollectionTasks, ID: "own", UserID: user}})
	ch.deliveries <- amqp.Delivery{Body: own}
	ch.deliveries <- amqp.Delivery{Body: []byte("not json")}
	ch.deliveries <- amqp.Delivery{Body: remote}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bridge.Run(ctx) }()

	select {
	case ev := <-sub.Events():
		assert.Equal(t, "t9", ev.ID)
	case <-time.After(time.Second):
		t.Fatal("remote event not delivered")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestBridgeRunStopsWhenDeliveriesClose(t *testing.T) {
	ch := newFakeChannel()
	bridge, err := NewBridge(ch, DefaultExchange, NewHub(1), quietLogger())
	require.NoError(t, err)

	close(ch.deliveries)
	assert.Error(t, bridge.Run(context.Background()))
}
