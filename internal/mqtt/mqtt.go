// Package mqtt carries change notifications from the content server to
// displays, and rendered frames from displays to screens.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBroker = "tcp://0.0.0.0:1883"
	DefaultPrefix = "masjid"

	qos        = 1
	publishTTL = 5 * time.Second
	quiesce    = 250
)

// ContentChanged is published after every successful content mutation.
type ContentChanged struct {
	Kind string    `json:"kind"`
	ID   string    `json:"id,omitempty"`
	Op   string    `json:"op"`
	At   time.Time `json:"at"`
}

// Bus is a connected client bound to one topic prefix.
type Bus struct {
	client paho.Client
	prefix string

	mu   sync.Mutex
	subs []string
}

// Connect dials brokerURL as clientID. The paho client reconnects on its own
// after the first connection succeeds.
func Connect(brokerURL, clientID, prefix string) (*Bus, error) {
	if brokerURL == "" {
		brokerURL = DefaultBroker
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(false)
	opts.OnConnect = func(paho.Client) {
		log.Info().Str("broker", brokerURL).Str("client", clientID).Msg("[mqtt] connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Warn().Err(err).Str("broker", brokerURL).Msg("[mqtt] connection lost")
	}

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return New(client, prefix), nil
}

// New wraps an already connected client.
func New(client paho.Client, prefix string) *Bus {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Bus{client: client, prefix: prefix}
}

func (b *Bus) ContentTopic() string { return b.prefix + "/content/changed" }

// FrameTopic is where display "name" publishes what it shows.
func (b *Bus) FrameTopic(name string) string { return b.prefix + "/display/" + name + "/frame" }

// PublishJSON encodes v and publishes it to topic.
func (b *Bus) PublishJSON(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode payload for %s: %w", topic, err)
	}
	return b.publish(ctx, topic, false, payload)
}

// PublishRetained publishes v as the retained message on topic, so screens
// that connect later get the latest value at once.
func (b *Bus) PublishRetained(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode payload for %s: %w", topic, err)
	}
	return b.publish(ctx, topic, true, payload)
}

func (b *Bus) publish(ctx context.Context, topic string, retained bool, payload []byte) error {
	token := b.client.Publish(topic, qos, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTTL):
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// NotifyContentChanged implements the server's change hook. Failures are
// logged only; displays also reload on their own schedule.
func (b *Bus) NotifyContentChanged(ctx context.Context, ev ContentChanged) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := b.PublishJSON(ctx, b.ContentTopic(), ev); err != nil {
		log.Warn().Err(err).Str("kind", ev.Kind).Msg("[mqtt] content change not published")
	}
}

// SubscribeContent calls fn for every content change notification.
func (b *Bus) SubscribeContent(fn func(ContentChanged)) error {
	topic := b.ContentTopic()
	token := b.client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		var ev ContentChanged
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Warn().Err(err).Str("topic", msg.Topic()).Msg("[mqtt] ignoring malformed payload")
			return
		}
		fn(ev)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}

	b.mu.Lock()
	b.subs = append(b.subs, topic)
	b.mu.Unlock()
	return nil
}

// Close unsubscribes and disconnects.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	if len(subs) > 0 {
		b.client.Unsubscribe(subs...).WaitTimeout(publishTTL)
	}
	b.client.Disconnect(quiesce)
	log.Info().Msg("[mqtt] disconnected")
}
