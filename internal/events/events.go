// Package events publishes transcript events on a watermill bus so other
// processes can follow the conversation.
package events

import (
	"context"
	"encoding/json"

	rstream "github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/diogo/chatview/internal/config"
	"github.com/diogo/chatview/internal/models"
	"github.com/diogo/chatview/internal/transcript"
)

// MetadataEvent is the metadata key carrying the event name
const MetadataEvent = "event"

// Bus groups the publisher and subscriber of one backend
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	closers []func() error
}

// Close releases the backend. The redis publisher and subscriber share one
// client, so a second close of it is not an error.
func (b *Bus) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c(); err != nil && !errors.Is(err, redis.ErrClosed) && first == nil {
			first = err
		}
	}
	return first
}

// NewBus builds the bus selected by cfg. It returns nil for the "none" backend.
func NewBus(cfg config.EventsConfig, logger zerolog.Logger) (*Bus, error) {
	wlog := NewZerologAdapter(logger)

	switch cfg.Backend {
	case "", config.EventsBackendNone:
		return nil, nil
	case config.EventsBackendGoChannel:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wlog)
		return &Bus{Publisher: ch, Subscriber: ch, closers: []func() error{ch.Close}}, nil
	case config.EventsBackendRedis:
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		client := redis.NewClient(&redis.Options{Addr: addr})
		marshaler := rstream.DefaultMarshallerUnmarshaller{}

		pub, err := rstream.NewPublisher(rstream.PublisherConfig{
			Client:     client,
			Marshaller: marshaler,
		}, wlog)
		if err != nil {
			_ = client.Close()
			return nil, errors.Wrap(err, "failed to create redis publisher")
		}
		sub, err := rstream.NewSubscriber(rstream.SubscriberConfig{
			Client:       client,
			Unmarshaller: marshaler,
		}, wlog)
		if err != nil {
			_ = pub.Close()
			_ = client.Close()
			return nil, errors.Wrap(err, "failed to create redis subscriber")
		}
		return &Bus{
			Publisher:  pub,
			Subscriber: sub,
			closers:    []func() error{sub.Close, pub.Close, client.Close},
		}, nil
	default:
		return nil, errors.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// Dispatcher publishes transcript events, one message per event on the topic
// named after the event
type Dispatcher struct {
	pub    message.Publisher
	logger zerolog.Logger
}

var _ transcript.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher wraps pub
func NewDispatcher(pub message.Publisher, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, logger: logger}
}

// Dispatch publishes ev. Failures are logged, never returned to the transcript.
func (d *Dispatcher) Dispatch(ev transcript.Event) {
	msg, err := NewMessage(ev)
	if err != nil {
		d.logger.Error().Err(err).Str("event", ev.Name).Msg("failed to encode event")
		return
	}
	if err := d.pub.Publish(ev.Name, msg); err != nil {
		d.logger.Error().Err(err).Str("event", ev.Name).Msg("failed to publish event")
		return
	}
	d.logger.Debug().Str("event", ev.Name).Str("uuid", msg.UUID).Msg("event published")
}

// NewMessage encodes ev as a watermill message with a JSON payload
func NewMessage(ev transcript.Event) (*message.Message, error) {
	payload, err := json.Marshal(ev.Detail)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event detail")
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(MetadataEvent, ev.Name)
	return msg, nil
}

// Decode reads the event carried by msg
func Decode(msg *message.Message) (transcript.Event, error) {
	var detail models.NewMessageEvent
	if err := json.Unmarshal(msg.Payload, &detail); err != nil {
		return transcript.Event{}, errors.Wrap(err, "failed to unmarshal event detail")
	}
	return transcript.Event{Name: msg.Metadata.Get(MetadataEvent), Detail: detail}, nil
}

// Follow calls fn for every event published under name until ctx is done.
// Payloads that do not decode are acked, logged and skipped.
func Follow(ctx context.Context, sub message.Subscriber, name string, logger zerolog.Logger, fn func(transcript.Event) error) error {
	msgs, err := sub.Subscribe(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "failed to subscribe to %s", name)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			ev, err := Decode(msg)
			if err != nil {
				msg.Ack()
				logger.Warn().Err(err).Str("uuid", msg.UUID).Msg("skipping undecodable event")
				continue
			}
			if err := fn(ev); err != nil {
				msg.Nack()
				return err
			}
			msg.Ack()
		}
	}
}
