package display

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/mqtt"
)

// Publisher hands a rendered frame to whatever shows it.
type Publisher interface {
	Publish(ctx context.Context, f Frame) error
}

// LogPublisher writes frames to the debug log.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, f Frame) error {
	ev := log.Debug().Str("display", f.Display).Str("brand", f.Brand).Str("schedule", f.Schedule)
	if f.Next != nil {
		ev = ev.Str("next", string(f.Next.Key)).Str("countdown", f.NextCountdown)
	}
	if f.Broadcast != nil {
		ev = ev.Str("broadcast", f.Broadcast.Name).Str("broadcast_countdown", f.Broadcast.Countdown)
	}
	ev.Msg("[display] frame")
	return nil
}

// MQTTPublisher retains each frame on the display's frame topic.
type MQTTPublisher struct {
	Bus *mqtt.Bus
}

func (p MQTTPublisher) Publish(ctx context.Context, f Frame) error {
	return p.Bus.PublishRetained(ctx, p.Bus.FrameTopic(f.Display), f)
}
