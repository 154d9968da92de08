// Package display drives a signage screen: the next prayer, its countdown
// and the scheduled broadcast, re-rendered once a second.
package display

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/masjid/internal/clock"
	"github.com/Nixie-Tech-LLC/masjid/internal/content"
	"github.com/Nixie-Tech-LLC/masjid/internal/loadable"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/prayer"
)

// ScheduleRetry is how long a board waits before asking for a schedule again
// after a failed fetch.
const ScheduleRetry = time.Minute

// Schedules supplies today's prayer schedule. *prayer.Provider implements it.
type Schedules interface {
	Today(ctx context.Context) (prayer.Schedule, error)
}

// Content reloads the board's store. *content.Controller implements it.
type Content interface {
	ReloadAll(ctx context.Context) error
	Close()
}

// Frame is everything a screen shows at one instant.
type Frame struct {
	Display       string          `json:"display"`
	At            time.Time       `json:"at"`
	Brand         string          `json:"brand"`
	Subtitle      string          `json:"subtitle,omitempty"`
	Schedule      string          `json:"schedule"`
	Prayers       []model.Prayer  `json:"prayers"`
	Next          *prayer.Next    `json:"next,omitempty"`
	NextCountdown string          `json:"next_countdown,omitempty"`
	Broadcast     *BroadcastFrame `json:"broadcast,omitempty"`
}

type BroadcastFrame = prayer.Broadcast

// Board is the root controller of one display. It owns the store, the
// schedule state and the time source, and passes them down explicitly.
type Board struct {
	name      string
	store     *content.Store
	content   Content
	schedules Schedules
	clock     *clock.TimeSource
	venue     *time.Location
	publisher Publisher

	mu          sync.RWMutex
	schedule    loadable.Loadable[prayer.Schedule]
	scheduleDay string
	lastAttempt time.Time
	changes     chan struct{}
}

type Option func(*Board)

func WithPublisher(p Publisher) Option { return func(b *Board) { b.publisher = p } }

// WithVenue sets the zone the schedule and broadcast are expressed in.
func WithVenue(loc *time.Location) Option { return func(b *Board) { b.venue = loc } }

func New(name string, store *content.Store, c Content, schedules Schedules, ts *clock.TimeSource, opts ...Option) *Board {
	b := &Board{
		name:      name,
		store:     store,
		content:   c,
		schedules: schedules,
		clock:     ts,
		venue:     time.Local,
		changes:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.publisher == nil {
		b.publisher = LogPublisher{}
	}
	return b
}

// Schedule reports the current schedule state.
func (b *Board) Schedule() loadable.Loadable[prayer.Schedule] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.schedule
}

// Frame renders the board at now. It only reads state; an unloaded or
// failed schedule renders without a next prayer.
func (b *Board) Frame(now time.Time) Frame {
	now = now.In(b.venue)
	site, _ := b.store.Site()

	f := Frame{
		Display:  b.name,
		At:       now,
		Brand:    site.BrandName,
		Subtitle: site.BrandSubtitle,
	}

	sched := b.Schedule()
	f.Schedule = sched.Status().String()
	s, _ := sched.Get()
	f.Prayers = prayer.Table(now, s)
	if next, ok := prayer.Resolve(now, s); ok {
		f.Next = &next
		f.NextCountdown = prayer.Countdown(now, next.At)
	}

	if bc, ok := prayer.ScheduledBroadcast(site, now, b.venue); ok {
		f.Broadcast = &bc
	}
	return f
}

// ContentChanged asks the run loop to reload content. It never blocks;
// several notifications before the next reload collapse into one.
func (b *Board) ContentChanged() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Run publishes a frame every tick until ctx is done. On return the content
// controller is closed, so nothing still in flight can touch the store.
func (b *Board) Run(ctx context.Context) error {
	defer b.content.Close()

	b.refreshSchedule(ctx, b.clock.Now())
	ticks := b.clock.Ticks(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("display", b.name).Msg("[display] stopped")
			return nil
		case <-b.changes:
			if err := b.content.ReloadAll(ctx); err != nil {
				log.Warn().Err(err).Str("display", b.name).Msg("[display] reload failed; keeping current content")
			}
		case now, ok := <-ticks:
			if !ok {
				return nil
			}
			b.refreshSchedule(ctx, now)
			if err := b.publisher.Publish(ctx, b.Frame(now)); err != nil {
				log.Warn().Err(err).Str("display", b.name).Msg("[display] frame not published")
			}
		}
	}
}

// refreshSchedule fetches a schedule for the venue date of now when the
// current one belongs to another day, or when the last attempt failed long
// enough ago.
func (b *Board) refreshSchedule(ctx context.Context, now time.Time) {
	day := now.In(b.venue).Format("2006-01-02")

	b.mu.RLock()
	status, current, last := b.schedule.Status(), b.scheduleDay, b.lastAttempt
	b.mu.RUnlock()

	switch {
	case current != day:
	case status == loadable.Failed && now.Sub(last) >= ScheduleRetry:
	default:
		return
	}

	s, err := b.schedules.Today(ctx)
	if err != nil {
		log.Error().Err(err).Str("display", b.name).Msg("[display] prayer schedule unavailable")
	}

	b.mu.Lock()
	b.lastAttempt = now
	b.scheduleDay = day
	b.schedule = loadable.From(s, err)
	b.mu.Unlock()
}
