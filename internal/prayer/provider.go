package prayer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

const DefaultBaseURL = "https://api.aladhan.com/v1"

// ErrNoTimings is returned when the upstream body has no data.timings object.
var ErrNoTimings = errors.New("prayer: upstream response has no timings")

// Location is the fixed city/country/calculation-method query.
type Location struct {
	City    string
	Country string
	Method  int
}

// ScheduleCache is an optional shared cache behind the in-process LRU.
type ScheduleCache interface {
	GetSchedule(ctx context.Context, key string) (Schedule, bool)
	SetSchedule(ctx context.Context, key string, s Schedule, ttl time.Duration)
}

// Provider fetches today's schedule for one venue.
type Provider struct {
	baseURL string
	where   Location
	venue   *time.Location
	client  *http.Client
	clock   clockwork.Clock
	retries uint64
	recent  *lru.Cache[string, Schedule]
	shared  ScheduleCache
}

type ProviderOption func(*Provider)

func WithHTTPClient(c *http.Client) ProviderOption { return func(p *Provider) { p.client = c } }
func WithClock(c clockwork.Clock) ProviderOption   { return func(p *Provider) { p.clock = c } }
func WithRetries(n uint64) ProviderOption          { return func(p *Provider) { p.retries = n } }
func WithCache(c ScheduleCache) ProviderOption     { return func(p *Provider) { p.shared = c } }

func NewProvider(baseURL string, where Location, venue *time.Location, opts ...ProviderOption) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if venue == nil {
		venue = time.Local
	}
	recent, _ := lru.New[string, Schedule](8)
	p := &Provider{
		baseURL: baseURL,
		where:   where,
		venue:   venue,
		client:  &http.Client{Timeout: 20 * time.Second},
		clock:   clockwork.NewRealClock(),
		retries: 3,
		recent:  recent,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Venue() *time.Location { return p.venue }
func (p *Provider) City() string          { return p.where.City }

// Today returns the schedule for the venue's current calendar date.
func (p *Provider) Today(ctx context.Context) (Schedule, error) {
	day := p.clock.Now().In(p.venue)
	key := fmt.Sprintf("prayer:%s:%s:%d:%s", p.where.City, p.where.Country, p.where.Method, day.Format("2006-01-02"))

	if s, ok := p.recent.Get(key); ok {
		return clone(s), nil
	}
	if p.shared != nil {
		if s, ok := p.shared.GetSchedule(ctx, key); ok {
			p.recent.Add(key, s)
			return clone(s), nil
		}
	}

	var s Schedule
	backoff := retry.WithMaxRetries(p.retries, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		s, err = p.fetch(ctx, day)
		var te transientError
		if errors.As(err, &te) {
			log.Warn().Err(err).Str("city", p.where.City).Msg("[prayer] upstream fetch failed, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("city", p.where.City).Msg("[prayer] could not load schedule")
		return nil, err
	}

	p.recent.Add(key, s)
	if p.shared != nil {
		p.shared.SetSchedule(ctx, key, s, 24*time.Hour)
	}
	return clone(s), nil
}

// transientError marks failures worth another attempt (transport, 5xx).
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

type timingsResponse struct {
	Data *struct {
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

func (p *Provider) fetch(ctx context.Context, day time.Time) (Schedule, error) {
	q := url.Values{}
	q.Set("city", p.where.City)
	q.Set("country", p.where.Country)
	q.Set("method", fmt.Sprint(p.where.Method))
	endpoint := fmt.Sprintf("%s/timingsByCity/%s?%s", p.baseURL, day.Format("02-01-2006"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transientError{fmt.Errorf("failed to make request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, transientError{fmt.Errorf("upstream returned status code: %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upstream returned status code: %d, response: %s", resp.StatusCode, body)
	}

	var body timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode timings: %w", err)
	}
	if body.Data == nil || body.Data.Timings == nil {
		return nil, ErrNoTimings
	}

	s := make(Schedule, len(Keys))
	for _, k := range Keys {
		s[k] = normalizeClock(body.Data.Timings[string(k)])
	}
	return s, nil
}

func clone(s Schedule) Schedule {
	out := make(Schedule, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
