package model

import "time"

// Record is any row the server identifies.
type Record interface {
	RecordID() string
}

const (
	EventOneOff    = "oneoff"
	EventRecurring = "recurring"
)

type Event struct {
	ID        string    `db:"id"          json:"id"`
	Title     string    `db:"title"       json:"title"`
	Kind      string    `db:"kind"        json:"kind"`
	EventDate string    `db:"event_date"  json:"event_date"`
	EventTime string    `db:"event_time"  json:"event_time"`
	WhenText  string    `db:"when_text"   json:"when_text"`
	Note      string    `db:"note"        json:"note"`
	CreatedAt time.Time `db:"created_at"  json:"created_at"`
}

func (e Event) RecordID() string { return e.ID }

func (e *Event) Identify(id string, created time.Time) { e.ID, e.CreatedAt = id, created }

type Program struct {
	ID          string    `db:"id"           json:"id"`
	Title       string    `db:"title"        json:"title"`
	Grades      string    `db:"grades"       json:"grades"`
	Description string    `db:"description"  json:"description"`
	Days        string    `db:"days"         json:"days"`
	Time        string    `db:"time"         json:"time"`
	Note        string    `db:"note"         json:"note"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

func (p Program) RecordID() string { return p.ID }

func (p *Program) Identify(id string, created time.Time) { p.ID, p.CreatedAt = id, created }

type Contact struct {
	ID        string    `db:"id"          json:"id"`
	Role      string    `db:"role"        json:"role"`
	Name      string    `db:"name"        json:"name"`
	Email     string    `db:"email"       json:"email"`
	Phone     string    `db:"phone"       json:"phone"`
	CreatedAt time.Time `db:"created_at"  json:"created_at"`
}

func (c Contact) RecordID() string { return c.ID }

func (c *Contact) Identify(id string, created time.Time) { c.ID, c.CreatedAt = id, created }

type GalleryItem struct {
	ID        string    `db:"id"          json:"id"`
	Title     string    `db:"title"       json:"title"`
	ImageURL  string    `db:"image_url"   json:"image_url"`
	CreatedAt time.Time `db:"created_at"  json:"created_at"`
}

func (g GalleryItem) RecordID() string { return g.ID }

func (g *GalleryItem) Identify(id string, created time.Time) { g.ID, g.CreatedAt = id, created }

// FooterLink is the only collection with an explicit ordering key.
type FooterLink struct {
	ID        string    `db:"id"          json:"id"`
	Label     string    `db:"label"       json:"label"`
	URL       string    `db:"url"         json:"url"`
	SortOrder int       `db:"sort_order"  json:"sort_order"`
	CreatedAt time.Time `db:"created_at"  json:"created_at"`
}

func (l FooterLink) RecordID() string { return l.ID }

func (l *FooterLink) Identify(id string, created time.Time) { l.ID, l.CreatedAt = id, created }
