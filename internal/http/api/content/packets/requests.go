package packets

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

var stripPolicy = bluemonday.StrictPolicy()

// cleanRounds bounds how many layers of entity encoding Clean peels off.
const cleanRounds = 8

// Clean removes all markup from freeform text; pages escape on output.
// Stripping and unescaping repeat until the text is stable, so entity
// encoded tags cannot survive as live markup.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < cleanRounds; i++ {
		next := html.UnescapeString(stripPolicy.Sanitize(s))
		if next == s {
			return s
		}
		s = next
	}
	// Still changing: keep the escaped form rather than risk live markup.
	return stripPolicy.Sanitize(s)
}

// Request is a bound create/update body for a collection row.
type Request[T any] interface {
	Row(id string) T
}

type EventRequest struct {
	Title     string `json:"title" binding:"required"`
	Kind      string `json:"kind" binding:"omitempty,oneof=oneoff recurring"`
	EventDate string `json:"event_date" binding:"omitempty,datetime=2006-01-02"`
	EventTime string `json:"event_time"`
	WhenText  string `json:"when_text"`
	Note      string `json:"note"`
}

func (r EventRequest) Row(id string) model.Event {
	kind := r.Kind
	if kind == "" {
		kind = model.EventOneOff
	}
	return model.Event{
		ID:        id,
		Title:     Clean(r.Title),
		Kind:      kind,
		EventDate: r.EventDate,
		EventTime: Clean(r.EventTime),
		WhenText:  Clean(r.WhenText),
		Note:      Clean(r.Note),
	}
}

type ProgramRequest struct {
	Title       string `json:"title" binding:"required"`
	Grades      string `json:"grades"`
	Description string `json:"description"`
	Days        string `json:"days"`
	Time        string `json:"time"`
	Note        string `json:"note"`
}

func (r ProgramRequest) Row(id string) model.Program {
	return model.Program{
		ID:          id,
		Title:       Clean(r.Title),
		Grades:      Clean(r.Grades),
		Description: Clean(r.Description),
		Days:        Clean(r.Days),
		Time:        Clean(r.Time),
		Note:        Clean(r.Note),
	}
}

type ContactRequest struct {
	Role  string `json:"role"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

func (r ContactRequest) Row(id string) model.Contact {
	return model.Contact{
		ID:    id,
		Role:  Clean(r.Role),
		Name:  Clean(r.Name),
		Email: strings.TrimSpace(r.Email),
		Phone: Clean(r.Phone),
	}
}

type GalleryRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url" binding:"required,url"`
}

func (r GalleryRequest) Row(id string) model.GalleryItem {
	return model.GalleryItem{ID: id, Title: Clean(r.Title), ImageURL: strings.TrimSpace(r.ImageURL)}
}

type FooterLinkRequest struct {
	Label     string `json:"label" binding:"required"`
	URL       string `json:"url" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

func (r FooterLinkRequest) Row(id string) model.FooterLink {
	return model.FooterLink{ID: id, Label: Clean(r.Label), URL: strings.TrimSpace(r.URL), SortOrder: r.SortOrder}
}

// SitePatch filters a raw site update to the allow-list and strips markup
// from every value. Non-string values are rejected.
func SitePatch(raw map[string]any) (map[string]any, bool) {
	patch := model.FilterSitePatch(raw)
	for k, v := range patch {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		patch[k] = Clean(s)
	}
	return patch, true
}
