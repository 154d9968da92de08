package packets

import (
	"time"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
	"github.com/Nixie-Tech-LLC/masjid/internal/prayer"
)

// RESPONSES FOR /api/prayer/*

// PrayerTimesResponse is today's schedule at the venue. Schedule and Next are
// null when the upstream provider could not be reached.
type PrayerTimesResponse struct {
	City      string          `json:"city"`
	Now       time.Time       `json:"now"`
	Schedule  prayer.Schedule `json:"schedule"`
	Next      *prayer.Next    `json:"next"`
	Countdown string          `json:"countdown"`
	Prayers   []model.Prayer  `json:"prayers"`
}

// PAGE DATA FOR /

// HomePage is a server-rendered snapshot; the countdowns are as of render time.
type HomePage struct {
	Site        model.SiteConfig
	Prayers     []model.Prayer
	NextName    string
	Countdown   string
	Broadcast   *prayer.Broadcast
	Events      []model.Event
	Programs    []model.Program
	Contacts    []model.Contact
	Gallery     []model.GalleryItem
	FooterLinks []model.FooterLink
	Year        int
}
