package model

// Prayer is one row on the athan signage page.
type Prayer struct {
	Name   string `json:"name"`   // "FAJR", "DHUHR", ...
	Time   string `json:"time"`   // "05:12"
	Period string `json:"period"` // "AM" or "PM"
	Next   bool   `json:"next"`
}

type AthanPageData struct {
	City      string
	Date      string // "AUGUST 5, 2025"
	Prayers   []Prayer
	NextName  string
	Countdown string
}
