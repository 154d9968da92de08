package model

// SiteConfig is the single-row branding/content document.
type SiteConfig struct {
	ID                   int    `db:"id"                      json:"id"                      yaml:"-"`
	BrandName            string `db:"brand_name"              json:"brand_name"              yaml:"brand_name"`
	BrandSubtitle        string `db:"brand_subtitle"          json:"brand_subtitle"          yaml:"brand_subtitle"`
	BrandEst             string `db:"brand_est"               json:"brand_est"               yaml:"brand_est"`
	BrandAddress         string `db:"brand_address"           json:"brand_address"           yaml:"brand_address"`
	BrandEmail           string `db:"brand_email"             json:"brand_email"             yaml:"brand_email"`
	BrandPhone           string `db:"brand_phone"             json:"brand_phone"             yaml:"brand_phone"`
	LogoURL              string `db:"logo_url"                json:"logo_url"                yaml:"logo_url"`
	HeroHeadline         string `db:"hero_headline"           json:"hero_headline"           yaml:"hero_headline"`
	HeroBody             string `db:"hero_body"               json:"hero_body"               yaml:"hero_body"`
	HeroImageURL         string `db:"hero_image_url"          json:"hero_image_url"          yaml:"hero_image_url"`
	HeroImageFallbackURL string `db:"hero_image_fallback_url" json:"hero_image_fallback_url" yaml:"hero_image_fallback_url"`
	LiveVideoURL         string `db:"live_video_url"          json:"live_video_url"          yaml:"live_video_url"`
	FallbackVideoURL     string `db:"fallback_video_url"      json:"fallback_video_url"      yaml:"fallback_video_url"`
	BroadcastName        string `db:"broadcast_name"          json:"broadcast_name"          yaml:"broadcast_name"`
	BroadcastDate        string `db:"broadcast_date"          json:"broadcast_date"          yaml:"broadcast_date"`
	BroadcastTime        string `db:"broadcast_time"          json:"broadcast_time"          yaml:"broadcast_time"`
	AboutText            string `db:"about_text"              json:"about_text"              yaml:"about_text"`
	DonationsTitle       string `db:"donations_title"         json:"donations_title"         yaml:"donations_title"`
	DonationsBody        string `db:"donations_body"          json:"donations_body"          yaml:"donations_body"`
	DonationsDetails     string `db:"donations_details"       json:"donations_details"       yaml:"donations_details"`
}

// SiteEditableFields is the allow-list for partial site-config updates.
// Keys are JSON field names and double as column names.
var SiteEditableFields = map[string]struct{}{
	"brand_name":              {},
	"brand_subtitle":          {},
	"brand_est":               {},
	"brand_address":           {},
	"brand_email":             {},
	"brand_phone":             {},
	"logo_url":                {},
	"hero_headline":           {},
	"hero_body":               {},
	"hero_image_url":          {},
	"hero_image_fallback_url": {},
	"live_video_url":          {},
	"fallback_video_url":      {},
	"broadcast_name":          {},
	"broadcast_date":          {},
	"broadcast_time":          {},
	"about_text":              {},
	"donations_title":         {},
	"donations_body":          {},
	"donations_details":       {},
}

// FilterSitePatch drops every key that is not in SiteEditableFields.
func FilterSitePatch(patch map[string]any) map[string]any {
	out := make(map[string]any, len(patch))
	for k, v := range patch {
		if _, ok := SiteEditableFields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// DefaultSite is shown before anything has been fetched or cached.
func DefaultSite() SiteConfig {
	return SiteConfig{
		ID:             1,
		BrandName:      "Masjid",
		BrandSubtitle:  "A house of prayer, learning and community",
		HeroHeadline:   "Welcome",
		HeroBody:       "Join us for the daily prayers, weekly programs and community events.",
		DonationsTitle: "Support the masjid",
		DonationsBody:  "Your contributions keep the doors open.",
	}
}
