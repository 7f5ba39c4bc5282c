package domain

import "time"

// NotificationBanner is a CMS-managed promotional strip. ShouldDisplay is
// computed server-side from the active flag and the schedule window.
type NotificationBanner struct {
	ID              int        `json:"id"`
	TitleEn         string     `json:"title_en"`
	TitleAr         string     `json:"title_ar"`
	MessageEn       string     `json:"message_en"`
	MessageAr       string     `json:"message_ar"`
	LinkURL         string     `json:"link_url,omitempty"`
	LinkTextEn      string     `json:"link_text_en,omitempty"`
	LinkTextAr      string     `json:"link_text_ar,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	BackgroundColor string     `json:"background_color,omitempty"`
	TextColor       string     `json:"text_color,omitempty"`
	Location        string     `json:"location"`
	Priority        int        `json:"priority"`
	IsDismissible   bool       `json:"is_dismissible"`
	AutoHideSeconds int        `json:"auto_hide_seconds,omitempty"`
	ShouldDisplay   bool       `json:"should_display"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
}

// BannerLocation values accepted by the banners endpoint.
const (
	BannerLocationTop      = "top"
	BannerLocationHome     = "home"
	BannerLocationCheckout = "checkout"
)
