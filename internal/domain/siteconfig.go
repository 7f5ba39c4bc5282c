package domain

// SiteConfiguration is the flat CMS record behind headers, footers and
// policy pages. Localised fields come in _en / _ar pairs.
type SiteConfiguration struct {
	SiteNameEn       string `json:"site_name_en"`
	SiteNameAr       string `json:"site_name_ar"`
	TaglineEn        string `json:"tagline_en"`
	TaglineAr        string `json:"tagline_ar"`
	ContactEmail     string `json:"contact_email"`
	SupportEmail     string `json:"support_email"`
	ContactPhone     string `json:"contact_phone"`
	WhatsAppNumber   string `json:"whatsapp_number"`
	AddressEn        string `json:"address_en"`
	AddressAr        string `json:"address_ar"`
	FacebookURL      string `json:"facebook_url"`
	InstagramURL     string `json:"instagram_url"`
	TwitterURL       string `json:"twitter_url"`
	TikTokURL        string `json:"tiktok_url"`
	YouTubeURL       string `json:"youtube_url"`
	FooterTextEn     string `json:"footer_text_en"`
	FooterTextAr     string `json:"footer_text_ar"`
	ShippingPolicyEn string `json:"shipping_policy_en"`
	ShippingPolicyAr string `json:"shipping_policy_ar"`
	ReturnPolicyEn   string `json:"return_policy_en"`
	ReturnPolicyAr   string `json:"return_policy_ar"`
	PrivacyPolicyEn  string `json:"privacy_policy_en"`
	PrivacyPolicyAr  string `json:"privacy_policy_ar"`
	TermsEn          string `json:"terms_en"`
	TermsAr          string `json:"terms_ar"`
}

// DefaultSiteConfiguration is served when the backend cannot be reached.
// A fresh value is returned on each call so callers cannot corrupt it.
func DefaultSiteConfiguration() *SiteConfiguration {
	return &SiteConfiguration{
		SiteNameEn:       "Storefront",
		SiteNameAr:       "المتجر",
		TaglineEn:        "Quality you can feel",
		TaglineAr:        "جودة تشعر بها",
		ContactEmail:     "hello@storefront.example",
		SupportEmail:     "support@storefront.example",
		ContactPhone:     "+20 100 000 0000",
		WhatsAppNumber:   "+201000000000",
		AddressEn:        "Cairo, Egypt",
		AddressAr:        "القاهرة، مصر",
		FacebookURL:      "https://facebook.com/storefront",
		InstagramURL:     "https://instagram.com/storefront",
		FooterTextEn:     "All rights reserved.",
		FooterTextAr:     "جميع الحقوق محفوظة.",
		ShippingPolicyEn: "Orders ship within 2-5 business days.",
		ShippingPolicyAr: "يتم شحن الطلبات خلال 2-5 أيام عمل.",
		ReturnPolicyEn:   "Unworn items can be returned within 14 days.",
		ReturnPolicyAr:   "يمكن إرجاع المنتجات غير المستخدمة خلال 14 يومًا.",
		PrivacyPolicyEn:  "We never sell your personal data.",
		PrivacyPolicyAr:  "نحن لا نبيع بياناتك الشخصية أبدًا.",
		TermsEn:          "By ordering you accept our terms of sale.",
		TermsAr:          "بإتمام الطلب فإنك توافق على شروط البيع.",
	}
}
