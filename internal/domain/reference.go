package domain

// Region is one entry of the shipping geography table.
type Region struct {
	Name         string   `json:"name"`
	NameAr       string   `json:"name_ar"`
	ShippingCost float64  `json:"shipping_cost"`
	Localities   []string `json:"localities"`
}

type Coupon struct {
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	DiscountPercent float64 `json:"discount_percent"`
	Active          bool    `json:"active"`
}

// Brand holds compiled-in constants that never come from the CMS.
type Brand struct {
	Name                  string  `json:"name"`
	Currency              string  `json:"currency"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold"`
	SupportHours          string  `json:"support_hours"`
}

// ReferenceData is the full read-only table set loaded at startup.
type ReferenceData struct {
	Regions []Region `json:"regions"`
	Coupons []Coupon `json:"coupons"`
	Brand   Brand    `json:"brand"`
}
