// Package reference serves the static lookup tables: shipping regions,
// coupons and brand constants.
package reference

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/storefront-bff/internal/domain"
)

//go:embed data/reference.json
var embedded []byte

type Service interface {
	Regions() []domain.Region
	Region(name string) (*domain.Region, error)
	ShippingCost(region string) (float64, error)
	Localities(region string) ([]string, error)
	Coupon(code string) (*domain.Coupon, error)
	Brand() domain.Brand
}

type objectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Embedded returns the tables compiled into the binary.
func Embedded() (*domain.ReferenceData, error) {
	return Parse(embedded)
}

// Load returns the tables from the object at key when a fetcher is
// configured, falling back to the embedded copy if it is missing or invalid.
func Load(ctx context.Context, fetcher objectFetcher, key string) (*domain.ReferenceData, error) {
	if fetcher == nil || key == "" {
		return Embedded()
	}
	raw, err := fetcher.Fetch(ctx, key)
	if err == nil {
		data, perr := Parse(raw)
		if perr == nil {
			slog.Info("loaded reference data override", "key", key, "regions", len(data.Regions))
			return data, nil
		}
		err = perr
	}
	slog.Warn("reference data override unusable, using embedded tables", "key", key, "err", err)
	return Embedded()
}

// Parse decodes and checks a reference document.
func Parse(raw []byte) (*domain.ReferenceData, error) {
	var data domain.ReferenceData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode reference data: %w", err)
	}
	if len(data.Regions) == 0 {
		return nil, fmt.Errorf("reference data has no regions")
	}
	seen := make(map[string]bool, len(data.Regions))
	for _, r := range data.Regions {
		k := strings.ToLower(r.Name)
		if k == "" || seen[k] {
			return nil, fmt.Errorf("reference data: empty or duplicate region %q", r.Name)
		}
		if r.ShippingCost < 0 {
			return nil, fmt.Errorf("reference data: negative shipping cost for %q", r.Name)
		}
		seen[k] = true
	}
	return &data, nil
}

type service struct {
	data    *domain.ReferenceData
	regions map[string]int
	coupons map[string]int
}

func NewService(data *domain.ReferenceData) Service {
	s := &service{
		data:    data,
		regions: make(map[string]int, len(data.Regions)),
		coupons: make(map[string]int, len(data.Coupons)),
	}
	for i, r := range data.Regions {
		s.regions[strings.ToLower(r.Name)] = i
	}
	for i, c := range data.Coupons {
		s.coupons[strings.ToUpper(c.Code)] = i
	}
	return s
}

func (s *service) Regions() []domain.Region {
	out := make([]domain.Region, len(s.data.Regions))
	copy(out, s.data.Regions)
	return out
}

func (s *service) Region(name string) (*domain.Region, error) {
	i, ok := s.regions[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("region %q: %w", name, domain.ErrNotFound)
	}
	r := s.data.Regions[i]
	r.Localities = append([]string(nil), r.Localities...)
	return &r, nil
}

func (s *service) ShippingCost(region string) (float64, error) {
	r, err := s.Region(region)
	if err != nil {
		return 0, err
	}
	return r.ShippingCost, nil
}

func (s *service) Localities(region string) ([]string, error) {
	r, err := s.Region(region)
	if err != nil {
		return nil, err
	}
	return r.Localities, nil
}

// Coupon looks up a code case-insensitively. Inactive coupons are returned
// as well; callers decide what to do with them.
func (s *service) Coupon(code string) (*domain.Coupon, error) {
	i, ok := s.coupons[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, fmt.Errorf("coupon %q: %w", code, domain.ErrNotFound)
	}
	c := s.data.Coupons[i]
	return &c, nil
}

func (s *service) Brand() domain.Brand {
	return s.data.Brand
}
