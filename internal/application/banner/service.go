package banner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/infrastructure/metrics"
	"github.com/storefront-bff/internal/pkg/visitor"
)

// Image rendition requested from the CDN for banner artwork.
const (
	imageWidth   = 1200
	imageQuality = 80
)

const dismissedKeyPrefix = "dismissed_banners:"

// Store persists small JSON blobs by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Service interface {
	Visible(ctx context.Context, who visitor.Identity, location string) ([]domain.NotificationBanner, error)
	Dismiss(ctx context.Context, who visitor.Identity, bannerID int) error
	Dismissed(ctx context.Context, who visitor.Identity) []int
}

type bannerSource interface {
	Banners(ctx context.Context, location string) ([]domain.NotificationBanner, error)
}

type imageRewriter interface {
	ImageURL(src string, width, quality int) string
}

type service struct {
	source bannerSource
	store  Store
	images imageRewriter

	// serialises read-modify-write of dismissal sets within this process
	mu sync.Mutex
}

func NewService(source bannerSource, store Store, images imageRewriter) Service {
	return &service{source: source, store: store, images: images}
}

// Visible returns the banners for location the backend marks displayable,
// minus those this visitor dismissed, highest priority first.
func (s *service) Visible(ctx context.Context, who visitor.Identity, location string) ([]domain.NotificationBanner, error) {
	banners, err := s.source.Banners(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("fetch banners: %w", err)
	}
	dismissed := s.Dismissed(ctx, who)

	visible := make([]domain.NotificationBanner, 0, len(banners))
	for _, b := range banners {
		if !b.ShouldDisplay || slices.Contains(dismissed, b.ID) {
			continue
		}
		if b.ImageURL != "" && s.images != nil {
			b.ImageURL = s.images.ImageURL(b.ImageURL, imageWidth, imageQuality)
		}
		visible = append(visible, b)
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Priority > visible[j].Priority
	})
	return visible, nil
}

// Dismiss adds bannerID to the visitor's dismissed set and persists it.
// Dismissing an already dismissed banner is a no-op.
func (s *service) Dismiss(ctx context.Context, who visitor.Identity, bannerID int) error {
	if bannerID <= 0 {
		return fmt.Errorf("banner id %d: %w", bannerID, domain.ErrBadRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx, who)
	if err != nil {
		return err
	}
	if slices.Contains(ids, bannerID) {
		return nil
	}
	ids = append(ids, bannerID)
	slices.Sort(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode dismissed set: %w", err)
	}
	if err := s.store.Set(ctx, dismissedKey(who), data); err != nil {
		return fmt.Errorf("persist dismissed set: %w", err)
	}
	metrics.BannerDismissals.Inc()
	return nil
}

// Dismissed loads the visitor's dismissed banner ids. An unreadable or
// corrupt entry is treated as empty so banners are shown rather than lost.
func (s *service) Dismissed(ctx context.Context, who visitor.Identity) []int {
	ids, err := s.load(ctx, who)
	if err != nil {
		slog.Warn("could not load dismissed banners", "key", dismissedKey(who), "err", err)
		return []int{}
	}
	return ids
}

// load reads the dismissed set for a read-modify-write. Store errors are
// returned so a failed read never overwrites the stored set. A corrupt
// entry holds nothing recoverable and loads as empty.
func (s *service) load(ctx context.Context, who visitor.Identity) ([]int, error) {
	key := dismissedKey(who)
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load dismissed set: %w", err)
	}
	if !ok {
		return []int{}, nil
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		slog.Warn("discarding corrupt dismissed banners entry", "key", key, "err", err)
		return []int{}, nil
	}
	return ids, nil
}

func dismissedKey(who visitor.Identity) string {
	return dismissedKeyPrefix + who.Key()
}
