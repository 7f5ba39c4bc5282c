package content

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/storefront-bff/internal/domain"
)

var (
	sectionTypePattern = regexp.MustCompile(`^[a-z0-9_-]{0,64}$`)
	// user message subpaths: "", "unread/", "<id>/", "<id>/read/" and similar
	messagePathPattern = regexp.MustCompile(`^([A-Za-z0-9_-]+/)*$`)
)

// Service proxies CMS content the BFF does not interpret.
type Service interface {
	Sections(ctx context.Context, sectionType string) (json.RawMessage, error)
	UserMessages(ctx context.Context, subpath, rawQuery, bearer string) (json.RawMessage, error)
}

type contentBackend interface {
	Sections(ctx context.Context, sectionType string) (json.RawMessage, error)
	UserMessages(ctx context.Context, subpath, rawQuery, bearer string) (json.RawMessage, error)
}

type service struct {
	backend contentBackend
}

func NewService(backend contentBackend) Service {
	return &service{backend: backend}
}

func (s *service) Sections(ctx context.Context, sectionType string) (json.RawMessage, error) {
	if !sectionTypePattern.MatchString(sectionType) {
		return nil, fmt.Errorf("section type %q: %w", sectionType, domain.ErrBadRequest)
	}
	return s.backend.Sections(ctx, sectionType)
}

// UserMessages requires the caller's bearer token; the backend decides what
// the holder may read.
func (s *service) UserMessages(ctx context.Context, subpath, rawQuery, bearer string) (json.RawMessage, error) {
	if bearer == "" {
		return nil, domain.ErrUnauthorized
	}
	subpath = strings.TrimLeft(subpath, "/")
	if subpath != "" && !strings.HasSuffix(subpath, "/") {
		subpath += "/"
	}
	if !messagePathPattern.MatchString(subpath) {
		return nil, fmt.Errorf("message path %q: %w", subpath, domain.ErrBadRequest)
	}
	return s.backend.UserMessages(ctx, subpath, rawQuery, bearer)
}
