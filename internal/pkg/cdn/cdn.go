package cdn

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

const defaultQuality = 75

// Resolver rewrites backend media URLs onto an image CDN. A Resolver with no
// base URL passes sources through untouched.
type Resolver struct {
	base *url.URL
}

// New parses base. An empty base yields a pass-through Resolver.
func New(base string) (*Resolver, error) {
	if strings.TrimSpace(base) == "" {
		return &Resolver{}, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse cdn base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("cdn base url %q must be absolute", base)
	}
	return &Resolver{base: u}, nil
}

// Enabled reports whether a CDN base URL is configured.
func (r *Resolver) Enabled() bool { return r != nil && r.base != nil }

// ImageURL returns the CDN URL for src resized to width (0 keeps the original
// width) at the given quality (0 selects the default). Data URIs and empty
// sources are returned unchanged.
func (r *Resolver) ImageURL(src string, width, quality int) string {
	if !r.Enabled() || src == "" || strings.HasPrefix(src, "data:") {
		return src
	}
	su, err := url.Parse(src)
	if err != nil {
		return src
	}
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}

	out := *r.base
	out.Path = path.Join("/", r.base.Path, su.Path)
	q := url.Values{}
	if width > 0 {
		q.Set("w", strconv.Itoa(width))
	}
	q.Set("q", strconv.Itoa(quality))
	q.Set("format", "webp")
	out.RawQuery = q.Encode()
	return out.String()
}
