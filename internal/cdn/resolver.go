package cdn

import (
	"net/url"
	"strings"
)

// URLConfig selects how public asset URLs are built
type URLConfig struct {
	// UseFrontDoor serves assets from FrontDoorURL (a CDN distribution)
	UseFrontDoor bool
	FrontDoorURL string
	// BaseURL is the storage endpoint used when the front door is off
	BaseURL string
	Bucket  string
}

// URLResolver builds public URLs from the scheme and host of a base URL.
// Any path on the base URL is dropped.
type URLResolver struct {
	scheme string
	host   string
}

// NewURLResolver validates cfg once so Resolve cannot fail
func NewURLResolver(cfg URLConfig) (*URLResolver, error) {
	raw := cfg.BaseURL
	field := "url"
	if cfg.UseFrontDoor {
		raw = cfg.FrontDoorURL
		field = "front_door.cdn_url"
	}

	if strings.TrimSpace(raw) == "" {
		return nil, configError("resolve", "%s required", field)
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, configError("resolve", "invalid %s %q: %w", field, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, configError("resolve", "invalid %s %q: scheme and host required", field, raw)
	}

	host := u.Host
	if !cfg.UseFrontDoor && cfg.Bucket != "" && !strings.HasPrefix(host, cfg.Bucket+".") {
		host = cfg.Bucket + "." + host
	}

	return &URLResolver{
		scheme: u.Scheme,
		host:   strings.TrimRight(host, "/"),
	}, nil
}

// Resolve returns the public URL of relPath. Exactly one slash separates the
// base from the path.
func (r *URLResolver) Resolve(relPath string) string {
	p := strings.TrimLeft(NormalizePath(relPath), "/")
	return r.scheme + "://" + r.host + "/" + p
}

// ResolveURL builds the public URL of relPath from cfg
func ResolveURL(relPath string, cfg URLConfig) (string, error) {
	r, err := NewURLResolver(cfg)
	if err != nil {
		return "", err
	}
	return r.Resolve(relPath), nil
}
