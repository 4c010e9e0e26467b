package playerjs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
)

// ErrPlayerURLNotFound is returned when the embed page yields no player
// script reference.
var ErrPlayerURLNotFound = errors.New("player script url not found")

const (
	defaultBaseURL      = "https://www.youtube.com"
	defaultPlayerLocale = "en_US"
	defaultPlayerTTL    = 24 * time.Hour
)

var (
	jsURLRegexp      = regexp.MustCompile(`"jsUrl":"([^"]*base\.js)"`)
	playerURLRegexp  = regexp.MustCompile(`(/s/player/[A-Za-z0-9_-]+/[A-Za-z0-9._/-]*/base\.js)`)
	playerPathRegexp = regexp.MustCompile(`/s/player/([A-Za-z0-9_-]+)/`)
	localePathRegexp = regexp.MustCompile(`(?i)(player(?:_[a-z0-9]+)?\.vflset)/[a-z]{2,3}_[a-z]{2,3}/base\.js$`)
)

// Fetcher is the slice of the HTTP layer the resolver needs.
type Fetcher interface {
	FetchPage(ctx context.Context, rawURL, userAgent string) ([]byte, error)
	FetchScript(ctx context.Context, rawURL string) ([]byte, error)
}

// ResolverConfig tunes player script discovery.
type ResolverConfig struct {
	// BaseURL is the site root the embed page is fetched from.
	BaseURL string
	// PlayerURL pins the player script, skipping discovery entirely.
	PlayerURL string
	// PreferredLocale replaces the locale segment of discovered player
	// paths; every locale serves identical cipher code.
	PreferredLocale string
	// TTL bounds how long a discovered URL is reused.
	TTL time.Duration
	// UserAgent is presented when fetching the embed page.
	UserAgent string
}

// Resolver discovers the current player script URL from the embed page and
// hands out script bodies keyed by player version.
type Resolver struct {
	fetcher Fetcher
	config  ResolverConfig

	mu        sync.Mutex
	playerURL string
	fetchedAt time.Time
}

func NewResolver(fetcher Fetcher, cfg ResolverConfig) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PreferredLocale == "" {
		cfg.PreferredLocale = defaultPlayerLocale
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultPlayerTTL
	}
	return &Resolver{fetcher: fetcher, config: cfg}
}

// PlayerURL returns the absolute URL of the current player script. Discovered
// URLs are cached until the TTL lapses; the platform rolls player versions on
// the order of days, so a stale URL at worst costs one extra discovery.
func (r *Resolver) PlayerURL(ctx context.Context) (string, error) {
	if r.config.PlayerURL != "" {
		return r.absolutize(normalizePlayerPath(r.config.PlayerURL, r.config.PreferredLocale)), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.playerURL != "" && time.Since(r.fetchedAt) < r.config.TTL {
		return r.playerURL, nil
	}

	embedURL := strings.TrimRight(r.config.BaseURL, "/") + "/embed/"
	body, err := r.fetcher.FetchPage(ctx, embedURL, r.config.UserAgent)
	if err != nil {
		return "", err
	}
	path := findPlayerURL(body)
	if path == "" {
		return "", ErrPlayerURLNotFound
	}

	resolved := r.absolutize(normalizePlayerPath(path, r.config.PreferredLocale))
	r.playerURL = resolved
	r.fetchedAt = time.Now()
	return resolved, nil
}

// Script fetches the current player script and returns its body together
// with the player version parsed from the URL.
func (r *Resolver) Script(ctx context.Context) ([]byte, string, error) {
	playerURL, err := r.PlayerURL(ctx)
	if err != nil {
		return nil, "", err
	}
	version, err := VersionFromURL(playerURL)
	if err != nil {
		return nil, "", err
	}
	body, err := r.fetcher.FetchScript(ctx, playerURL)
	if err != nil {
		return nil, "", err
	}
	return body, version, nil
}

// VersionFromURL derives the player version from a script URL or path.
func VersionFromURL(playerURL string) (string, error) {
	m := playerPathRegexp.FindStringSubmatch(playerURL)
	if len(m) < 2 {
		return "", fmt.Errorf("no player version in %q", playerURL)
	}
	return m[1], nil
}

// findPlayerURL scans the embed page for the player script reference. Script
// elements are walked first since the reference lives in the inline config
// blob; a whole-document regex pass covers pages with unexpected markup.
func findPlayerURL(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	inScript := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if m := playerURLRegexp.FindSubmatch(body); len(m) > 1 {
				return string(m[1])
			}
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			text := tokenizer.Text()
			if m := jsURLRegexp.FindSubmatch(text); len(m) > 1 {
				return strings.ReplaceAll(string(m[1]), `\/`, "/")
			}
			if m := playerURLRegexp.FindSubmatch(text); len(m) > 1 {
				return string(m[1])
			}
		}
	}
}

func (r *Resolver) absolutize(playerURL string) string {
	switch {
	case strings.HasPrefix(playerURL, "//"):
		return "https:" + playerURL
	case strings.HasPrefix(playerURL, "/"):
		return strings.TrimRight(r.config.BaseURL, "/") + playerURL
	default:
		return playerURL
	}
}

// normalizePlayerPath rewrites the locale segment so equivalent localized
// paths share one cache identity.
func normalizePlayerPath(playerURL, locale string) string {
	if localePathRegexp.MatchString(playerURL) {
		return localePathRegexp.ReplaceAllString(playerURL, "${1}/"+locale+"/base.js")
	}
	return playerURL
}
