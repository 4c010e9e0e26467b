package playerjs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeFetcher struct {
	pages      map[string][]byte
	scripts    map[string][]byte
	pageCalls  int
	scriptURLs []string
}

func (f *fakeFetcher) FetchPage(ctx context.Context, rawURL, userAgent string) ([]byte, error) {
	f.pageCalls++
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("page not found")
	}
	return body, nil
}

func (f *fakeFetcher) FetchScript(ctx context.Context, rawURL string) ([]byte, error) {
	f.scriptURLs = append(f.scriptURLs, rawURL)
	body, ok := f.scripts[rawURL]
	if !ok {
		return nil, errors.New("script not found")
	}
	return body, nil
}

const embedPage = `<html><head>
<script>var ytcfg={};ytcfg.set({"PLAYER_JS_URL":"ignored","jsUrl":"\/s\/player\/1798f86c\/player_ias.vflset\/ko_KR\/base.js"});</script>
</head><body></body></html>`

func TestPlayerURLFromEmbedPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://www.youtube.com/embed/": []byte(embedPage),
	}}
	r := NewResolver(fetcher, ResolverConfig{})

	got, err := r.PlayerURL(context.Background())
	if err != nil {
		t.Fatalf("PlayerURL() error = %v", err)
	}
	want := "https://www.youtube.com/s/player/1798f86c/player_ias.vflset/en_US/base.js"
	if got != want {
		t.Fatalf("PlayerURL() = %q, want %q", got, want)
	}

	if _, err := r.PlayerURL(context.Background()); err != nil {
		t.Fatalf("PlayerURL() second call error = %v", err)
	}
	if fetcher.pageCalls != 1 {
		t.Fatalf("pageCalls = %d, want 1 (second call served from cache)", fetcher.pageCalls)
	}
}

func TestPlayerURLRegexFallback(t *testing.T) {
	page := `<html><body><div data-player="/s/player/abcd1234/player_ias.vflset/en_US/base.js"></div></body></html>`
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://www.youtube.com/embed/": []byte(page),
	}}
	r := NewResolver(fetcher, ResolverConfig{})

	got, err := r.PlayerURL(context.Background())
	if err != nil {
		t.Fatalf("PlayerURL() error = %v", err)
	}
	if got != "https://www.youtube.com/s/player/abcd1234/player_ias.vflset/en_US/base.js" {
		t.Fatalf("PlayerURL() = %q", got)
	}
}

func TestPlayerURLNotFound(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://www.youtube.com/embed/": []byte("<html><body>nothing here</body></html>"),
	}}
	r := NewResolver(fetcher, ResolverConfig{})
	_, err := r.PlayerURL(context.Background())
	if !errors.Is(err, ErrPlayerURLNotFound) {
		t.Fatalf("PlayerURL() error = %v, want ErrPlayerURLNotFound", err)
	}
}

func TestPlayerURLTTLExpiry(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{
		"https://www.youtube.com/embed/": []byte(embedPage),
	}}
	r := NewResolver(fetcher, ResolverConfig{TTL: time.Millisecond})

	if _, err := r.PlayerURL(context.Background()); err != nil {
		t.Fatalf("PlayerURL() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := r.PlayerURL(context.Background()); err != nil {
		t.Fatalf("PlayerURL() after expiry error = %v", err)
	}
	if fetcher.pageCalls != 2 {
		t.Fatalf("pageCalls = %d, want 2 (expired entry refetched)", fetcher.pageCalls)
	}
}

func TestPlayerURLPinned(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := NewResolver(fetcher, ResolverConfig{
		PlayerURL: "/s/player/zzzz9999/player_ias.vflset/ja_JP/base.js",
	})
	got, err := r.PlayerURL(context.Background())
	if err != nil {
		t.Fatalf("PlayerURL() error = %v", err)
	}
	if got != "https://www.youtube.com/s/player/zzzz9999/player_ias.vflset/en_US/base.js" {
		t.Fatalf("PlayerURL() = %q", got)
	}
	if fetcher.pageCalls != 0 {
		t.Fatalf("pinned player url must not trigger discovery, pageCalls = %d", fetcher.pageCalls)
	}
}

func TestScriptReturnsBodyAndVersion(t *testing.T) {
	scriptURL := "https://www.youtube.com/s/player/1798f86c/player_ias.vflset/en_US/base.js"
	fetcher := &fakeFetcher{
		pages:   map[string][]byte{"https://www.youtube.com/embed/": []byte(embedPage)},
		scripts: map[string][]byte{scriptURL: []byte("var a=1;")},
	}
	r := NewResolver(fetcher, ResolverConfig{})

	body, version, err := r.Script(context.Background())
	if err != nil {
		t.Fatalf("Script() error = %v", err)
	}
	if string(body) != "var a=1;" {
		t.Fatalf("Script() body = %q", body)
	}
	if version != "1798f86c" {
		t.Fatalf("Script() version = %q", version)
	}
}
