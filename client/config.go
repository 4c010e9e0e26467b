package client

import (
	"net/http"
	"time"
)

// Config holds configuration for the metadata client. The zero value is
// usable; New fills in defaults for anything left unset.
type Config struct {
	// HTTPClient issues every outbound request. If nil, a proxy-aware
	// default is built from the environment.
	HTTPClient *http.Client

	// Logger receives non-fatal warnings (dropped formats, transform
	// failures). Nil discards them.
	Logger Logger

	// ClientOrder overrides the persona trial order by alias (e.g. "web",
	// "android", "ios"). Empty means built-in priority order.
	ClientOrder []string

	// ClientSkip removes personas by alias from whatever order is in
	// effect.
	ClientSkip []string

	// Language is the hl request field. Default "en".
	Language string

	// MaxRetries is the number of extra transport attempts per persona
	// after a network failure. Zero selects the default of 2; negative
	// disables retries.
	MaxRetries int

	// InitialBackoff is the delay before the first retry, doubling per
	// attempt up to MaxBackoff. Defaults 250ms and 2s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// RequestsPerSecond throttles all outbound requests. Zero disables
	// throttling.
	RequestsPerSecond float64

	// CacheSize bounds the deciphering-program cache by player version.
	// Default 16.
	CacheSize int

	// SandboxEngine picks the JS engine for the n transform: "goja"
	// (default) or "otto".
	SandboxEngine string

	// PlayerURL pins the player script URL, skipping discovery.
	PlayerURL string

	// CookiesFile points at a Netscape cookies.txt export. Loaded into the
	// HTTP client's jar; a SAPISID cookie enables authorized requests.
	CookiesFile string

	// APIKeyOverrides replaces the built-in Innertube API key per persona
	// alias.
	APIKeyOverrides map[string]string
}

const (
	defaultLanguage       = "en"
	defaultMaxRetries     = 2
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
	defaultCacheSize      = 16
	defaultSandboxEngine  = "goja"
)

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
	if c.Language == "" {
		c.Language = defaultLanguage
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
	if c.SandboxEngine == "" {
		c.SandboxEngine = defaultSandboxEngine
	}
	return c
}
