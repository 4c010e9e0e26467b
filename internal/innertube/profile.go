package innertube

import "net/http"

// ClientProfile describes one first-party client persona. Profiles are
// static: they are declared once in clients.go and never mutated.
type ClientProfile struct {
	// ID is the registry/profile alias used for ordering and diagnostics
	// (e.g. "web_embedded"), distinct from the Innertube clientName
	// ("WEB_EMBEDDED_PLAYER").
	ID      string
	Name    string
	Version string
	APIKey  string

	// UserAgent for every request made as this persona. Empty selects the
	// package default desktop agent.
	UserAgent string

	// ContextNameID is the numeric client identifier sent as the
	// X-Youtube-Client-Name header.
	ContextNameID int

	// RequireJSPlayer marks personas whose player responses reference the
	// JS player: requests carry playbackContext.signatureTimestamp and
	// stream URLs may arrive with ciphered signatures.
	RequireJSPlayer bool

	// AndroidSDKVersion is included in the client context when non-zero.
	AndroidSDKVersion int

	Host    string
	Screen  string // "EMBED" for embedded players
	Headers http.Header

	// Priority orders personas during fallback; lower tries first.
	Priority int
}

// UserAgentOrDefault returns the persona user agent, falling back to the
// package default.
func (p ClientProfile) UserAgentOrDefault() string {
	if p.UserAgent != "" {
		return p.UserAgent
	}
	return DefaultUserAgent
}

// IsEmbedded reports whether the persona presents as an embedded player.
func (p ClientProfile) IsEmbedded() bool {
	return p.Screen == "EMBED"
}

// Registry resolves persona aliases to profiles.
type Registry interface {
	Get(name string) (ClientProfile, bool)
	All() []ClientProfile
}
