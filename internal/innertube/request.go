package innertube

import "strings"

// PlayerRequest is the body of a /player call.
type PlayerRequest struct {
	Context         Context          `json:"context"`
	VideoID         string           `json:"videoId"`
	ContentCheckOk  bool             `json:"contentCheckOk,omitempty"`
	RacyCheckOk     bool             `json:"racyCheckOk,omitempty"`
	PlaybackContext *PlaybackContext `json:"playbackContext,omitempty"`
}

// SearchRequest is the body of a /search call.
type SearchRequest struct {
	Context Context `json:"context"`
	Query   string  `json:"query"`
	Params  string  `json:"params,omitempty"`
}

type Context struct {
	Client     ClientInfo     `json:"client"`
	ThirdParty *ThirdParty    `json:"thirdParty,omitempty"`
	Request    RequestContext `json:"request,omitempty"`
}

type ClientInfo struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	ClientScreen      string `json:"clientScreen,omitempty"`
	DeviceMake        string `json:"deviceMake,omitempty"`
	DeviceModel       string `json:"deviceModel,omitempty"`
	UserAgent         string `json:"userAgent,omitempty"`
	OsName            string `json:"osName,omitempty"`
	OsVersion         string `json:"osVersion,omitempty"`
	AcceptLanguage    string `json:"hl"`
	TimeZone          string `json:"timeZone,omitempty"`
	UtcOffsetMinutes  int    `json:"utcOffsetMinutes"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
}

type ThirdParty struct {
	EmbedUrl string `json:"embedUrl"`
}

type RequestContext struct {
	UseSsl                  bool     `json:"useSsl"`
	InternalExperimentFlags []string `json:"internalExperimentFlags,omitempty"`
}

type PlaybackContext struct {
	ContentPlaybackContext ContentPlaybackContext `json:"contentPlaybackContext"`
}

type ContentPlaybackContext struct {
	HTML5Preference    string `json:"html5Preference,omitempty"`
	SignatureTimestamp int    `json:"signatureTimestamp,omitempty"`
}

// RequestOptions carries per-call request knobs shared by all personas.
type RequestOptions struct {
	// Language is the hl context field; empty means "en".
	Language string

	// SignatureTimestamp is the player script's signature timestamp. Sent
	// only for personas with RequireJSPlayer.
	SignatureTimestamp int
}

// NewPlayerRequest builds a /player body for one persona.
func NewPlayerRequest(profile ClientProfile, videoID string, opts RequestOptions) *PlayerRequest {
	req := &PlayerRequest{
		VideoID:        videoID,
		ContentCheckOk: true,
		RacyCheckOk:    true,
		Context:        newContext(profile, opts),
	}
	if profile.IsEmbedded() {
		req.Context.ThirdParty = &ThirdParty{
			EmbedUrl: "https://www.youtube.com/watch?v=" + videoID,
		}
	}
	if profile.RequireJSPlayer && opts.SignatureTimestamp > 0 {
		req.PlaybackContext = &PlaybackContext{
			ContentPlaybackContext: ContentPlaybackContext{
				HTML5Preference:    "HTML5_PREF_WANTS",
				SignatureTimestamp: opts.SignatureTimestamp,
			},
		}
	}
	return req
}

// NewSearchRequest builds a /search body. Params pre-filters result kinds;
// see SearchParamsVideos.
func NewSearchRequest(profile ClientProfile, query, params string, opts RequestOptions) *SearchRequest {
	return &SearchRequest{
		Context: newContext(profile, opts),
		Query:   query,
		Params:  params,
	}
}

// SearchParamsVideos restricts search results to plain videos.
const SearchParamsVideos = "EgIQAfABAQ=="

func newContext(profile ClientProfile, opts RequestOptions) Context {
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	info := ClientInfo{
		ClientName:        profile.Name,
		ClientVersion:     profile.Version,
		ClientScreen:      profile.Screen,
		UserAgent:         profile.UserAgentOrDefault(),
		AcceptLanguage:    lang,
		TimeZone:          "UTC",
		AndroidSdkVersion: profile.AndroidSDKVersion,
	}
	applyClientContextDefaults(&info, profile)
	return Context{
		Client:  info,
		Request: RequestContext{UseSsl: true},
	}
}

func applyClientContextDefaults(client *ClientInfo, profile ClientProfile) {
	switch family(profile.Name) {
	case "ANDROID":
		client.OsName = "Android"
		client.OsVersion = "11"
		client.DeviceMake = "Google"
		client.DeviceModel = "Pixel 5"
	case "IOS":
		client.OsName = "iOS"
		client.OsVersion = "15.6"
		client.DeviceMake = "Apple"
		client.DeviceModel = "iPhone14,3"
	default:
		client.OsName = "Windows"
		client.OsVersion = "10.0"
	}
}

func family(clientName string) string {
	name := strings.ToUpper(strings.TrimSpace(clientName))
	switch {
	case strings.HasPrefix(name, "ANDROID"):
		return "ANDROID"
	case strings.HasPrefix(name, "IOS"):
		return "IOS"
	default:
		return "WEB"
	}
}
