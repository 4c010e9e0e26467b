package innertube

// PlayerResponse is the top-level response from the /player endpoint.
type PlayerResponse struct {
	ResponseContext   ResponseContext   `json:"responseContext"`
	PlayabilityStatus PlayabilityStatus `json:"playabilityStatus"`
	StreamingData     StreamingData     `json:"streamingData"`
	VideoDetails      VideoDetails      `json:"videoDetails"`
	Microformat       Microformat       `json:"microformat"`
}

type ResponseContext struct {
	VisitorData           string                 `json:"visitorData"`
	ServiceTrackingParams []ServiceTrackingParam `json:"serviceTrackingParams"`
}

type ServiceTrackingParam struct {
	Service string          `json:"service"`
	Params  []TrackingParam `json:"params"`
}

type TrackingParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TrackingParam returns the value of one key under a tracking service
// ("GFEEDBACK", "CSI", ...), or "" when absent.
func (r *ResponseContext) TrackingParam(service, key string) string {
	for _, s := range r.ServiceTrackingParams {
		if s.Service != service {
			continue
		}
		for _, p := range s.Params {
			if p.Key == key {
				return p.Value
			}
		}
	}
	return ""
}

type PlayabilityStatus struct {
	Status            string             `json:"status"`
	Reason            string             `json:"reason"`
	PlayableInEmbed   bool               `json:"playableInEmbed"`
	LiveStreamability *LiveStreamability `json:"liveStreamability"`
}

func (p *PlayabilityStatus) IsOK() bool {
	return p.Status == "OK"
}

func (p *PlayabilityStatus) IsLive() bool {
	return p.LiveStreamability != nil
}

type LiveStreamability struct {
	LiveStreamabilityRenderer LiveStreamabilityRenderer `json:"liveStreamabilityRenderer"`
}

type LiveStreamabilityRenderer struct {
	VideoId     string `json:"videoId"`
	PollDelayMs string `json:"pollDelayMs"`
}

type StreamingData struct {
	ExpiresInSeconds string   `json:"expiresInSeconds"`
	Formats          []Format `json:"formats"`
	AdaptiveFormats  []Format `json:"adaptiveFormats"`
	DashManifestURL  string   `json:"dashManifestUrl"`
	HlsManifestURL   string   `json:"hlsManifestUrl"`
}

type Format struct {
	Itag             int    `json:"itag"`
	URL              string `json:"url"`
	MimeType         string `json:"mimeType"`
	Bitrate          int    `json:"bitrate"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	FPS              int    `json:"fps"`
	LastModified     string `json:"lastModified"`
	ContentLength    string `json:"contentLength"`
	Quality          string `json:"quality"`
	QualityLabel     string `json:"qualityLabel"`
	ProjectionType   string `json:"projectionType"`
	AverageBitrate   int    `json:"averageBitrate"`
	AudioQuality     string `json:"audioQuality"`
	ApproxDurationMs string `json:"approxDurationMs"`
	AudioSampleRate  string `json:"audioSampleRate"`
	AudioChannels    int    `json:"audioChannels"`
	SignatureCipher  string `json:"signatureCipher"`
	Cipher           string `json:"cipher"` // pre-2020 field name, still seen on old cached responses
}

// CipherString returns the ciphered signature blob, regardless of which
// field name carried it. Empty means the URL is served plain.
func (f *Format) CipherString() string {
	if f.SignatureCipher != "" {
		return f.SignatureCipher
	}
	return f.Cipher
}

type VideoDetails struct {
	VideoID          string           `json:"videoId"`
	Title            string           `json:"title"`
	LengthSeconds    string           `json:"lengthSeconds"`
	Keywords         []string         `json:"keywords"`
	ChannelID        string           `json:"channelId"`
	ShortDescription string           `json:"shortDescription"`
	Thumbnail        ThumbnailDetails `json:"thumbnail"`
	ViewCount        string           `json:"viewCount"`
	Author           string           `json:"author"`
	IsPrivate        bool             `json:"isPrivate"`
	IsLiveContent    bool             `json:"isLiveContent"`
}

type ThumbnailDetails struct {
	Thumbnails []Thumbnail `json:"thumbnails"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Microformat struct {
	PlayerMicroformatRenderer PlayerMicroformatRenderer `json:"playerMicroformatRenderer"`
}

type PlayerMicroformatRenderer struct {
	Thumbnail         ThumbnailDetails `json:"thumbnail"`
	Title             SimpleText       `json:"title"`
	Description       SimpleText       `json:"description"`
	LengthSeconds     string           `json:"lengthSeconds"`
	ExternalChannelId string           `json:"externalChannelId"`
	IsFamilySafe      bool             `json:"isFamilySafe"`
	IsUnlisted        bool             `json:"isUnlisted"`
	ViewCount         string           `json:"viewCount"`
	Category          string           `json:"category"`
	PublishDate       string           `json:"publishDate"`
	OwnerChannelName  string           `json:"ownerChannelName"`
	UploadDate        string           `json:"uploadDate"`
}

type SimpleText struct {
	SimpleText string `json:"simpleText"`
}

// SearchResponse is the top-level response from the /search endpoint, pared
// down to the renderer path that carries plain video results.
type SearchResponse struct {
	EstimatedResults string         `json:"estimatedResults"`
	Contents         SearchContents `json:"contents"`
}

type SearchContents struct {
	TwoColumnSearchResultsRenderer *TwoColumnSearchResultsRenderer `json:"twoColumnSearchResultsRenderer"`
}

type TwoColumnSearchResultsRenderer struct {
	PrimaryContents PrimaryContents `json:"primaryContents"`
}

type PrimaryContents struct {
	SectionListRenderer *SectionListRenderer `json:"sectionListRenderer"`
}

type SectionListRenderer struct {
	Contents []SectionListContent `json:"contents"`
}

type SectionListContent struct {
	ItemSectionRenderer *ItemSectionRenderer `json:"itemSectionRenderer"`
}

type ItemSectionRenderer struct {
	Contents []ItemSectionContent `json:"contents"`
}

type ItemSectionContent struct {
	VideoRenderer *VideoRenderer `json:"videoRenderer"`
}

type VideoRenderer struct {
	VideoID           string           `json:"videoId"`
	Title             LangText         `json:"title"`
	OwnerText         LangText         `json:"ownerText"`
	LengthText        LangText         `json:"lengthText"`
	ViewCountText     LangText         `json:"viewCountText"`
	PublishedTimeText LangText         `json:"publishedTimeText"`
	Thumbnail         ThumbnailDetails `json:"thumbnail"`
}

// VideoRenderers walks the search renderer tree and returns every video
// entry in page order.
func (r *SearchResponse) VideoRenderers() []VideoRenderer {
	var out []VideoRenderer
	if r.Contents.TwoColumnSearchResultsRenderer == nil {
		return out
	}
	sections := r.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer
	if sections == nil {
		return out
	}
	for _, section := range sections.Contents {
		if section.ItemSectionRenderer == nil {
			continue
		}
		for _, item := range section.ItemSectionRenderer.Contents {
			if item.VideoRenderer != nil {
				out = append(out, *item.VideoRenderer)
			}
		}
	}
	return out
}

type LangText struct {
	SimpleText string    `json:"simpleText"`
	Runs       []TextRun `json:"runs"`
}

type TextRun struct {
	Text string `json:"text"`
}

// Text flattens a renderer text node to its display string.
func (t LangText) Text() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var s string
	for _, r := range t.Runs {
		s += r.Text
	}
	return s
}
