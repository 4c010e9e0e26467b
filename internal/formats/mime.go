package formats

import (
	"strings"

	"github.com/famomatic/ytmeta/internal/types"
)

// MimeInfo is the parsed form of a format's mimeType field, e.g.
// `video/mp4; codecs="avc1.42001E, mp4a.40.2"`.
type MimeInfo struct {
	Kind      string // "video" or "audio"
	Container types.Container
	Video     types.VideoCodec
	Audio     types.AudioCodec
}

// HasVideo reports whether the stream carries a video track.
func (m MimeInfo) HasVideo() bool {
	return m.Kind == "video"
}

// HasAudio reports whether the stream carries an audio track. Progressive
// video formats list their audio codec second.
func (m MimeInfo) HasAudio() bool {
	return m.Kind == "audio" || m.Audio != types.AudioCodecNone
}

// ParseMime splits a mimeType into kind, container and codec families.
// Unrecognized pieces come back as their zero values rather than failing;
// ranking treats unknown as worst.
func ParseMime(mimeType string) MimeInfo {
	var info MimeInfo

	mimeType = strings.TrimSpace(mimeType)
	slash := strings.Index(mimeType, "/")
	if slash < 0 {
		return info
	}
	info.Kind = strings.ToLower(mimeType[:slash])

	subtype := mimeType[slash+1:]
	if semi := strings.Index(subtype, ";"); semi >= 0 {
		subtype = subtype[:semi]
	}
	info.Container = parseContainer(strings.TrimSpace(subtype))

	codecs := codecList(mimeType)
	switch info.Kind {
	case "audio":
		if len(codecs) > 0 {
			info.Audio = parseAudioCodec(codecs[0])
		}
	case "video":
		if len(codecs) > 0 {
			info.Video = parseVideoCodec(codecs[0])
		}
		if len(codecs) > 1 {
			info.Audio = parseAudioCodec(codecs[1])
		}
	}
	return info
}

// codecList returns the entries of the quoted codecs="..." attribute.
func codecList(mimeType string) []string {
	open := strings.Index(mimeType, `"`)
	if open < 0 {
		return nil
	}
	rest := mimeType[open+1:]
	close := strings.Index(rest, `"`)
	if close < 0 {
		return nil
	}
	parts := strings.Split(rest[:close], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseContainer(subtype string) types.Container {
	switch {
	case strings.HasPrefix(subtype, "mp4"):
		return types.ContainerMP4
	case strings.HasPrefix(subtype, "webm"):
		return types.ContainerWebM
	case strings.HasPrefix(subtype, "3gpp"):
		return types.Container3GP
	default:
		return types.ContainerUnknown
	}
}

func parseVideoCodec(codec string) types.VideoCodec {
	switch {
	case strings.HasPrefix(codec, "av01"):
		return types.VideoCodecAV1
	case strings.HasPrefix(codec, "vp9"), strings.HasPrefix(codec, "vp09"):
		return types.VideoCodecVP9
	case strings.HasPrefix(codec, "avc1"):
		return types.VideoCodecAVC
	default:
		return types.VideoCodecNone
	}
}

func parseAudioCodec(codec string) types.AudioCodec {
	switch {
	case strings.HasPrefix(codec, "opus"):
		return types.AudioCodecOpus
	case strings.HasPrefix(codec, "vorbis"):
		return types.AudioCodecVorbis
	case strings.HasPrefix(codec, "mp4a.40.2"):
		return types.AudioCodecAAC
	case strings.HasPrefix(codec, "mp4a"):
		return types.AudioCodecMP4A
	default:
		return types.AudioCodecNone
	}
}
