package formats

import (
	"strconv"

	"github.com/famomatic/ytmeta/internal/innertube"
	"github.com/famomatic/ytmeta/internal/types"
)

// Normalize converts one raw wire format into the exported stream format
// shape. URL resolution is the resolver's job; the URL field is left as the
// raw (possibly empty) wire value.
func Normalize(f innertube.Format) types.StreamFormat {
	mime := ParseMime(f.MimeType)
	out := types.StreamFormat{
		Itag:           f.Itag,
		URL:            f.URL,
		MimeType:       f.MimeType,
		Container:      mime.Container,
		VideoCodec:     mime.Video,
		AudioCodec:     mime.Audio,
		HasVideo:       mime.HasVideo(),
		HasAudio:       mime.HasAudio(),
		Bitrate:        f.Bitrate,
		AverageBitrate: f.AverageBitrate,
		Width:          f.Width,
		Height:         f.Height,
		FPS:            f.FPS,
		Quality:        f.Quality,
		QualityLabel:   f.QualityLabel,
		AudioQuality:   f.AudioQuality,
		AudioChannels:  f.AudioChannels,
	}
	if f.AudioSampleRate != "" {
		out.AudioSampleRate, _ = strconv.Atoi(f.AudioSampleRate)
	}
	if f.ContentLength != "" {
		out.ContentLength, _ = strconv.ParseInt(f.ContentLength, 10, 64)
	}
	if f.ApproxDurationMs != "" {
		out.DurationMs, _ = strconv.ParseInt(f.ApproxDurationMs, 10, 64)
	}
	return out
}

// All returns every raw format of a player response, progressive entries
// first, in the order the platform sent them.
func All(resp *innertube.PlayerResponse) []innertube.Format {
	out := make([]innertube.Format, 0, len(resp.StreamingData.Formats)+len(resp.StreamingData.AdaptiveFormats))
	out = append(out, resp.StreamingData.Formats...)
	out = append(out, resp.StreamingData.AdaptiveFormats...)
	return out
}
