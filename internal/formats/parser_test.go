package formats

import (
	"testing"

	"github.com/famomatic/ytmeta/internal/innertube"
	"github.com/famomatic/ytmeta/internal/types"
)

func TestParseMime_Classification(t *testing.T) {
	cases := []struct {
		name     string
		mime     string
		kind     string
		cont     types.Container
		video    types.VideoCodec
		audio    types.AudioCodec
		hasVideo bool
		hasAudio bool
	}{
		{
			name:     "progressive mp4",
			mime:     `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
			kind:     "video",
			cont:     types.ContainerMP4,
			video:    types.VideoCodecAVC,
			audio:    types.AudioCodecAAC,
			hasVideo: true,
			hasAudio: true,
		},
		{
			name:     "opus audio",
			mime:     `audio/webm; codecs="opus"`,
			kind:     "audio",
			cont:     types.ContainerWebM,
			audio:    types.AudioCodecOpus,
			hasAudio: true,
		},
		{
			name:     "vp9 video only",
			mime:     `video/webm; codecs="vp9"`,
			kind:     "video",
			cont:     types.ContainerWebM,
			video:    types.VideoCodecVP9,
			hasVideo: true,
		},
		{
			name:     "vp9 in mp4 brand",
			mime:     `video/mp4; codecs="vp09.00.50.08"`,
			kind:     "video",
			cont:     types.ContainerMP4,
			video:    types.VideoCodecVP9,
			hasVideo: true,
		},
		{
			name:     "av1 video only",
			mime:     `video/mp4; codecs="av01.0.08M.08"`,
			kind:     "video",
			cont:     types.ContainerMP4,
			video:    types.VideoCodecAV1,
			hasVideo: true,
		},
		{
			name:     "he-aac keeps generic mp4a family",
			mime:     `audio/mp4; codecs="mp4a.40.5"`,
			kind:     "audio",
			cont:     types.ContainerMP4,
			audio:    types.AudioCodecMP4A,
			hasAudio: true,
		},
		{
			name:     "legacy 3gpp",
			mime:     `video/3gpp; codecs="mp4v.20.3, mp4a.40.2"`,
			kind:     "video",
			cont:     types.Container3GP,
			audio:    types.AudioCodecAAC,
			hasVideo: true,
			hasAudio: true,
		},
		{
			name: "garbage",
			mime: "not a mime type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseMime(tc.mime)
			if got.Kind != tc.kind {
				t.Fatalf("kind = %q, want %q", got.Kind, tc.kind)
			}
			if got.Container != tc.cont {
				t.Fatalf("container = %q, want %q", got.Container, tc.cont)
			}
			if got.Video != tc.video {
				t.Fatalf("video codec = %q, want %q", got.Video, tc.video)
			}
			if got.Audio != tc.audio {
				t.Fatalf("audio codec = %q, want %q", got.Audio, tc.audio)
			}
			if got.HasVideo() != tc.hasVideo || got.HasAudio() != tc.hasAudio {
				t.Fatalf("tracks = video:%v audio:%v, want video:%v audio:%v",
					got.HasVideo(), got.HasAudio(), tc.hasVideo, tc.hasAudio)
			}
		})
	}
}

func TestNormalize_Fields(t *testing.T) {
	raw := innertube.Format{
		Itag:             18,
		URL:              "https://example.com/v.mp4",
		MimeType:         `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
		Bitrate:          500000,
		AverageBitrate:   480000,
		Width:            640,
		Height:           360,
		FPS:              30,
		Quality:          "medium",
		QualityLabel:     "360p",
		AudioQuality:     "AUDIO_QUALITY_LOW",
		AudioSampleRate:  "44100",
		AudioChannels:    2,
		ApproxDurationMs: "213341",
		ContentLength:    "3792299",
	}

	got := Normalize(raw)
	if got.Itag != 18 || got.URL != raw.URL {
		t.Fatalf("identity fields mismatch: %+v", got)
	}
	if got.Container != types.ContainerMP4 || got.VideoCodec != types.VideoCodecAVC || got.AudioCodec != types.AudioCodecAAC {
		t.Fatalf("mime fields mismatch: %+v", got)
	}
	if !got.HasVideo || !got.HasAudio {
		t.Fatalf("progressive format should carry both tracks: %+v", got)
	}
	if got.AudioSampleRate != 44100 {
		t.Fatalf("audio sample rate = %d, want 44100", got.AudioSampleRate)
	}
	if got.ContentLength != 3792299 {
		t.Fatalf("content length = %d, want 3792299", got.ContentLength)
	}
	if got.DurationMs != 213341 {
		t.Fatalf("duration = %d, want 213341", got.DurationMs)
	}
}

func TestNormalize_InvalidNumbers(t *testing.T) {
	raw := innertube.Format{
		Itag:             140,
		MimeType:         `audio/mp4; codecs="mp4a.40.2"`,
		AudioSampleRate:  "not-a-number",
		ApproxDurationMs: "bad",
		ContentLength:    "bad",
	}

	got := Normalize(raw)
	if got.AudioSampleRate != 0 || got.DurationMs != 0 || got.ContentLength != 0 {
		t.Fatalf("invalid numerics should normalize to zero: %+v", got)
	}
	if !got.HasAudio || got.HasVideo {
		t.Fatalf("track flags = video:%v audio:%v, want audio only", got.HasVideo, got.HasAudio)
	}
}

func TestAll_ProgressiveFirst(t *testing.T) {
	resp := &innertube.PlayerResponse{
		StreamingData: innertube.StreamingData{
			Formats:         []innertube.Format{{Itag: 18}},
			AdaptiveFormats: []innertube.Format{{Itag: 137}, {Itag: 251}},
		},
	}

	got := All(resp)
	if len(got) != 3 {
		t.Fatalf("expected 3 formats, got %d", len(got))
	}
	if got[0].Itag != 18 || got[1].Itag != 137 || got[2].Itag != 251 {
		t.Fatalf("order = [%d %d %d], want [18 137 251]", got[0].Itag, got[1].Itag, got[2].Itag)
	}
}

func TestBestAudio_PrefersQualityThenCodec(t *testing.T) {
	formats := []types.StreamFormat{
		{Itag: 139, HasAudio: true, AudioCodec: types.AudioCodecMP4A, AudioQuality: "AUDIO_QUALITY_LOW", Bitrate: 48000},
		{Itag: 140, HasAudio: true, AudioCodec: types.AudioCodecAAC, AudioQuality: "AUDIO_QUALITY_MEDIUM", Bitrate: 130000},
		{Itag: 251, HasAudio: true, AudioCodec: types.AudioCodecOpus, AudioQuality: "AUDIO_QUALITY_MEDIUM", Bitrate: 120000},
		{Itag: 137, HasVideo: true, VideoCodec: types.VideoCodecAVC, Quality: "hd1080"},
	}

	best, ok := BestAudio(formats)
	if !ok {
		t.Fatalf("expected an audio pick")
	}
	if best.Itag != 251 {
		t.Fatalf("best audio itag = %d, want 251 (opus outranks aac at equal quality)", best.Itag)
	}
}

func TestBestAudio_NoAudio(t *testing.T) {
	formats := []types.StreamFormat{
		{Itag: 137, HasVideo: true, Quality: "hd1080"},
	}
	if _, ok := BestAudio(formats); ok {
		t.Fatalf("expected no audio pick from video-only formats")
	}
}

func TestBestVideo_QualityOutranksCodec(t *testing.T) {
	formats := []types.StreamFormat{
		{Itag: 398, HasVideo: true, VideoCodec: types.VideoCodecAV1, Quality: "hd720", Bitrate: 1500000},
		{Itag: 137, HasVideo: true, VideoCodec: types.VideoCodecAVC, Quality: "hd1080", Bitrate: 4400000},
		{Itag: 251, HasAudio: true, AudioCodec: types.AudioCodecOpus, AudioQuality: "AUDIO_QUALITY_MEDIUM"},
	}

	best, ok := BestVideo(formats)
	if !ok {
		t.Fatalf("expected a video pick")
	}
	if best.Itag != 137 {
		t.Fatalf("best video itag = %d, want 137 (higher tier beats newer codec)", best.Itag)
	}
}

func TestBestVideo_CodecBreaksQualityTie(t *testing.T) {
	formats := []types.StreamFormat{
		{Itag: 137, HasVideo: true, VideoCodec: types.VideoCodecAVC, Quality: "hd1080", Bitrate: 4400000},
		{Itag: 248, HasVideo: true, VideoCodec: types.VideoCodecVP9, Quality: "hd1080", Bitrate: 2600000},
	}

	best, ok := BestVideo(formats)
	if !ok {
		t.Fatalf("expected a video pick")
	}
	if best.Itag != 248 {
		t.Fatalf("best video itag = %d, want 248 (vp9 outranks avc1 at equal tier)", best.Itag)
	}
}
