package formats

import (
	"github.com/famomatic/ytmeta/internal/types"
)

// BestAudio picks the highest ranked audio-capable format: audio quality,
// then codec, then bitrate, then container. Returns false when no format
// carries audio.
func BestAudio(formats []types.StreamFormat) (types.StreamFormat, bool) {
	var best types.StreamFormat
	found := false
	for _, f := range formats {
		if !f.HasAudio {
			continue
		}
		if !found || betterAudio(f, best) {
			best = f
			found = true
		}
	}
	return best, found
}

// BestVideo picks the highest ranked video-capable format: quality tier,
// then codec, then bitrate, then container. Returns false when no format
// carries video.
func BestVideo(formats []types.StreamFormat) (types.StreamFormat, bool) {
	var best types.StreamFormat
	found := false
	for _, f := range formats {
		if !f.HasVideo {
			continue
		}
		if !found || betterVideo(f, best) {
			best = f
			found = true
		}
	}
	return best, found
}

func betterAudio(candidate, current types.StreamFormat) bool {
	if a, b := audioQualityRank(candidate.AudioQuality), audioQualityRank(current.AudioQuality); a != b {
		return a > b
	}
	if a, b := audioCodecRank(candidate.AudioCodec), audioCodecRank(current.AudioCodec); a != b {
		return a > b
	}
	if a, b := effectiveBitrate(candidate), effectiveBitrate(current); a != b {
		return a > b
	}
	return containerRank(candidate.Container) > containerRank(current.Container)
}

func betterVideo(candidate, current types.StreamFormat) bool {
	if a, b := qualityRank(candidate.Quality), qualityRank(current.Quality); a != b {
		return a > b
	}
	if a, b := videoCodecRank(candidate.VideoCodec), videoCodecRank(current.VideoCodec); a != b {
		return a > b
	}
	if a, b := effectiveBitrate(candidate), effectiveBitrate(current); a != b {
		return a > b
	}
	return containerRank(candidate.Container) > containerRank(current.Container)
}

func effectiveBitrate(f types.StreamFormat) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}

func qualityRank(quality string) int {
	switch quality {
	case "highres":
		return 10
	case "hd2880":
		return 9
	case "hd2160":
		return 8
	case "hd1440":
		return 7
	case "hd1080":
		return 6
	case "hd720":
		return 5
	case "large":
		return 4
	case "medium":
		return 3
	case "small":
		return 2
	case "tiny":
		return 1
	default:
		return 0
	}
}

func audioQualityRank(quality string) int {
	switch quality {
	case "AUDIO_QUALITY_HIGH":
		return 4
	case "AUDIO_QUALITY_MEDIUM":
		return 3
	case "AUDIO_QUALITY_LOW":
		return 2
	case "AUDIO_QUALITY_ULTRALOW":
		return 1
	default:
		return 0
	}
}

func videoCodecRank(codec types.VideoCodec) int {
	switch codec {
	case types.VideoCodecAV1:
		return 3
	case types.VideoCodecVP9:
		return 2
	case types.VideoCodecAVC:
		return 1
	default:
		return 0
	}
}

func audioCodecRank(codec types.AudioCodec) int {
	switch codec {
	case types.AudioCodecOpus:
		return 4
	case types.AudioCodecVorbis:
		return 3
	case types.AudioCodecAAC:
		return 2
	case types.AudioCodecMP4A:
		return 1
	default:
		return 0
	}
}

func containerRank(container types.Container) int {
	switch container {
	case types.ContainerMP4:
		return 3
	case types.ContainerWebM:
		return 2
	case types.Container3GP:
		return 1
	default:
		return 0
	}
}
