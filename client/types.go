package client

import "github.com/famomatic/ytmeta/internal/types"

// Aliases re-export the shared result model so callers can name what the
// facade returns.
type (
	VideoInfo    = types.VideoInfo
	StreamFormat = types.StreamFormat
	SearchResult = types.SearchResult
	Thumbnail    = types.Thumbnail
	Attempt      = types.Attempt

	Container  = types.Container
	VideoCodec = types.VideoCodec
	AudioCodec = types.AudioCodec
)
