package types

// Container is the media container advertised in a format's mime type.
type Container string

const (
	ContainerUnknown Container = ""
	ContainerMP4     Container = "mp4"
	ContainerWebM    Container = "webm"
	Container3GP     Container = "3gpp"
)

// VideoCodec identifies the video codec family of a stream.
type VideoCodec string

const (
	VideoCodecNone VideoCodec = ""
	VideoCodecAVC  VideoCodec = "avc1"
	VideoCodecVP9  VideoCodec = "vp9"
	VideoCodecAV1  VideoCodec = "av01"
)

// AudioCodec identifies the audio codec family of a stream.
type AudioCodec string

const (
	AudioCodecNone   AudioCodec = ""
	AudioCodecMP4A   AudioCodec = "mp4a"
	AudioCodecAAC    AudioCodec = "aac"
	AudioCodecVorbis AudioCodec = "vorbis"
	AudioCodecOpus   AudioCodec = "opus"
)

// StreamFormat is one deliverable media stream with a directly usable URL.
type StreamFormat struct {
	Itag            int
	URL             string
	MimeType        string
	Container       Container
	VideoCodec      VideoCodec
	AudioCodec      AudioCodec
	HasVideo        bool
	HasAudio        bool
	Bitrate         int
	AverageBitrate  int
	Width           int
	Height          int
	FPS             int
	Quality         string
	QualityLabel    string
	AudioQuality    string
	AudioSampleRate int
	AudioChannels   int
	ContentLength   int64
	DurationMs      int64
	// WasCiphered reports that the URL was recovered from a ciphered
	// signature rather than served in plain form.
	WasCiphered bool
	// SourceClient is the persona alias whose response produced this format.
	SourceClient string
}
