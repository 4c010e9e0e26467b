package types

// Thumbnail is one thumbnail variant of a video.
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// Attempt records one persona attempt made while fetching a response.
// Failed attempts carry the failure reason; the final successful attempt,
// if any, has Success set and an empty Reason.
type Attempt struct {
	Client  string
	Success bool
	Reason  string
}

// VideoInfo is the assembled metadata result for one video.
type VideoInfo struct {
	ID               string
	Title            string
	Author           string
	ChannelID        string
	DurationSeconds  int64
	ViewCount        int64
	Keywords         []string
	ShortDescription string
	Category         string
	PublishDate      string
	Thumbnails       []Thumbnail
	IsLive           bool
	IsPrivate        bool

	// Formats holds the resolved stream formats in the order the platform
	// returned them. Formats whose signatures could not be resolved are
	// omitted.
	Formats []StreamFormat

	// Trace lists the persona attempts that produced this result, in
	// attempted order.
	Trace []Attempt
}

// SearchResult is one entry of a search response.
type SearchResult struct {
	VideoID       string
	Title         string
	Author        string
	LengthText    string
	ViewCountText string
	PublishedText string
	Thumbnails    []Thumbnail
}
