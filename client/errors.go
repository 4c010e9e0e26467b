package client

import "errors"

var (
	// ErrInvalidInput indicates malformed input (not a video ID/url) or an
	// unusable configuration value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrVideoUnavailable indicates the video is gone, private, or region
	// locked for every persona tried.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrLoginRequired indicates an authenticated session is required.
	ErrLoginRequired = errors.New("login required")
	// ErrAgeRestricted indicates the video needs age verification.
	ErrAgeRestricted = errors.New("age restricted")
	// ErrNoPlayableFormats indicates every stream format was dropped
	// during URL resolution.
	ErrNoPlayableFormats = errors.New("no playable formats")
	// ErrFormatNotFound indicates the requested itag is absent from the
	// resolved formats.
	ErrFormatNotFound = errors.New("format not found")
	// ErrAllClientsFailed indicates the persona fallback chain was
	// exhausted without a playable response.
	ErrAllClientsFailed = errors.New("all clients failed")
)
