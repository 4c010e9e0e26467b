package client

import (
	"regexp"
	"strings"
)

var (
	videoIDPattern  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
	watchURLPattern = regexp.MustCompile(`(?:v=|/embed/|/shorts/|/live/|/v/|youtu\.be/)([0-9A-Za-z_-]{11})`)
)

// ExtractVideoID accepts either a bare 11-character id or the common URL
// shapes: watch, youtu.be, embed, shorts, live.
func ExtractVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrInvalidInput
	}
	if videoIDPattern.MatchString(s) {
		return s, nil
	}
	if m := watchURLPattern.FindStringSubmatch(s); len(m) == 2 {
		return m[1], nil
	}
	return "", ErrInvalidInput
}
