package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingSignatureTimestamp marks a profile skipped because it needs the
// player script's signature timestamp and none was supplied.
var ErrMissingSignatureTimestamp = errors.New("signature timestamp unknown")

// AttemptError captures one client attempt failure.
type AttemptError struct {
	Client string
	Err    error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("client %s: %v", e.Client, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// AllClientsFailedError is returned when no client attempt succeeded.
type AllClientsFailedError struct {
	Attempts []AttemptError
}

func (e *AllClientsFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return "all clients failed"
	}
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Client)
	}
	return fmt.Sprintf("all clients failed: %d attempt(s) [%s]", len(e.Attempts), strings.Join(names, " "))
}

// InvalidResponseError indicates a response flagged as a known bad serving
// by the platform's experiment tracking params.
type InvalidResponseError struct {
	Client     string
	Experiment string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response client=%s experiment=%s", e.Client, e.Experiment)
}

// PlayabilityError indicates an unplayable player response.
type PlayabilityError struct {
	Client string
	Status string
	Reason string
}

func (e *PlayabilityError) Error() string {
	return fmt.Sprintf("unplayable status=%s client=%s reason=%s", e.Status, e.Client, e.Reason)
}

func (e *PlayabilityError) RequiresLogin() bool {
	s := strings.ToUpper(e.Status + " " + e.Reason)
	return strings.Contains(s, "LOGIN") || strings.Contains(s, "SIGN IN")
}

func (e *PlayabilityError) IsAgeRestricted() bool {
	s := strings.ToUpper(e.Status + " " + e.Reason)
	return strings.Contains(s, "AGE")
}

func (e *PlayabilityError) IsGeoRestricted() bool {
	s := strings.ToUpper(e.Status + " " + e.Reason)
	return strings.Contains(s, "COUNTRY") ||
		strings.Contains(s, "REGION") ||
		strings.Contains(s, "LOCATION")
}

func (e *PlayabilityError) IsUnavailable() bool {
	s := strings.ToUpper(e.Status + " " + e.Reason)
	return strings.Contains(s, "UNAVAILABLE") ||
		strings.Contains(s, "PRIVATE") ||
		strings.Contains(s, "DELETED")
}
