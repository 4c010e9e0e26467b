package transport

import "fmt"

// NetworkError wraps a transport-level failure: dial, TLS, timeout, or a
// broken body read. These are the only errors worth retrying on the same
// client profile.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectedError reports a non-success HTTP status from the API. The platform
// answered; retrying the same profile will not help.
type RejectedError struct {
	Client     string
	StatusCode int
}

func (e *RejectedError) Error() string {
	if e.Client == "" {
		return fmt.Sprintf("request rejected: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("client %s rejected: status=%d", e.Client, e.StatusCode)
}

// MalformedError reports a response body that could not be parsed as the
// expected JSON shape.
type MalformedError struct {
	Client string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Client == "" {
		return fmt.Sprintf("malformed response: %v", e.Err)
	}
	return fmt.Sprintf("client %s returned malformed response: %v", e.Client, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }
