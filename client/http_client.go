package client

import "net/http"

// defaultHTTPClient builds a fresh client so a cookie jar can be attached
// without touching http.DefaultClient. Proxy settings are inherited from the
// environment via the default transport.
func defaultHTTPClient() *http.Client {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{}
	}
	return &http.Client{Transport: base.Clone()}
}
