package transport

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

const acceptEncoding = "gzip, deflate, br"

// decodedBody returns a reader over the decompressed response body. Setting
// Accept-Encoding by hand disables net/http's transparent gzip, so every
// advertised encoding has to be handled here.
func decodedBody(resp *http.Response) (io.Reader, func() error, error) {
	closeBody := resp.Body.Close
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, closeBody, err
		}
		return gz, func() error {
			gz.Close()
			return closeBody()
		}, nil
	case "br":
		return brotli.NewReader(resp.Body), closeBody, nil
	case "deflate":
		fr := flate.NewReader(resp.Body)
		return fr, func() error {
			fr.Close()
			return closeBody()
		}, nil
	default:
		return resp.Body, closeBody, nil
	}
}
