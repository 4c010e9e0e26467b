package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/famomatic/ytmeta/internal/innertube"
)

// Options configures a Transport.
type Options struct {
	// HTTPClient issues all requests. Defaults to http.DefaultClient. A
	// cookie jar on the client enables SAPISID-hash authorization.
	HTTPClient *http.Client
	// RequestsPerSecond throttles outbound requests across all endpoints.
	// Zero disables throttling.
	RequestsPerSecond float64
}

// Transport executes Innertube API calls and plain page/script fetches. It
// owns header construction, compression, throttling, and the mapping of
// failures onto the three transport error kinds.
type Transport struct {
	client  *http.Client
	limiter *rate.Limiter
}

func New(opts Options) *Transport {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Transport{client: client, limiter: limiter}
}

// Execute posts a player request under the given profile and returns the
// parsed response. Playability is not interpreted here; the caller decides
// what an unplayable status means.
func (t *Transport) Execute(ctx context.Context, profile innertube.ClientProfile, req *innertube.PlayerRequest) (*innertube.PlayerResponse, error) {
	referer := "https://" + profile.Host + "/watch?v=" + req.VideoID
	var resp innertube.PlayerResponse
	if err := t.post(ctx, profile, "player", referer, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExecuteSearch posts a search request under the given profile.
func (t *Transport) ExecuteSearch(ctx context.Context, profile innertube.ClientProfile, req *innertube.SearchRequest) (*innertube.SearchResponse, error) {
	referer := "https://" + profile.Host + "/"
	var resp innertube.SearchResponse
	if err := t.post(ctx, profile, "search", referer, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchScript downloads the player script at the given URL.
func (t *Transport) FetchScript(ctx context.Context, rawURL string) ([]byte, error) {
	return t.get(ctx, rawURL, innertube.DefaultUserAgent)
}

// FetchPage downloads an HTML page, presenting the given user agent.
func (t *Transport) FetchPage(ctx context.Context, rawURL, userAgent string) ([]byte, error) {
	if userAgent == "" {
		userAgent = innertube.DefaultUserAgent
	}
	return t.get(ctx, rawURL, userAgent)
}

func (t *Transport) post(ctx context.Context, profile innertube.ClientProfile, endpoint, referer string, payload any, out any) error {
	if err := t.wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := "https://" + profile.Host + "/youtubei/v1/" + endpoint + "?key=" + profile.APIKey + "&prettyPrint=false"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", profile.UserAgentOrDefault())
	httpReq.Header.Set("Accept", "*/*")
	httpReq.Header.Set("Accept-Encoding", acceptEncoding)
	httpReq.Header.Set("Origin", "https://"+profile.Host)
	httpReq.Header.Set("Referer", referer)
	httpReq.Header.Set("X-Youtube-Client-Name", strconv.Itoa(profile.ContextNameID))
	httpReq.Header.Set("X-Youtube-Client-Version", profile.Version)
	for k, vals := range profile.Headers {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	for k, vals := range authHeaders(t.client, profile.Host, time.Now()) {
		for _, v := range vals {
			httpReq.Header.Set(k, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}

	reader, closeBody, err := decodedBody(resp)
	if err != nil {
		closeBody()
		return &NetworkError{URL: url, Err: err}
	}
	raw, err := io.ReadAll(reader)
	closeErr := closeBody()
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	if closeErr != nil {
		return &NetworkError{URL: url, Err: closeErr}
	}

	if resp.StatusCode != http.StatusOK {
		return &RejectedError{Client: profile.ID, StatusCode: resp.StatusCode}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &MalformedError{Client: profile.ID, Err: err}
	}
	return nil
}

func (t *Transport) get(ctx context.Context, rawURL, userAgent string) ([]byte, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &RejectedError{StatusCode: resp.StatusCode}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	return raw, nil
}

func (t *Transport) wait(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}
