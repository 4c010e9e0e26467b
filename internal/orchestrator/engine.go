package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/famomatic/ytmeta/internal/innertube"
	"github.com/famomatic/ytmeta/internal/policy"
	"github.com/famomatic/ytmeta/internal/transport"
	"github.com/famomatic/ytmeta/internal/types"
)

// Experiment flags the platform attaches to a response served from a known
// bad backend. Such responses parse fine but carry unusable streaming data.
const (
	badServingExperimentA = "51217102"
	badServingExperimentB = "51217476"
)

// maxInvalidRetries bounds the immediate re-requests made when a profile
// keeps receiving bad-serving responses.
const maxInvalidRetries = 3

// searchClient is the only persona the platform serves the full search
// renderer tree to.
const searchClient = "web"

// Options controls per-profile retry behavior.
type Options struct {
	// MaxRetries is the number of extra transport attempts after the first,
	// per profile. Only network failures are retried.
	MaxRetries int
	// InitialBackoff is the sleep before the first retry; it doubles per
	// retry up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (o Options) normalized() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 250 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 2 * time.Second
	}
	return o
}

func (o Options) backoffFor(attempt int) time.Duration {
	backoff := o.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > o.MaxBackoff {
			return o.MaxBackoff
		}
	}
	return backoff
}

// Engine walks client profiles in priority order until one yields a usable
// player response.
type Engine struct {
	selector  policy.Selector
	transport *transport.Transport
	opts      Options
}

func NewEngine(selector policy.Selector, tr *transport.Transport, opts Options) *Engine {
	return &Engine{
		selector:  selector,
		transport: tr,
		opts:      opts.normalized(),
	}
}

// VideoInfo fetches the player response for videoID. Profiles are attempted
// strictly one after another: a profile's turn, including all its retries,
// completes before the next profile is tried. The returned string names the
// persona that produced the response; the attempt trace covers every persona
// tried, in order.
func (e *Engine) VideoInfo(ctx context.Context, videoID string, reqOpts innertube.RequestOptions) (*innertube.PlayerResponse, string, []types.Attempt, error) {
	profiles := e.selector.Select()
	if len(profiles) == 0 {
		return nil, "", nil, types.ErrNoClientsAvailable
	}

	var (
		attempts []AttemptError
		trace    []types.Attempt
	)
	for _, profile := range profiles {
		if profile.RequireJSPlayer && reqOpts.SignatureTimestamp <= 0 {
			attempts = append(attempts, AttemptError{Client: profile.ID, Err: ErrMissingSignatureTimestamp})
			trace = append(trace, types.Attempt{Client: profile.ID, Reason: ErrMissingSignatureTimestamp.Error()})
			continue
		}

		resp, err := e.tryProfile(ctx, profile, videoID, reqOpts)
		if err == nil {
			trace = append(trace, types.Attempt{Client: profile.ID, Success: true})
			return resp, profile.ID, trace, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, "", trace, err
		}
		attempts = append(attempts, AttemptError{Client: profile.ID, Err: err})
		trace = append(trace, types.Attempt{Client: profile.ID, Reason: err.Error()})
	}
	return nil, "", trace, &AllClientsFailedError{Attempts: attempts}
}

// Search runs a videos-only search through the web persona.
func (e *Engine) Search(ctx context.Context, query string, reqOpts innertube.RequestOptions) (*innertube.SearchResponse, error) {
	profile, ok := e.selector.Registry().Get(searchClient)
	if !ok {
		return nil, types.ErrNoClientsAvailable
	}
	req := innertube.NewSearchRequest(profile, query, innertube.SearchParamsVideos, reqOpts)

	var resp *innertube.SearchResponse
	err := e.withRetry(ctx, func() error {
		var err error
		resp, err = e.transport.ExecuteSearch(ctx, profile, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// tryProfile runs one profile's full turn: transport attempts with retry,
// the bad-serving re-request loop, then the playability check.
func (e *Engine) tryProfile(ctx context.Context, profile innertube.ClientProfile, videoID string, reqOpts innertube.RequestOptions) (*innertube.PlayerResponse, error) {
	req := innertube.NewPlayerRequest(profile, videoID, reqOpts)

	resp, err := e.fetchPlayer(ctx, profile, req)
	if err != nil {
		return nil, err
	}

	exp := invalidExperiment(resp)
	for retries := 0; exp != "" && retries < maxInvalidRetries; retries++ {
		resp, err = e.fetchPlayer(ctx, profile, req)
		if err != nil {
			return nil, err
		}
		exp = invalidExperiment(resp)
	}
	if exp != "" {
		return nil, &InvalidResponseError{Client: profile.ID, Experiment: exp}
	}

	if !resp.PlayabilityStatus.IsOK() {
		return nil, &PlayabilityError{
			Client: profile.ID,
			Status: resp.PlayabilityStatus.Status,
			Reason: resp.PlayabilityStatus.Reason,
		}
	}
	return resp, nil
}

func (e *Engine) fetchPlayer(ctx context.Context, profile innertube.ClientProfile, req *innertube.PlayerRequest) (*innertube.PlayerResponse, error) {
	var resp *innertube.PlayerResponse
	err := e.withRetry(ctx, func() error {
		var err error
		resp, err = e.transport.Execute(ctx, profile, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (e *Engine) withRetry(ctx context.Context, do func() error) error {
	var lastErr error
	for attempt := 0; attempt <= e.opts.MaxRetries; attempt++ {
		err := do()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryableError(err) || attempt == e.opts.MaxRetries {
			break
		}
		if werr := waitBackoff(ctx, e.opts.backoffFor(attempt)); werr != nil {
			return werr
		}
	}
	return lastErr
}

func retryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr *transport.NetworkError
	return errors.As(err, &netErr)
}

func waitBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// invalidExperiment returns the experiment ID marking a known bad serving,
// or "" when the response is usable. The flags ride in the GFEEDBACK
// tracking params as a comma-separated list.
func invalidExperiment(resp *innertube.PlayerResponse) string {
	flags := resp.ResponseContext.TrackingParam("GFEEDBACK", "e")
	if flags == "" {
		return ""
	}
	for _, exp := range strings.Split(flags, ",") {
		if exp == badServingExperimentA || exp == badServingExperimentB {
			return exp
		}
	}
	return ""
}
