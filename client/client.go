// Package client is the public entry point: it wires persona fallback,
// transport, and stream URL resolution behind a small facade.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/famomatic/ytmeta/internal/cookies"
	"github.com/famomatic/ytmeta/internal/innertube"
	"github.com/famomatic/ytmeta/internal/orchestrator"
	"github.com/famomatic/ytmeta/internal/playerjs"
	"github.com/famomatic/ytmeta/internal/policy"
	"github.com/famomatic/ytmeta/internal/resolve"
	"github.com/famomatic/ytmeta/internal/transport"
	"github.com/famomatic/ytmeta/internal/types"
)

// Client fetches video metadata and resolved stream URLs.
type Client struct {
	cfg      Config
	logger   Logger
	engine   *orchestrator.Engine
	resolver *resolve.Resolver
}

// New builds a Client from cfg. The zero Config is valid.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	var engine playerjs.Engine
	switch cfg.SandboxEngine {
	case "goja":
		engine = playerjs.EngineGoja
	case "otto":
		engine = playerjs.EngineOtto
	default:
		return nil, fmt.Errorf("%w: unknown sandbox engine %q", ErrInvalidInput, cfg.SandboxEngine)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	if cfg.CookiesFile != "" {
		if httpClient.Jar != nil {
			cfg.Logger.Warnf("cookies file %s ignored: HTTP client already has a jar", cfg.CookiesFile)
		} else {
			jar, err := cookies.LoadJar(cfg.CookiesFile)
			if err != nil {
				return nil, fmt.Errorf("load cookies: %w", err)
			}
			clone := *httpClient
			clone.Jar = jar
			httpClient = &clone
		}
	}

	tr := transport.New(transport.Options{
		HTTPClient:        httpClient,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	registry := innertube.NewRegistry()
	if len(cfg.APIKeyOverrides) > 0 {
		registry = innertube.NewRegistryWithKeys(cfg.APIKeyOverrides)
	}
	selector := policy.NewSelector(registry, cfg.ClientOrder, cfg.ClientSkip)

	cache, err := playerjs.NewCache(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("program cache: %w", err)
	}
	scripts := playerjs.NewResolver(tr, playerjs.ResolverConfig{PlayerURL: cfg.PlayerURL})

	return &Client{
		cfg:    cfg,
		logger: cfg.Logger,
		engine: orchestrator.NewEngine(selector, tr, orchestrator.Options{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxBackoff:     cfg.MaxBackoff,
		}),
		resolver: resolve.New(scripts, cache, playerjs.NewSandbox(engine), cfg.Logger),
	}, nil
}

// FetchVideoInfo fetches metadata and resolved stream URLs for a video given
// by URL or bare id. The returned info carries the persona attempt trace.
func (c *Client) FetchVideoInfo(ctx context.Context, input string) (*types.VideoInfo, error) {
	id, err := ExtractVideoID(input)
	if err != nil {
		return nil, err
	}

	reqOpts := innertube.RequestOptions{Language: c.cfg.Language}
	if sts, err := c.resolver.SignatureTimestamp(ctx); err != nil {
		// Personas that need the timestamp are skipped by the engine;
		// the rest still work.
		c.logger.Warnf("signature timestamp unavailable: %v", err)
	} else {
		reqOpts.SignatureTimestamp = sts
	}

	resp, winner, trace, err := c.engine.VideoInfo(ctx, id, reqOpts)
	if err != nil {
		return nil, mapError(err)
	}
	info, err := c.resolver.Resolve(ctx, resp, winner)
	if err != nil {
		return nil, mapError(err)
	}
	info.Trace = trace
	return info, nil
}

// Search runs a video search and returns the flattened result list.
func (c *Client) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidInput)
	}
	resp, err := c.engine.Search(ctx, query, innertube.RequestOptions{Language: c.cfg.Language})
	if err != nil {
		return nil, mapError(err)
	}
	return resolve.SearchResults(resp), nil
}

// ResolveFormatURL re-resolves a single format of a video and returns its
// playable URL.
func (c *Client) ResolveFormatURL(ctx context.Context, videoID string, itag int) (string, error) {
	info, err := c.FetchVideoInfo(ctx, videoID)
	if err != nil {
		return "", err
	}
	for _, f := range info.Formats {
		if f.Itag == itag {
			return f.URL, nil
		}
	}
	return "", fmt.Errorf("itag %d: %w", itag, ErrFormatNotFound)
}

// mapError translates internal failures into the public sentinels while
// keeping the attempt chain reachable through errors.As.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, types.ErrNoClientsAvailable):
		return errors.Join(ErrAllClientsFailed, err)
	case errors.Is(err, types.ErrNoPlayableFormats):
		return ErrNoPlayableFormats
	case errors.Is(err, types.ErrLoginRequired):
		return ErrLoginRequired
	case errors.Is(err, types.ErrAgeRestricted):
		return ErrAgeRestricted
	case errors.Is(err, types.ErrVideoUnavailable):
		return ErrVideoUnavailable
	}

	var allFailed *orchestrator.AllClientsFailedError
	if errors.As(err, &allFailed) {
		return errors.Join(sentinelForAttempts(allFailed.Attempts), err)
	}
	return err
}

// sentinelForAttempts picks the sentinel naming the most actionable
// playability verdict seen across the failed attempts.
func sentinelForAttempts(attempts []orchestrator.AttemptError) error {
	var ageRestricted, loginRequired, unavailable bool
	for _, attempt := range attempts {
		var playability *orchestrator.PlayabilityError
		if !errors.As(attempt.Err, &playability) {
			continue
		}
		switch {
		case playability.IsAgeRestricted():
			ageRestricted = true
		case playability.RequiresLogin():
			loginRequired = true
		case playability.IsUnavailable(), playability.IsGeoRestricted():
			unavailable = true
		}
	}
	switch {
	case ageRestricted:
		return ErrAgeRestricted
	case loginRequired:
		return ErrLoginRequired
	case unavailable:
		return ErrVideoUnavailable
	}
	return ErrAllClientsFailed
}
