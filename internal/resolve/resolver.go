package resolve

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/famomatic/ytmeta/internal/formats"
	"github.com/famomatic/ytmeta/internal/innertube"
	"github.com/famomatic/ytmeta/internal/playerjs"
	"github.com/famomatic/ytmeta/internal/types"
)

// ScriptSource provides the current player script for cipher extraction.
// *playerjs.Resolver satisfies it.
type ScriptSource interface {
	PlayerURL(ctx context.Context) (string, error)
	Script(ctx context.Context) ([]byte, string, error)
}

// Logger receives diagnostics about dropped or degraded formats.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// Resolver turns a raw player response into exported video metadata with
// directly usable stream URLs. Ciphered signatures are recovered through the
// cipher program cache; n parameters are rewritten through the sandbox.
type Resolver struct {
	scripts ScriptSource
	cache   *playerjs.Cache
	sandbox playerjs.Sandbox
	logger  Logger
}

func New(scripts ScriptSource, cache *playerjs.Cache, sandbox playerjs.Sandbox, logger Logger) *Resolver {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Resolver{
		scripts: scripts,
		cache:   cache,
		sandbox: sandbox,
		logger:  logger,
	}
}

// SignatureTimestamp reports the current player script's signature
// timestamp, building the cipher program if it is not cached yet.
func (r *Resolver) SignatureTimestamp(ctx context.Context) (int, error) {
	prog, _, err := r.currentProgram(ctx)
	if err != nil {
		return 0, err
	}
	return prog.SignatureTimestamp, nil
}

// Resolve assembles the exported metadata for one player response. Formats
// whose signature cannot be recovered are dropped with a warning; if none
// survive the call fails with types.ErrNoPlayableFormats. The client
// argument names the persona whose response this is.
func (r *Resolver) Resolve(ctx context.Context, resp *innertube.PlayerResponse, client string) (*types.VideoInfo, error) {
	raw := formats.All(resp)
	resolved := make([]types.StreamFormat, 0, len(raw))

	// Most formats of one response share a single n value; transform each
	// distinct value once.
	nMemo := make(map[string]string)
	program := r.programLoader(ctx)

	for _, f := range raw {
		sf, err := r.resolveFormat(ctx, f, program, nMemo)
		if err != nil {
			r.logger.Warnf("dropping format itag=%d: %v", f.Itag, err)
			continue
		}
		sf.SourceClient = client
		resolved = append(resolved, sf)
	}
	if len(resolved) == 0 {
		return nil, types.ErrNoPlayableFormats
	}

	info := assembleInfo(resp)
	info.Formats = resolved
	return info, nil
}

// programLoader returns a function yielding the cipher program for the
// current player version, fetching and extracting at most once per call to
// Resolve. A failed build is remembered so later formats in the same
// response do not re-fetch the script.
func (r *Resolver) programLoader(ctx context.Context) func() (*playerjs.Program, string, error) {
	var (
		prog    *playerjs.Program
		version string
		err     error
		done    bool
	)
	return func() (*playerjs.Program, string, error) {
		if !done {
			prog, version, err = r.currentProgram(ctx)
			done = true
		}
		return prog, version, err
	}
}

func (r *Resolver) currentProgram(ctx context.Context) (*playerjs.Program, string, error) {
	playerURL, err := r.scripts.PlayerURL(ctx)
	if err != nil {
		return nil, "", err
	}
	version, err := playerjs.VersionFromURL(playerURL)
	if err != nil {
		return nil, "", err
	}
	prog, err := r.cache.GetOrBuild(ctx, version, func(ctx context.Context) (*playerjs.Program, error) {
		body, scriptVersion, err := r.scripts.Script(ctx)
		if err != nil {
			return nil, err
		}
		return playerjs.Extract(body, scriptVersion)
	})
	if err != nil {
		return nil, "", err
	}
	return prog, version, nil
}

func (r *Resolver) resolveFormat(ctx context.Context, f innertube.Format, program func() (*playerjs.Program, string, error), nMemo map[string]string) (types.StreamFormat, error) {
	out := formats.Normalize(f)

	streamURL := f.URL
	if streamURL == "" {
		cipher := f.CipherString()
		if cipher == "" {
			return out, errors.New("no url and no signature cipher")
		}
		recovered, err := r.decipherURL(cipher, program)
		if err != nil {
			return out, err
		}
		streamURL = recovered
		out.WasCiphered = true
	}

	streamURL, err := r.transformN(ctx, streamURL, program, nMemo)
	if err != nil {
		return out, err
	}
	out.URL = streamURL
	return out, nil
}

// decipherURL recovers the stream URL from a signatureCipher blob: the blob
// is a query string carrying the ciphered signature (s), the target query
// parameter name (sp) and the bare stream url.
func (r *Resolver) decipherURL(cipher string, program func() (*playerjs.Program, string, error)) (string, error) {
	values, err := url.ParseQuery(cipher)
	if err != nil {
		return "", err
	}
	sig := values.Get("s")
	streamURL := values.Get("url")
	if sig == "" || streamURL == "" {
		return "", errors.New("signature cipher missing s or url")
	}
	sp := values.Get("sp")
	if sp == "" {
		sp = "signature"
	}

	prog, version, err := program()
	if err != nil {
		return "", err
	}
	plain, err := prog.ApplySig(version, sig)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(streamURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(sp, plain)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// transformN rewrites the n query parameter through the sandbox. A failed
// transform keeps the original value: the URL stays usable, only throttled.
func (r *Resolver) transformN(ctx context.Context, streamURL string, program func() (*playerjs.Program, string, error), nMemo map[string]string) (string, error) {
	u, err := url.Parse(streamURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	n := q.Get("n")
	if n == "" {
		return streamURL, nil
	}

	transformed, seen := nMemo[n]
	if !seen {
		prog, _, err := program()
		if err != nil {
			r.logger.Warnf("n transform unavailable: %v", err)
			nMemo[n] = n
			return streamURL, nil
		}
		transformed, err = prog.ApplyN(ctx, r.sandbox, n)
		if err != nil {
			r.logger.Warnf("n transform failed: %v", err)
			transformed = n
		}
		nMemo[n] = transformed
	}
	if transformed == n {
		return streamURL, nil
	}
	q.Set("n", transformed)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func assembleInfo(resp *innertube.PlayerResponse) *types.VideoInfo {
	details := resp.VideoDetails
	micro := resp.Microformat.PlayerMicroformatRenderer

	info := &types.VideoInfo{
		ID:               details.VideoID,
		Title:            details.Title,
		Author:           details.Author,
		ChannelID:        details.ChannelID,
		Keywords:         details.Keywords,
		ShortDescription: details.ShortDescription,
		Category:         micro.Category,
		PublishDate:      micro.PublishDate,
		IsLive:           details.IsLiveContent || resp.PlayabilityStatus.IsLive(),
		IsPrivate:        details.IsPrivate,
	}
	if details.LengthSeconds != "" {
		info.DurationSeconds, _ = strconv.ParseInt(details.LengthSeconds, 10, 64)
	}
	if info.DurationSeconds == 0 && micro.LengthSeconds != "" {
		info.DurationSeconds, _ = strconv.ParseInt(micro.LengthSeconds, 10, 64)
	}
	if details.ViewCount != "" {
		info.ViewCount, _ = strconv.ParseInt(details.ViewCount, 10, 64)
	}
	if info.ChannelID == "" {
		info.ChannelID = micro.ExternalChannelId
	}

	thumbs := details.Thumbnail.Thumbnails
	if len(thumbs) == 0 {
		thumbs = micro.Thumbnail.Thumbnails
	}
	for _, t := range thumbs {
		info.Thumbnails = append(info.Thumbnails, types.Thumbnail{
			URL:    t.URL,
			Width:  t.Width,
			Height: t.Height,
		})
	}
	return info
}
