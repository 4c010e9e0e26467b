package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/famomatic/ytmeta/internal/innertube"
	"github.com/famomatic/ytmeta/internal/playerjs"
	"github.com/famomatic/ytmeta/internal/types"
)

// testScript carries a swap(4)+splice(2) signature routine and an n routine
// that drops the leading character.
const testScript = `var _yt_player = {};
(function(g) {
var window = this;
var DE={wS:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c},
mQ:function(a,b){a.splice(0,b)},
vR:function(a){a.reverse()}};
var Ur=function(a){a=a.split("");DE.wS(a,4);DE.mQ(a,2);return a.join("")};
g.Ur = Ur;
var Yr=function(a){try{a=a.split("");a.splice(0,1);return a.join("")}catch(b){return"enhanced_except_hZbW-"+a}};
var Xr=[Yr];
g.kP=function(a,c){var b;c&&(b=a.get("n"))&&(b=Xr[0](b),a.set("n",b))};
g.cfg={signatureTimestamp:19834,experiments:[]};
})(_yt_player);
`

// noNScript has the signature routine but no n transform.
const noNScript = `var DE={wS:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c},
mQ:function(a,b){a.splice(0,b)},
vR:function(a){a.reverse()}};
var Ur=function(a){a=a.split("");DE.wS(a,4);DE.mQ(a,2);return a.join("")};
var cfg={signatureTimestamp:19834};
`

type fakeScripts struct {
	script      string
	version     string
	err         error
	scriptCalls int
}

func (f *fakeScripts) PlayerURL(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://www.youtube.com/s/player/" + f.version + "/player_ias.vflset/en_US/base.js", nil
}

func (f *fakeScripts) Script(ctx context.Context) ([]byte, string, error) {
	f.scriptCalls++
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte(f.script), f.version, nil
}

type countingSandbox struct {
	calls int
	inner playerjs.Sandbox
}

func (c *countingSandbox) EvalFunction(ctx context.Context, fnSource, arg string) (string, error) {
	c.calls++
	return c.inner.EvalFunction(ctx, fnSource, arg)
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func newTestResolver(t *testing.T, scripts *fakeScripts) (*Resolver, *countingSandbox, *recordingLogger) {
	t.Helper()
	cache, err := playerjs.NewCache(0)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	sandbox := &countingSandbox{inner: playerjs.NewSandbox(playerjs.EngineGoja)}
	logger := &recordingLogger{}
	return New(scripts, cache, sandbox, logger), sandbox, logger
}

func queryParam(t *testing.T, rawURL, key string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse %q: %v", rawURL, err)
	}
	return u.Query().Get(key)
}

func TestResolvePlainAndCipheredFormats(t *testing.T) {
	scripts := &fakeScripts{script: testScript, version: "1798f86c"}
	resolver, sandbox, _ := newTestResolver(t, scripts)

	cipher := url.Values{
		"s":   {"AbCdEfGh"},
		"sp":  {"sig"},
		"url": {"https://stream.example/audio.webm?n=abc&mime=audio%2Fwebm"},
	}.Encode()

	resp := &innertube.PlayerResponse{
		PlayabilityStatus: innertube.PlayabilityStatus{Status: "OK"},
		VideoDetails: innertube.VideoDetails{
			VideoID:       "jNQXAC9IVRw",
			Title:         "Me at the zoo",
			Author:        "jawed",
			ChannelID:     "UC4QobU6STFB0P71PMvOGN5A",
			LengthSeconds: "19",
			ViewCount:     "309381128",
			Keywords:      []string{"me at the zoo"},
		},
		Microformat: innertube.Microformat{
			PlayerMicroformatRenderer: innertube.PlayerMicroformatRenderer{
				Category:    "People & Blogs",
				PublishDate: "2005-04-23",
			},
		},
		StreamingData: innertube.StreamingData{
			Formats: []innertube.Format{
				{
					Itag:     18,
					URL:      "https://stream.example/video.mp4?n=abc&mime=video%2Fmp4",
					MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
				},
			},
			AdaptiveFormats: []innertube.Format{
				{
					Itag:            251,
					MimeType:        `audio/webm; codecs="opus"`,
					SignatureCipher: cipher,
				},
			},
		},
	}

	info, err := resolver.Resolve(context.Background(), resp, "web")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if info.ID != "jNQXAC9IVRw" || info.Title != "Me at the zoo" || info.Author != "jawed" {
		t.Fatalf("metadata mismatch: %+v", info)
	}
	if info.DurationSeconds != 19 || info.ViewCount != 309381128 {
		t.Fatalf("numeric metadata mismatch: duration=%d views=%d", info.DurationSeconds, info.ViewCount)
	}
	if info.Category != "People & Blogs" || info.PublishDate != "2005-04-23" {
		t.Fatalf("microformat metadata mismatch: %+v", info)
	}
	if len(info.Formats) != 2 {
		t.Fatalf("expected 2 formats, got %d", len(info.Formats))
	}

	plain := info.Formats[0]
	if plain.Itag != 18 || plain.WasCiphered {
		t.Fatalf("expected plain itag 18 first: %+v", plain)
	}
	if got := queryParam(t, plain.URL, "n"); got != "bc" {
		t.Fatalf("plain format n = %q, want %q", got, "bc")
	}
	if got := queryParam(t, plain.URL, "mime"); got != "video/mp4" {
		t.Fatalf("plain format lost unrelated query params: %q", plain.URL)
	}

	ciphered := info.Formats[1]
	if ciphered.Itag != 251 || !ciphered.WasCiphered {
		t.Fatalf("expected ciphered itag 251 second: %+v", ciphered)
	}
	if got := queryParam(t, ciphered.URL, "sig"); got != "CdAfGh" {
		t.Fatalf("recovered signature = %q, want %q", got, "CdAfGh")
	}
	if got := queryParam(t, ciphered.URL, "n"); got != "bc" {
		t.Fatalf("ciphered format n = %q, want %q", got, "bc")
	}
	if ciphered.SourceClient != "web" {
		t.Fatalf("source client = %q, want web", ciphered.SourceClient)
	}

	if scripts.scriptCalls != 1 {
		t.Fatalf("script fetches = %d, want 1", scripts.scriptCalls)
	}
	if sandbox.calls != 1 {
		t.Fatalf("sandbox evals = %d, want 1 (shared n value is memoized)", sandbox.calls)
	}
}

func TestResolveDropsUnresolvableFormats(t *testing.T) {
	scripts := &fakeScripts{script: testScript, version: "1798f86c"}
	resolver, _, logger := newTestResolver(t, scripts)

	resp := &innertube.PlayerResponse{
		VideoDetails: innertube.VideoDetails{VideoID: "jNQXAC9IVRw"},
		StreamingData: innertube.StreamingData{
			AdaptiveFormats: []innertube.Format{
				{Itag: 140, SignatureCipher: "sp=sig&url=https%3A%2F%2Fstream.example%2Fa.m4a"},
				{Itag: 22},
				{Itag: 18, URL: "https://stream.example/video.mp4"},
			},
		},
	}

	info, err := resolver.Resolve(context.Background(), resp, "android")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(info.Formats) != 1 || info.Formats[0].Itag != 18 {
		t.Fatalf("expected only itag 18 to survive, got %+v", info.Formats)
	}
	if len(logger.warnings) != 2 {
		t.Fatalf("warnings = %d, want 2: %v", len(logger.warnings), logger.warnings)
	}
}

func TestResolveNoPlayableFormats(t *testing.T) {
	scripts := &fakeScripts{script: testScript, version: "1798f86c"}
	resolver, _, _ := newTestResolver(t, scripts)

	resp := &innertube.PlayerResponse{
		VideoDetails: innertube.VideoDetails{VideoID: "jNQXAC9IVRw"},
		StreamingData: innertube.StreamingData{
			AdaptiveFormats: []innertube.Format{{Itag: 22}},
		},
	}

	_, err := resolver.Resolve(context.Background(), resp, "web")
	if !errors.Is(err, types.ErrNoPlayableFormats) {
		t.Fatalf("Resolve() error = %v, want ErrNoPlayableFormats", err)
	}
}

func TestResolveKeepsFormatWhenNTransformMissing(t *testing.T) {
	scripts := &fakeScripts{script: noNScript, version: "aaaa1111"}
	resolver, _, logger := newTestResolver(t, scripts)

	resp := &innertube.PlayerResponse{
		VideoDetails: innertube.VideoDetails{VideoID: "jNQXAC9IVRw"},
		StreamingData: innertube.StreamingData{
			Formats: []innertube.Format{
				{Itag: 18, URL: "https://stream.example/video.mp4?n=abc"},
			},
		},
	}

	info, err := resolver.Resolve(context.Background(), resp, "web")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(info.Formats) != 1 {
		t.Fatalf("expected the format to survive a missing n routine")
	}
	if got := queryParam(t, info.Formats[0].URL, "n"); got != "abc" {
		t.Fatalf("n = %q, want untouched %q", got, "abc")
	}
	if len(logger.warnings) == 0 {
		t.Fatalf("expected a warning about the n transform")
	}
}

func TestResolveScriptFailureDropsCipheredOnly(t *testing.T) {
	scripts := &fakeScripts{err: errors.New("embed page unreachable")}
	resolver, _, logger := newTestResolver(t, scripts)

	cipher := url.Values{
		"s":   {"AbCdEfGh"},
		"url": {"https://stream.example/audio.webm"},
	}.Encode()

	resp := &innertube.PlayerResponse{
		VideoDetails: innertube.VideoDetails{VideoID: "jNQXAC9IVRw"},
		StreamingData: innertube.StreamingData{
			Formats: []innertube.Format{
				{Itag: 18, URL: "https://stream.example/video.mp4"},
			},
			AdaptiveFormats: []innertube.Format{
				{Itag: 251, SignatureCipher: cipher},
			},
		},
	}

	info, err := resolver.Resolve(context.Background(), resp, "android")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(info.Formats) != 1 || info.Formats[0].Itag != 18 {
		t.Fatalf("expected only the plain format to survive, got %+v", info.Formats)
	}
	found := false
	for _, w := range logger.warnings {
		if strings.Contains(w, "itag=251") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a drop warning for itag 251, got %v", logger.warnings)
	}
}

func TestSignatureTimestampCachesScript(t *testing.T) {
	scripts := &fakeScripts{script: testScript, version: "1798f86c"}
	resolver, _, _ := newTestResolver(t, scripts)

	for i := 0; i < 2; i++ {
		sts, err := resolver.SignatureTimestamp(context.Background())
		if err != nil {
			t.Fatalf("SignatureTimestamp() error = %v", err)
		}
		if sts != 19834 {
			t.Fatalf("sts = %d, want 19834", sts)
		}
	}
	if scripts.scriptCalls != 1 {
		t.Fatalf("script fetches = %d, want 1", scripts.scriptCalls)
	}
}

func TestSearchResultsFlattening(t *testing.T) {
	resp := &innertube.SearchResponse{
		Contents: innertube.SearchContents{
			TwoColumnSearchResultsRenderer: &innertube.TwoColumnSearchResultsRenderer{
				PrimaryContents: innertube.PrimaryContents{
					SectionListRenderer: &innertube.SectionListRenderer{
						Contents: []innertube.SectionListContent{
							{
								ItemSectionRenderer: &innertube.ItemSectionRenderer{
									Contents: []innertube.ItemSectionContent{
										{
											VideoRenderer: &innertube.VideoRenderer{
												VideoID: "dQw4w9WgXcQ",
												Title: innertube.LangText{
													Runs: []innertube.TextRun{{Text: "Never Gonna "}, {Text: "Give You Up"}},
												},
												OwnerText:     innertube.LangText{SimpleText: "Rick Astley"},
												LengthText:    innertube.LangText{SimpleText: "3:33"},
												ViewCountText: innertube.LangText{SimpleText: "1.4B views"},
											},
										},
										{VideoRenderer: nil},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	results := SearchResults(resp)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("video id = %q", got.VideoID)
	}
	if got.Title != "Never Gonna Give You Up" {
		t.Fatalf("title = %q, want joined runs", got.Title)
	}
	if got.Author != "Rick Astley" || got.LengthText != "3:33" {
		t.Fatalf("result fields mismatch: %+v", got)
	}
}
