// Package main provides the ytmeta CLI entry point.
package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/famomatic/ytmeta/client"
)

var version = "0.1.0"

func main() {
	// A local .env may hold YTMETA_* settings; absence is fine.
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	cookies   string
	language  string
	clients   string
	skip      string
	playerURL string
	sandbox   string
	rps       float64
	timeout   time.Duration
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "ytmeta",
		Short:   "Inspect YouTube video metadata, stream formats, and search results",
		Version: version,
	}
	rootCmd.SetVersionTemplate("ytmeta version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cookies, "cookies", os.Getenv("YTMETA_COOKIES"), "Netscape cookies.txt for authenticated requests")
	pf.StringVar(&opts.language, "lang", os.Getenv("YTMETA_LANG"), "Response language (hl)")
	pf.StringVar(&opts.clients, "clients", os.Getenv("YTMETA_CLIENTS"), "Comma-separated persona order (e.g. web,android,ios)")
	pf.StringVar(&opts.skip, "skip-clients", "", "Comma-separated personas to skip")
	pf.StringVar(&opts.playerURL, "player-url", "", "Pin the player script URL")
	pf.StringVar(&opts.sandbox, "sandbox", "goja", "JS sandbox engine (goja or otto)")
	pf.Float64Var(&opts.rps, "rps", 0, "Outbound requests per second (0 = unlimited)")
	pf.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall timeout per command")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Print the persona attempt trace to stderr")

	rootCmd.AddCommand(newInfoCmd(opts))
	rootCmd.AddCommand(newFormatsCmd(opts))
	rootCmd.AddCommand(newSearchCmd(opts))

	return rootCmd
}

func (o *rootOptions) buildClient(stderr io.Writer) (*client.Client, error) {
	cfg := client.Config{
		Logger:            stderrLogger{out: stderr},
		ClientOrder:       splitList(o.clients),
		ClientSkip:        splitList(o.skip),
		Language:          o.language,
		RequestsPerSecond: o.rps,
		SandboxEngine:     o.sandbox,
		PlayerURL:         o.playerURL,
		CookiesFile:       o.cookies,
	}
	if proxy := os.Getenv("YTMETA_PROXY"); proxy != "" {
		httpClient, err := proxyHTTPClient(proxy)
		if err != nil {
			return nil, err
		}
		cfg.HTTPClient = httpClient
	}
	return client.New(cfg)
}

// proxyHTTPClient routes all traffic through the given proxy.
func proxyHTTPClient(proxy string) (*http.Client, error) {
	parsed, err := url.Parse(proxy)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid proxy url %q", proxy)
	}
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("default transport is not an *http.Transport")
	}
	transport := base.Clone()
	transport.Proxy = http.ProxyURL(parsed)
	return &http.Client{Transport: transport}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// stderrLogger surfaces library warnings as CLI diagnostics.
type stderrLogger struct {
	out io.Writer
}

func (l stderrLogger) Warnf(format string, args ...any) {
	fmt.Fprintf(l.out, dimStyle.Render("warn:")+" "+format+"\n", args...)
}
