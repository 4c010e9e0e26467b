package client

// Logger receives non-fatal diagnostics: dropped formats, n-transform
// failures, ignored configuration. The library never logs on its own.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}
