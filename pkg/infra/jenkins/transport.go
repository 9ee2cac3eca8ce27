package jenkins

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

const maxRedirects = 10

type statusRecorderKey struct{}

// statusRecorder keeps the status of the last response received for one
// API call. gojenkins reports most failures as bare status strings, so the
// status is read from here instead of parsed out of its errors.
type statusRecorder struct {
	code int
	url  string
}

func withStatusRecorder(ctx context.Context) (context.Context, *statusRecorder) {
	rec := &statusRecorder{}
	return context.WithValue(ctx, statusRecorderKey{}, rec), rec
}

// transport traces every request and fills the statusRecorder of its context
type transport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	rec, _ := req.Context().Value(statusRecorderKey{}).(*statusRecorder)
	if rec != nil {
		rec.code = 0
		rec.url = req.URL.String()
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		t.logger.Debug("Jenkins API request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, err
	}

	if rec != nil {
		rec.code = resp.StatusCode
	}
	t.logger.Debug("Jenkins API request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
	)

	return resp, nil
}

// checkRedirect follows every redirect of a read. A write is followed only
// while it stays on the same scheme and host; otherwise the redirect itself
// is returned to the caller, since replaying it as a GET would drop the write.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return goerr.New("stopped after too many redirects", goerr.V("url", req.URL.String()))
	}

	first := via[0]
	if first.Method == http.MethodGet || first.Method == http.MethodHead {
		return nil
	}
	if req.URL.Scheme == first.URL.Scheme && req.URL.Host == first.URL.Host {
		return nil
	}

	return http.ErrUseLastResponse
}
