package google

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type rewriteTransport struct {
	Transport http.RoundTripper
	Host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.Host
	return t.Transport.RoundTrip(req)
}

// fakeGoogle starts a server and returns a client that sends every Google API
// request to it.
func fakeGoogle(t *testing.T, h http.HandlerFunc) *http.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	client := ts.Client()
	client.Transport = &rewriteTransport{
		Transport: client.Transport,
		Host:      strings.TrimPrefix(ts.URL, "http://"),
	}
	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
