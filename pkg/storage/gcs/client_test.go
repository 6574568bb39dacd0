package gcs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Client{
		httpClient: srv.Client(),
		bucket:     "test-bucket",
		tokenSource: &tokenSource{
			token:  "static-token",
			expiry: time.Now().Add(time.Hour),
		},
	}, srv
}

// rewriteHost redirects requests aimed at the real storage host to the test
// server by using a transport-level rewrite.
type rewriteHost struct {
	target string
	base   http.RoundTripper
}

func (r rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	rewritten := strings.Replace(req.URL.String(), storageHost, r.target, 1)
	clone := req.Clone(req.Context())
	u := *req.URL
	clone.URL = &u
	parsed, err := clone.URL.Parse(rewritten)
	if err != nil {
		return nil, err
	}
	clone.URL = parsed
	clone.Host = parsed.Host
	return r.base.RoundTrip(clone)
}

func withRewrite(c *Client, srv *httptest.Server) {
	c.httpClient = &http.Client{Transport: rewriteHost{target: srv.URL, base: http.DefaultTransport}}
}

func TestDeleteTreatsNotFoundAsGone(t *testing.T) {
	t.Parallel()

	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	withRewrite(c, srv)

	err := c.Delete(context.Background(), "media/missing.png")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestDeleteSuccess(t *testing.T) {
	t.Parallel()

	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	withRewrite(c, srv)

	if err := c.Delete(context.Background(), "media/present.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestDeleteSurfacesServerError(t *testing.T) {
	t.Parallel()

	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	}))
	withRewrite(c, srv)

	err := c.Delete(context.Background(), "media/broken.png")
	if err == nil || errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected hard failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend exploded") {
		t.Fatalf("error should carry body snippet: %v", err)
	}
}

func TestUploadSendsAuthAndContentType(t *testing.T) {
	t.Parallel()

	var gotAuth, gotType string
	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	withRewrite(c, srv)

	url, err := c.Upload(context.Background(), "media/a.png", "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotAuth != "Bearer static-token" {
		t.Fatalf("missing bearer token, got %q", gotAuth)
	}
	if gotType != "image/png" {
		t.Fatalf("missing content type, got %q", gotType)
	}
	if url != ObjectURL("test-bucket", "media/a.png") {
		t.Fatalf("unexpected url %s", url)
	}
}

func TestUploadRejectsEmptyPayload(t *testing.T) {
	t.Parallel()

	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	withRewrite(c, srv)

	if _, err := c.Upload(context.Background(), "k", "image/png", nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestObjectURL(t *testing.T) {
	t.Parallel()

	got := ObjectURL("b", "media/x/y.png")
	if got != "https://storage.googleapis.com/b/media/x/y.png" {
		t.Fatalf("unexpected url %s", got)
	}
}
