package regulations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bantuaku/peraturan-ingest/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LogLevel("debug"), Format: "json"})
}

func TestNewHTTPClient_DefaultsTimeoutWhenUnset(t *testing.T) {
	client := NewHTTPClient(ClientProfile{})
	if client.Timeout != 30*time.Second {
		t.Errorf("got timeout %v, want 30s default", client.Timeout)
	}
}

func TestNewHTTPClient_RespectsExplicitTimeout(t *testing.T) {
	client := NewHTTPClient(ClientProfile{Timeout: 5 * time.Second})
	if client.Timeout != 5*time.Second {
		t.Errorf("got timeout %v, want 5s", client.Timeout)
	}
}

func TestFetcher_FetchHTML_SendsUserAgentAndParsesBody(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><body><h1 id="x">hello</h1></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(ClientProfile{UserAgent: "peraturan-ingest-test/1.0"}, testLogger())
	doc, err := f.FetchHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchHTML: %v", err)
	}
	if gotUA != "peraturan-ingest-test/1.0" {
		t.Errorf("got User-Agent %q", gotUA)
	}
	if text := doc.Find("#x").Text(); text != "hello" {
		t.Errorf("got body text %q", text)
	}
}

func TestFetcher_FetchHTML_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(ClientProfile{UserAgent: "ua"}, testLogger())
	if _, err := f.FetchHTML(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for a 404 response")
	}
}

func TestFetcher_FetchBytes_ReturnsBodyStatusAndContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake content"))
	}))
	defer srv.Close()

	f := NewFetcher(ClientProfile{UserAgent: "ua"}, testLogger())
	body, status, contentType, err := f.FetchBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchBytes: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("got status %d", status)
	}
	if contentType != "application/pdf" {
		t.Errorf("got content-type %q", contentType)
	}
	if string(body) != "%PDF-1.4 fake content" {
		t.Errorf("got body %q", body)
	}
}
