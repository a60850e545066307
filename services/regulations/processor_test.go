package regulations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDedupeNonEmpty_DropsBlanksAndRepeats(t *testing.T) {
	got := dedupeNonEmpty("https://a", "", "https://b", "https://a")
	want := []string{"https://a", "https://b"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestDownloadPDF_RejectsUndersizedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-too small"))
	}))
	defer srv.Close()

	p := &Processor{fetcher: NewFetcher(ClientProfile{UserAgent: "ua"}, testLogger())}
	_, _, err := p.downloadPDF(context.Background(), []string{srv.URL})
	if err == nil {
		t.Fatal("expected undersized payload to be rejected")
	}
}

func TestDownloadPDF_RejectsWrongContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("%PDF-" + string(make([]byte, minPDFBytes))))
	}))
	defer srv.Close()

	p := &Processor{fetcher: NewFetcher(ClientProfile{UserAgent: "ua"}, testLogger())}
	_, _, err := p.downloadPDF(context.Background(), []string{srv.URL})
	if err == nil {
		t.Fatal("expected non-pdf content-type to be rejected")
	}
}

func TestDownloadPDF_FallsBackToSecondCandidate(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-" + string(make([]byte, minPDFBytes))))
	}))
	defer good.Close()

	p := &Processor{fetcher: NewFetcher(ClientProfile{UserAgent: "ua"}, testLogger())}
	data, usedURL, err := p.downloadPDF(context.Background(), []string{bad.URL, good.URL})
	if err != nil {
		t.Fatalf("expected fallback candidate to succeed: %v", err)
	}
	if usedURL != good.URL {
		t.Errorf("expected used URL %q, got %q", good.URL, usedURL)
	}
	if len(data) == 0 {
		t.Error("expected non-empty payload")
	}
}

func TestIsAcceptablePDFContentType(t *testing.T) {
	cases := map[string]bool{
		"application/pdf":            true,
		"application/octet-stream":   true,
		"":                           true,
		"text/html; charset=utf-8":   false,
		"application/json":           false,
	}
	for ct, want := range cases {
		if got := isAcceptablePDFContentType(ct); got != want {
			t.Errorf("isAcceptablePDFContentType(%q) = %v, want %v", ct, got, want)
		}
	}
}
