package regulations

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bantuaku/peraturan-ingest/logger"
)

// ClientProfile is the shared HTTP fetch configuration used by the
// Discoverer, Resolver, and Processor's PDF downloader. peraturan.go.id's
// certificate chain is occasionally broken on some agency subdomains, so
// ALLOW_INSECURE_SSL lets operators opt into a permissive transport the same
// way the original Python crawler set ssl.CERT_NONE.
type ClientProfile struct {
	UserAgent        string
	AllowInsecureSSL bool
	Timeout          time.Duration
}

// NewHTTPClient builds an *http.Client following profile.
func NewHTTPClient(profile ClientProfile) *http.Client {
	timeout := profile.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{}
	if profile.AllowInsecureSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// Fetcher performs profile-compliant GETs shared by every component that
// talks to peraturan.go.id or downloads a PDF.
type Fetcher struct {
	client  *http.Client
	profile ClientProfile
	log     *logger.Logger
}

// NewFetcher creates a Fetcher bound to profile.
func NewFetcher(profile ClientProfile, log *logger.Logger) *Fetcher {
	return &Fetcher{
		client:  NewHTTPClient(profile),
		profile: profile,
		log:     log,
	}
}

func (f *Fetcher) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.profile.UserAgent)
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9,en;q=0.8")
	return req, nil
}

// FetchHTML GETs url and parses it as HTML.
func (f *Fetcher) FetchHTML(ctx context.Context, url string) (*goquery.Document, error) {
	start := time.Now()
	req, err := f.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	f.log.LogRequest(http.MethodGet, url, resp.StatusCode, time.Since(start).Milliseconds(), ctx)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", url, err)
	}
	return doc, nil
}

// FetchBytes GETs url and returns the raw response body along with its
// status and Content-Type header, used for PDF downloads where the
// candidate-validation step needs both.
func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, int, string, error) {
	start := time.Now()
	req, err := f.newRequest(ctx, url)
	if err != nil {
		return nil, 0, "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	f.log.LogRequest(http.MethodGet, url, resp.StatusCode, time.Since(start).Milliseconds(), ctx)

	contentType := resp.Header.Get("Content-Type")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, contentType, fmt.Errorf("read body from %s: %w", url, err)
	}
	return body, resp.StatusCode, contentType, nil
}
