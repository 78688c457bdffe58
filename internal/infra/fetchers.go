package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DescriptionFetcher retrieves long-form product text from a supplier URL.
// Implementations are supplier-specific: each feed publishes its documents in
// its own shape.
type DescriptionFetcher interface {
	FetchDescription(ctx context.Context, url string) (string, error)
}

// ImageFetcher retrieves the product image bytes from a supplier URL.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
}

// PdfFetcher retrieves a datasheet PDF from a supplier URL.
type PdfFetcher interface {
	FetchPdf(ctx context.Context, url string) ([]byte, error)
}

// FetcherRegistry maps a supplier's fetcher strategy name to its document
// fetchers. Suppliers without a registered strategy simply keep their feed
// text.
type FetcherRegistry struct {
	descriptions map[string]DescriptionFetcher
	images       map[string]ImageFetcher
	pdfs         map[string]PdfFetcher
}

func NewFetcherRegistry() *FetcherRegistry {
	return &FetcherRegistry{
		descriptions: make(map[string]DescriptionFetcher),
		images:       make(map[string]ImageFetcher),
		pdfs:         make(map[string]PdfFetcher),
	}
}

func (r *FetcherRegistry) RegisterDescription(strategy string, f DescriptionFetcher) {
	r.descriptions[strategy] = f
}

func (r *FetcherRegistry) RegisterImage(strategy string, f ImageFetcher) {
	r.images[strategy] = f
}

func (r *FetcherRegistry) RegisterPdf(strategy string, f PdfFetcher) {
	r.pdfs[strategy] = f
}

func (r *FetcherRegistry) Description(strategy string) (DescriptionFetcher, bool) {
	f, ok := r.descriptions[strategy]
	return f, ok
}

func (r *FetcherRegistry) Image(strategy string) (ImageFetcher, bool) {
	f, ok := r.images[strategy]
	return f, ok
}

func (r *FetcherRegistry) Pdf(strategy string) (PdfFetcher, bool) {
	f, ok := r.pdfs[strategy]
	return f, ok
}

// HTTPDescriptionFetcher is the plain strategy: the URL serves the
// description text directly, no scraping needed.
type HTTPDescriptionFetcher struct {
	client *http.Client
}

func NewHTTPDescriptionFetcher(timeout time.Duration) *HTTPDescriptionFetcher {
	return &HTTPDescriptionFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPDescriptionFetcher) FetchDescription(ctx context.Context, url string) (string, error) {
	body, _, err := f.get(ctx, url, 1<<20)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func (f *HTTPDescriptionFetcher) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	return f.get(ctx, url, 8<<20)
}

func (f *HTTPDescriptionFetcher) FetchPdf(ctx context.Context, url string) ([]byte, error) {
	body, _, err := f.get(ctx, url, 16<<20)
	return body, err
}

func (f *HTTPDescriptionFetcher) get(ctx context.Context, url string, limit int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}
