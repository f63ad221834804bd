package intake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/util"
)

// Fetcher downloads denial letters published on insurer or TPA portals.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a Fetcher from the HTTP configuration.
func NewFetcher(config model.HTTPConfig) *Fetcher {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxBytes := config.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: config.UserAgent,
		maxBytes:  maxBytes,
	}
}

// Fetched is a downloaded document.
type Fetched struct {
	Text        string
	ContentType string
	FinalURL    string
}

// Fetch retrieves rawURL and returns its text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	// Read one byte past the limit to detect oversize bodies
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, rawURL)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)

	var text string
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		text, err = HTMLText(bytes.NewReader(body))
	case strings.HasPrefix(mediaType, "text/") || mediaType == "":
		text, err = PlainText(body)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
	}
	if err != nil {
		return nil, err
	}

	return &Fetched{
		Text:        text,
		ContentType: contentType,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// IsURL reports whether s names an http(s) resource rather than a file.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads a document from a file path or, when a fetcher is given, an URL.
func Load(ctx context.Context, fetcher *Fetcher, source string, maxBytes int64) (string, error) {
	if IsURL(source) {
		if fetcher == nil {
			return "", fmt.Errorf("%w: remote documents are disabled", ErrUnsupportedFormat)
		}
		doc, err := fetcher.Fetch(ctx, source)
		if err != nil {
			return "", err
		}
		return doc.Text, nil
	}
	return ReadDocument(source, maxBytes)
}
