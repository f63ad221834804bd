package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/util"
)

// maxResponseBytes caps what is read from a provider before decoding.
const maxResponseBytes = 8 << 20

// jsonClient is the HTTP plumbing shared by the providers that speak plain
// JSON over HTTP rather than through an SDK.
type jsonClient struct {
	provider string
	baseURL  string
	headers  http.Header
	http     *http.Client

	// errorMessage pulls a readable message out of an error body; an empty
	// result falls back to the raw body.
	errorMessage func(body []byte) string
}

func newJSONClient(provider, baseURL string, cfg Config, fallback time.Duration) *jsonClient {
	return &jsonClient{
		provider: provider,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		headers:  http.Header{},
		http: &http.Client{
			Timeout: cfg.timeout(fallback),
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
	}
}

// do sends in (when non-nil) as the JSON body and decodes a 200 response
// into out (when non-nil). 429 becomes a *RateLimitError and any other
// non-200 a *StatusError.
func (c *jsonClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s API error: execute request: %w", c.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if c.errorMessage != nil {
			msg = c.errorMessage(raw)
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		statusErr := &StatusError{Provider: c.provider, Code: resp.StatusCode, Message: msg}
		if resp.StatusCode == http.StatusTooManyRequests {
			return NewRateLimitError(c.provider, statusErr, parseRetryAfter(resp.Header.Get("Retry-After")))
		}
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
