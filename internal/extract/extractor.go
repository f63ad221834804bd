// Package extract turns unstructured denial-letter text into ClaimFacts.
// A model-assisted path is tried first; any failure degrades to pattern
// matching, so extraction never returns an error.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/cache"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/llm"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/util"
)

// Source names the path that produced a result.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is the outcome of one extraction.
type Result struct {
	Facts  model.ClaimFacts `json:"facts"`
	Source Source           `json:"source"`
	// Degraded holds the reason the model path was abandoned.
	Degraded string `json:"degraded,omitempty"`
}

// Config controls the model path.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// InputLimit caps how much of the document is sent to the model.
	InputLimit int
}

// DefaultConfig returns near-deterministic extraction settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1500,
		Temperature: 0.1,
		InputLimit:  4000,
	}
}

// ConfigFromModel converts model configuration to extract.Config
func ConfigFromModel(c model.ExtractionConfig) Config {
	return Config{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		InputLimit:  c.InputLimit,
	}
}

var (
	errUnparseable = errors.New("model output is not a JSON object")
	errNoFields    = errors.New("model output contained no usable fields")
)

// Extractor extracts claim facts from text.
type Extractor struct {
	provider llm.Provider
	config   Config
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	group    singleflight.Group
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCache stores model-path results in c.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *Extractor) {
		if c != nil {
			e.cache = c
			e.cacheTTL = ttl
		}
	}
}

// WithLogger sets the logger used for degradation warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an extractor. A nil provider disables the model path.
func NewExtractor(provider llm.Provider, config Config, opts ...Option) *Extractor {
	defaults := DefaultConfig()
	if config.MaxTokens == 0 {
		config.MaxTokens = defaults.MaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = defaults.Temperature
	}
	if config.InputLimit == 0 {
		config.InputLimit = defaults.InputLimit
	}

	e := &Extractor{
		provider: provider,
		config:   config,
		cache:    cache.Nop{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the claim facts found in text. It never fails.
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	if e.provider == nil {
		return fallback(text, "no extraction model configured")
	}

	input := util.Truncate(text, e.config.InputLimit)
	key := cache.CacheKey(e.provider.Name()+"/"+e.config.Model, input)

	if facts, ok := e.cached(key); ok {
		e.logger.Debug("extraction cache hit", zap.String("key", key))
		return Result{Facts: facts, Source: SourceModel}
	}

	// The flight outlives any single caller: a waiter that gives up falls
	// back on its own while the others keep the shared call.
	flight := context.WithoutCancel(ctx)
	ch := e.group.DoChan(key, func() (any, error) {
		if facts, ok := e.cached(key); ok {
			return facts, nil
		}
		facts, err := e.fromModel(flight, input)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(facts); err == nil {
			if err := e.cache.Set(key, data, e.cacheTTL); err != nil {
				e.logger.Warn("extraction cache write failed", zap.Error(err))
			}
		}
		return facts, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return fallback(text, ctx.Err().Error())
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		e.logger.Warn("model extraction failed, using pattern fallback",
			zap.String("provider", e.provider.Name()),
			zap.Error(err))
		return fallback(text, err.Error())
	}

	facts := v.(model.ClaimFacts)
	if shared {
		facts.DenialCodes = append([]string{}, facts.DenialCodes...)
	}
	return Result{Facts: facts, Source: SourceModel}
}

func (e *Extractor) cached(key string) (model.ClaimFacts, bool) {
	data, ok := e.cache.Get(key)
	if !ok {
		return model.ClaimFacts{}, false
	}
	var facts model.ClaimFacts
	if err := json.Unmarshal(data, &facts); err != nil {
		return model.ClaimFacts{}, false
	}
	return facts, true
}

func (e *Extractor) fromModel(ctx context.Context, input string) (model.ClaimFacts, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		Prompt:      userPrompt(input),
		Model:       e.config.Model,
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	})
	if err != nil {
		return model.ClaimFacts{}, fmt.Errorf("extraction call: %w", err)
	}

	facts, err := ParseModelOutput(resp.Text)
	if err != nil {
		return model.ClaimFacts{}, err
	}
	if facts.IsEmpty() {
		return model.ClaimFacts{}, errNoFields
	}
	return facts, nil
}

func fallback(text, reason string) Result {
	return Result{
		Facts:    ExtractPatterns(text),
		Source:   SourceFallback,
		Degraded: reason,
	}
}

// ParseModelOutput decodes a model reply into claim facts. Code fences are
// stripped, keys outside the schema are dropped and empty values never
// overwrite the null default.
func ParseModelOutput(text string) (model.ClaimFacts, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return model.ClaimFacts{}, fmt.Errorf("%w: %v", errUnparseable, err)
	}
	if raw == nil {
		return model.ClaimFacts{}, errUnparseable
	}
	return merge(raw), nil
}

func merge(raw map[string]any) model.ClaimFacts {
	facts := model.NewClaimFacts()
	for _, field := range model.FactFields {
		if v, ok := scalar(raw[field]); ok {
			facts.Set(field, v)
		}
	}
	facts.DenialCodes = codeList(raw[model.FieldDenialCodes])
	return facts
}

// scalar keeps truthy strings and numbers; other JSON types are ignored.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		if t == 0 {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

func codeList(v any) []string {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case string:
		items = []any{t}
	}

	codes := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(s))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// stripFences removes a ```json or ``` wrapper around the payload.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```json"); i >= 0 {
		return fenceBody(text[i+len("```json"):])
	}
	if i := strings.Index(text, "```"); i >= 0 {
		return fenceBody(text[i+len("```"):])
	}
	return text
}

func fenceBody(rest string) string {
	if j := strings.Index(rest, "```"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}
