package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/assist"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/cache"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/denial"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/extract"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/intake"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/knowledge"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/llm"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/pipeline"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/worker"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// registerDefaults seeds v with every key of the default configuration so
// that CLAIMASSIST_* variables can override keys absent from the file.
func registerDefaults(v *viper.Viper) {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults(v, "", tree)

	// Keys omitted from the marshalled defaults
	for _, key := range []string{"llm.api_key", "llm.base_url", "extraction.model", "http.http_proxy", "http.https_proxy", "http.no_proxy"} {
		_ = v.BindEnv(key)
	}
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig overlays file and environment values onto the defaults and
// resolves provider credentials from their conventional variables.
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	resolveCredentials(cfg, os.Getenv)
	return cfg, nil
}

func resolveCredentials(cfg *model.Config, getenv func(string) string) {
	if cfg.LLM.APIKey == "" {
		if env := llm.APIKeyEnv(cfg.LLM.Provider); env != "" {
			cfg.LLM.APIKey = getenv(env)
		}
	}
	if strings.EqualFold(cfg.LLM.Provider, "ollama") && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
	}
}

// knowledgePath joins name onto the knowledge directory unless it is absolute.
func knowledgePath(cfg *model.Config, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Knowledge.Dir, name)
}

func openKnowledge(cfg *model.Config) (*knowledge.Store, knowledge.Corpus, error) {
	store, err := knowledge.Open(knowledgePath(cfg, cfg.Knowledge.CodesFile))
	if err != nil {
		return nil, knowledge.Corpus{}, fmt.Errorf("load denial codes: %w", err)
	}
	corpus, err := knowledge.LoadCorpus(
		knowledgePath(cfg, cfg.Knowledge.Regulations),
		knowledgePath(cfg, cfg.Knowledge.Templates),
	)
	if err != nil {
		return nil, knowledge.Corpus{}, fmt.Errorf("load knowledge texts: %w", err)
	}
	if store.Len() == 0 {
		logger.Warn("denial code table is empty or missing", zap.String("dir", cfg.Knowledge.Dir))
	}
	return store, corpus, nil
}

// newProvider builds the configured provider behind a shared limiter.
func newProvider(cfg *model.Config) (llm.Provider, error) {
	p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		if env := llm.APIKeyEnv(cfg.LLM.Provider); env != "" {
			return nil, fmt.Errorf("%w (set %s or llm.api_key)", err, env)
		}
		return nil, err
	}
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	if p.Name() == "ollama" {
		// A local daemon queues requests itself
		limiter.SetRate("ollama", 0, 0)
	}
	return worker.Throttle(p, limiter, 2), nil
}

func newExtractor(cfg *model.Config, provider llm.Provider) *extract.Extractor {
	if !cfg.Extraction.Enabled {
		provider = nil
	}
	return extract.NewExtractor(provider, extract.ConfigFromModel(cfg.Extraction),
		extract.WithCache(cache.New(cfg.Cache), time.Duration(cfg.Cache.DiskTTLHours)*time.Hour),
		extract.WithLogger(logger.Named("extract")))
}

func newAssistant(cfg *model.Config, provider llm.Provider, observer pipeline.Observer) (*assist.Assistant, error) {
	store, corpus, err := openKnowledge(cfg)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger.Named("pipeline"))}
	if observer != nil {
		opts = append(opts, pipeline.WithObserver(observer))
	}
	p, err := pipeline.New(provider, denial.NewAnalyzer(store), corpus, pipeline.Config{
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, opts...)
	if err != nil {
		return nil, err
	}

	return assist.New(newExtractor(cfg, provider), p, logger.Named("assist")), nil
}

func newFetcher(cfg *model.Config) *intake.Fetcher {
	return intake.NewFetcher(cfg.HTTP)
}

// progressObserver prints one line per stage transition.
func progressObserver(w io.Writer) pipeline.Observer {
	var mu sync.Mutex
	return func(ev pipeline.StageEvent) {
		mu.Lock()
		defer mu.Unlock()

		step := fmt.Sprintf("[%d/%d] %s", int(ev.Stage), pipeline.StageCount, ev.Stage)
		switch ev.Status {
		case pipeline.StatusStarted:
			fmt.Fprintf(w, "⚙️  %s...\n", step)
		case pipeline.StatusCompleted:
			fmt.Fprintf(w, "✓ %s (%s, %d chars)\n", step, ev.Duration.Round(100*time.Millisecond), ev.OutputChars)
		case pipeline.StatusFailed:
			fmt.Fprintf(w, "✗ %s: %v\n", step, ev.Err)
		}
	}
}
