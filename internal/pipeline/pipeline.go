// Package pipeline runs the fixed six-stage analysis chain that turns a
// claim denial into a reviewed appeal letter.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/denial"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/knowledge"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/llm"
)

// Config holds the model settings used for every stage call.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Pipeline orchestrates the stage chain. It holds no per-run state and is
// safe for concurrent Execute calls.
type Pipeline struct {
	provider llm.Provider
	analyzer *denial.Analyzer
	stages   []Stage
	config   Config
	logger   *zap.Logger
	observer Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver registers a stage event callback.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// New creates a pipeline. It refuses to build without a provider.
func New(provider llm.Provider, analyzer *denial.Analyzer, corpus knowledge.Corpus, config Config, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("create pipeline: %w", llm.ErrNotConfigured)
	}
	if analyzer == nil {
		analyzer = denial.NewAnalyzer(nil)
	}

	stages := Stages(corpus)
	if err := validate(stages); err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	p := &Pipeline{
		provider: provider,
		analyzer: analyzer,
		stages:   stages,
		config:   config,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Stages returns a copy of the stage definitions.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Run executes all stages and returns the final artifact verbatim.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (string, error) {
	run, err := p.Execute(ctx, in)
	if err != nil {
		return "", err
	}
	return run.Final(), nil
}

// Execute runs the six stages in order. Any stage failure aborts the run
// with a *StageError and no partial result.
func (p *Pipeline) Execute(ctx context.Context, in Inputs) (*Run, error) {
	if strings.TrimSpace(in.DocumentText) == "" {
		return nil, ErrEmptyDocument
	}

	analysis := p.analyzer.Analyze(in.DenialCodes)
	var report string
	if len(in.DenialCodes) > 0 {
		report = denial.FormatReport(analysis)
	}

	run := newRun(in, analysis, report)
	log := p.logger.With(zap.String("run_id", run.ID))
	log.Info("analysis started",
		zap.Int("document_chars", len(in.DocumentText)),
		zap.Strings("denial_codes", in.DenialCodes),
		zap.String("appeal_likelihood", string(analysis.OverallAppealLikelihood)))

	for i := range p.stages {
		if err := p.runStage(ctx, log, &p.stages[i], run); err != nil {
			return nil, err
		}
	}

	log.Info("analysis completed", zap.Int("final_chars", len(run.Final())))
	return run, nil
}

func (p *Pipeline) runStage(ctx context.Context, log *zap.Logger, st *Stage, run *Run) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: st.ID, Err: err}
	}

	prompt, err := compose(st, run)
	if err != nil {
		return &StageError{Stage: st.ID, Err: err}
	}

	log = log.With(zap.Stringer("stage", st.ID), zap.Int("prompt_chars", len(prompt)))
	log.Debug("stage started")
	p.emit(StageEvent{RunID: run.ID, Stage: st.ID, Status: StatusStarted})

	start := time.Now()
	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		System:      st.Role.System(),
		Prompt:      prompt,
		Model:       p.config.Model,
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
	})
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = llm.ErrEmptyResponse
	}
	elapsed := time.Since(start)

	if err != nil {
		log.Error("stage failed", zap.Duration("duration", elapsed), zap.Error(err))
		p.emit(StageEvent{RunID: run.ID, Stage: st.ID, Status: StatusFailed, Duration: elapsed, Err: err})
		return &StageError{Stage: st.ID, Err: err}
	}

	run.outputs = append(run.outputs, resp.Text)
	log.Info("stage completed",
		zap.Int("output_chars", len(resp.Text)),
		zap.Int("tokens", resp.TokensUsed),
		zap.Duration("duration", elapsed))
	p.emit(StageEvent{RunID: run.ID, Stage: st.ID, Status: StatusCompleted, Duration: elapsed, OutputChars: len(resp.Text)})
	return nil
}

func (p *Pipeline) emit(ev StageEvent) {
	if p.observer != nil {
		p.observer(ev)
	}
}

// compose builds the user prompt of st from its view of run.
func compose(st *Stage, run *Run) (string, error) {
	v := newView(st, run)
	body := st.Prompt(v)
	if err := v.err(); err != nil {
		return "", err
	}
	if st.Expected == "" {
		return body, nil
	}
	return body + "\n\nEXPECTED OUTPUT:\n" + st.Expected, nil
}
