// Package assist runs the full claim workflow: fact extraction, the
// six-stage analysis and the letter/guidance split.
package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/denial"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/extract"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/knowledge"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/letter"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/pipeline"
)

// Request is one claim to appeal.
type Request struct {
	ID           string
	DocumentText string
	PolicyText   string
	// DenialCodes overrides the codes found in the document when set.
	DenialCodes []string
	Patient     pipeline.Patient
}

// Artifact is the output of one stage.
type Artifact struct {
	Stage string `json:"stage"`
	Text  string `json:"text"`
}

// Outcome is everything a completed appeal produced.
type Outcome struct {
	ID          string          `json:"id"`
	RunID       string          `json:"run_id"`
	Extraction  extract.Result  `json:"extraction"`
	DenialCodes []string        `json:"denial_codes"`
	Analysis    denial.Analysis `json:"analysis"`
	Stages      []Artifact      `json:"stages"`
	Final       string          `json:"final"`
	Letter      string          `json:"letter"`
	Guidance    string          `json:"guidance,omitempty"`
	Duration    time.Duration   `json:"duration_ns"`
}

// Assistant ties the extractor to the pipeline.
type Assistant struct {
	extractor *extract.Extractor
	pipeline  *pipeline.Pipeline
	logger    *zap.Logger
}

// New creates an Assistant. A nil extractor uses pattern extraction only.
func New(extractor *extract.Extractor, p *pipeline.Pipeline, logger *zap.Logger) *Assistant {
	if extractor == nil {
		extractor = extract.NewExtractor(nil, extract.DefaultConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{extractor: extractor, pipeline: p, logger: logger}
}

// Appeal extracts the claim facts, fills codes and the patient name from
// them when the request leaves those blank, and runs the pipeline.
func (a *Assistant) Appeal(ctx context.Context, req Request) (*Outcome, error) {
	if a.pipeline == nil {
		return nil, fmt.Errorf("appeal: no analysis pipeline")
	}
	if strings.TrimSpace(req.DocumentText) == "" {
		return nil, pipeline.ErrEmptyDocument
	}

	start := time.Now()
	extraction := a.extractor.Extract(ctx, req.DocumentText)
	facts := extraction.Facts

	codes := Codes(req.DenialCodes, facts)
	patient := req.Patient
	if strings.TrimSpace(patient.Name) == "" {
		patient.Name = facts.Value(model.FieldPatientName, "")
	}

	id := req.ID
	if id == "" {
		id = facts.Value(model.FieldClaimNumber, "")
	}

	a.logger.Info("claim facts extracted",
		zap.String("id", id),
		zap.String("source", string(extraction.Source)),
		zap.Strings("fields", facts.Filled()),
		zap.Strings("denial_codes", codes))

	run, err := a.pipeline.Execute(ctx, pipeline.Inputs{
		DocumentText: req.DocumentText,
		DenialCodes:  codes,
		PolicyText:   req.PolicyText,
		Patient:      patient,
	})
	if err != nil {
		return nil, fmt.Errorf("appeal %s: %w", orDefault(id, "claim"), err)
	}

	if id == "" {
		id = run.ID
	}

	final := run.Final()
	body, guidance := letter.Split(final)

	outputs := run.Outputs()
	stages := make([]Artifact, len(outputs))
	for i, text := range outputs {
		stages[i] = Artifact{Stage: pipeline.StageID(i + 1).String(), Text: text}
	}

	return &Outcome{
		ID:          id,
		RunID:       run.ID,
		Extraction:  extraction,
		DenialCodes: codes,
		Analysis:    run.Analysis,
		Stages:      stages,
		Final:       final,
		Letter:      body,
		Guidance:    guidance,
		Duration:    time.Since(start),
	}, nil
}

// Codes returns the explicit codes normalized, or the extracted ones when
// none were given.
func Codes(explicit []string, facts model.ClaimFacts) []string {
	src := explicit
	if len(src) == 0 {
		src = facts.DenialCodes
	}

	out := make([]string, 0, len(src))
	seen := make(map[string]bool, len(src))
	for _, c := range src {
		c = knowledge.Normalize(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// ParseCodes splits a comma or whitespace separated code list.
func ParseCodes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
