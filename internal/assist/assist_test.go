package assist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/denial"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/extract"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/intake"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/knowledge"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/llm"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/llm/llmtest"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/pipeline"
)

const letterText = `Star Health Insurance
Claim No: CLM-2024-777
Your claim is rejected under PED-001 and WP-001.`

func stageScript() *llmtest.Script {
	return llmtest.Texts("facts", "coverage", "review", "strategy", "draft",
		"Dear Grievance Officer,\nPlease reconsider.\n\n**Next Steps:**\n1. Post the letter")
}

func newPipeline(t *testing.T, provider llm.Provider) *pipeline.Pipeline {
	t.Helper()
	store := knowledge.NewStore([]knowledge.Record{
		{Code: "PED-001", Description: "Pre-existing disease", SuccessRate: knowledge.SuccessHigh},
		{Code: "PA-001", Description: "No pre-authorisation", SuccessRate: knowledge.SuccessMedium},
	}, nil)
	p, err := pipeline.New(provider, denial.NewAnalyzer(store), knowledge.Corpus{}, pipeline.Config{})
	require.NoError(t, err)
	return p
}

func TestAppealWithPatternFacts(t *testing.T) {
	stages := stageScript()
	a := New(nil, newPipeline(t, stages), nil)

	out, err := a.Appeal(context.Background(), Request{DocumentText: letterText})
	require.NoError(t, err)

	assert.Equal(t, "CLM-2024-777", out.ID)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, extract.SourceFallback, out.Extraction.Source)
	assert.Equal(t, []string{"PED-001", "WP-001"}, out.DenialCodes)
	assert.Equal(t, denial.LikelihoodGood, out.Analysis.OverallAppealLikelihood)
	assert.Equal(t, []string{"WP-001"}, out.Analysis.CodesUnknown)

	require.Len(t, out.Stages, pipeline.StageCount)
	assert.Equal(t, Artifact{Stage: "document_analysis", Text: "facts"}, out.Stages[0])
	assert.Equal(t, "quality_review", out.Stages[5].Stage)

	assert.Equal(t, out.Stages[5].Text, out.Final)
	assert.Equal(t, "Dear Grievance Officer,\nPlease reconsider.", out.Letter)
	assert.Equal(t, "**Next Steps:**\n1. Post the letter", out.Guidance)

	// Placeholder used since fallback extraction finds no patient name.
	assert.Contains(t, stages.Requests()[4].Prompt, "Name: "+pipeline.PlaceholderName)
}

func TestAppealFillsFromModelFacts(t *testing.T) {
	extractor := extract.NewExtractor(
		llmtest.Texts(`{"claim_number": "CLM-9", "patient_name": "Asha Rao", "denial_codes": ["pa-001"]}`),
		extract.DefaultConfig(),
	)
	stages := stageScript()
	a := New(extractor, newPipeline(t, stages), nil)

	out, err := a.Appeal(context.Background(), Request{DocumentText: letterText})
	require.NoError(t, err)

	assert.Equal(t, extract.SourceModel, out.Extraction.Source)
	assert.Equal(t, "CLM-9", out.ID)
	assert.Equal(t, []string{"PA-001"}, out.DenialCodes)
	assert.Equal(t, denial.LikelihoodModerate, out.Analysis.OverallAppealLikelihood)
	assert.Contains(t, stages.Requests()[4].Prompt, "Name: Asha Rao\n")
}

func TestAppealExplicitValuesWin(t *testing.T) {
	stages := stageScript()
	a := New(nil, newPipeline(t, stages), nil)

	out, err := a.Appeal(context.Background(), Request{
		ID:           "case-7",
		DocumentText: letterText,
		DenialCodes:  []string{" pa-001", "PA-001", ""},
		Patient:      pipeline.Patient{Name: "Ravi"},
	})
	require.NoError(t, err)

	assert.Equal(t, "case-7", out.ID)
	assert.Equal(t, []string{"PA-001"}, out.DenialCodes)
	assert.Contains(t, stages.Requests()[4].Prompt, "Name: Ravi\n")
}

func TestAppealWithoutClaimNumberUsesRunID(t *testing.T) {
	a := New(nil, newPipeline(t, stageScript()), nil)

	out, err := a.Appeal(context.Background(), Request{DocumentText: "Rejected."})
	require.NoError(t, err)
	assert.Equal(t, out.RunID, out.ID)
	assert.Empty(t, out.DenialCodes)
}

func TestAppealErrors(t *testing.T) {
	_, err := New(nil, nil, nil).Appeal(context.Background(), Request{DocumentText: "x"})
	require.Error(t, err)

	_, err = New(nil, newPipeline(t, stageScript()), nil).Appeal(context.Background(), Request{DocumentText: " "})
	assert.ErrorIs(t, err, pipeline.ErrEmptyDocument)

	boom := errors.New("model down")
	a := New(nil, newPipeline(t, llmtest.NewScript(llmtest.Reply{Err: boom})), nil)
	_, err = a.Appeal(context.Background(), Request{DocumentText: letterText})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "appeal CLM-2024-777")

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, pipeline.DocumentAnalysis, stageErr.Stage)
}

func TestCodes(t *testing.T) {
	facts := model.NewClaimFacts()
	facts.DenialCodes = []string{"NW-001"}

	assert.Equal(t, []string{"NW-001"}, Codes(nil, facts))
	assert.Equal(t, []string{"SL-001", "DOC-002"}, Codes([]string{"sl-001", "DOC-002", "sl-001"}, facts))
	assert.Empty(t, Codes(nil, model.NewClaimFacts()))
}

func TestParseCodes(t *testing.T) {
	assert.Equal(t, []string{"PED-001", "WP-002", "PA-001"}, ParseCodes("PED-001, WP-002;PA-001 "))
	assert.Empty(t, ParseCodes(" , "))
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "letter.txt")
	policy := filepath.Join(dir, "policy.md")
	require.NoError(t, os.WriteFile(doc, []byte(letterText), 0o644))
	require.NoError(t, os.WriteFile(policy, []byte("# Policy"), 0o644))

	req, err := Loader{}.Load(context.Background(), intake.Case{
		ID: "c1", Document: doc, Policy: policy,
		DenialCodes: []string{"PED-001"},
		Patient:     map[string]string{"name": "Asha", "email": "a@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", req.ID)
	assert.Equal(t, letterText, req.DocumentText)
	assert.Equal(t, "# Policy", req.PolicyText)
	assert.Equal(t, pipeline.Patient{Name: "Asha", Email: "a@example.com"}, req.Patient)

	_, err = Loader{}.Load(context.Background(), intake.Case{ID: "c2", Document: filepath.Join(dir, "missing.txt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case c2 document")
}
