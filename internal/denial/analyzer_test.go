package denial

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/knowledge"
)

func testStore() *knowledge.Store {
	return knowledge.NewStore(
		[]knowledge.Record{
			{
				Code: "PED-001", Description: "Pre-existing disease not disclosed", Category: "Pre-Existing Disease",
				SuccessRate: knowledge.SuccessHigh, CommonCauses: []string{"Past ailment"},
				AppealGrounds: []string{"Burden on insurer", "Moratorium"},
			},
			{
				Code: "PA-001", Description: "Pre-authorisation missing", Category: "Pre-Authorization",
				SuccessRate: knowledge.SuccessMedium, AppealGrounds: []string{"Emergency admission"},
			},
			{
				Code: "PA-002", Description: "Procedure changed", Category: "Pre-Authorization",
				SuccessRate: knowledge.SuccessMedium, AppealGrounds: []string{"Emergency admission"},
			},
			{
				Code: "SL-002", Description: "Co-payment", SuccessRate: knowledge.SuccessLow,
			},
			{
				Code: "EXC-001", Description: "Permanent exclusion", SuccessRate: knowledge.SuccessUnknown,
			},
		},
		[]knowledge.Category{
			{Name: "Pre-Existing Disease", Codes: []string{"PED-001"}, CommonAppealStrategies: []string{"Ask for evidence"}},
			{Name: "Pre-Authorization", Codes: []string{"PA-001", "PA-002"}, CommonAppealStrategies: []string{"File reimbursement", "Burden on insurer"}},
		},
	)
}

func TestAnalyze_MixedCodes(t *testing.T) {
	a := NewAnalyzer(testStore()).Analyze([]string{"PED-001", "PA-001", "UNKNOWN-999"})

	assert.Equal(t, LikelihoodGood, a.OverallAppealLikelihood)
	assert.Equal(t, []string{"UNKNOWN-999"}, a.CodesUnknown)
	require.Len(t, a.CodesFound, 2)
	assert.Equal(t, "PED-001", a.CodesFound[0].Code)

	want := []string{"Ask for evidence", "Burden on insurer", "Emergency admission", "File reimbursement", "Moratorium"}
	if diff := cmp.Diff(want, a.AllStrategies); diff != "" {
		t.Errorf("strategies mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t,
		"Primary denial reason: Pre-existing disease not disclosed. Appeal likelihood: Good. Found 5 potential appeal strategies.",
		a.Summary)
}

func TestAnalyze_Empty(t *testing.T) {
	a := NewAnalyzer(testStore()).Analyze(nil)

	assert.Equal(t, LikelihoodUnknown, a.OverallAppealLikelihood)
	assert.Equal(t, "", a.Summary)
	assert.Equal(t, []string{}, a.AllStrategies)
	assert.Empty(t, a.CodesFound)
	assert.Empty(t, a.CodesUnknown)
	assert.Equal(t, "", a.PrimaryCategory)
}

func TestAnalyze_OnlyUnknown(t *testing.T) {
	a := NewAnalyzer(testStore()).Analyze([]string{"ZZ-1", "ZZ-2"})
	assert.Equal(t, LikelihoodUnknown, a.OverallAppealLikelihood)
	assert.Equal(t, []string{"ZZ-1", "ZZ-2"}, a.CodesUnknown)
	assert.Empty(t, a.Summary)
}

func TestAnalyze_Likelihood(t *testing.T) {
	tests := []struct {
		codes []string
		want  Likelihood
	}{
		{[]string{"PA-001", "SL-002"}, LikelihoodModerate},
		{[]string{"SL-002"}, LikelihoodChallenging},
		{[]string{"EXC-001"}, LikelihoodChallenging},
		{[]string{"SL-002", "PED-001"}, LikelihoodGood},
	}
	an := NewAnalyzer(testStore())
	for _, tt := range tests {
		t.Run(strings.Join(tt.codes, ","), func(t *testing.T) {
			assert.Equal(t, tt.want, an.Analyze(tt.codes).OverallAppealLikelihood)
		})
	}
}

func TestAnalyze_PrimaryCategoryStableMode(t *testing.T) {
	an := NewAnalyzer(testStore())

	a := an.Analyze([]string{"PED-001", "PA-001", "PA-002"})
	assert.Equal(t, "Pre-Authorization", a.PrimaryCategory)

	// One each: first encountered wins
	a = an.Analyze([]string{"PED-001", "PA-001"})
	assert.Equal(t, "Pre-Existing Disease", a.PrimaryCategory)
	a = an.Analyze([]string{"PA-001", "PED-001"})
	assert.Equal(t, "Pre-Authorization", a.PrimaryCategory)
}

func TestAnalyze_Deterministic(t *testing.T) {
	an := NewAnalyzer(testStore())
	first := an.Analyze([]string{"PA-001", "PED-001", "X-1"})
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, an.Analyze([]string{"PA-001", "PED-001", "X-1"})); diff != "" {
			t.Fatalf("analysis changed between runs:\n%s", diff)
		}
	}

	// Strategy set does not depend on order; summary does
	reordered := an.Analyze([]string{"PED-001", "X-1", "PA-001"})
	assert.Equal(t, first.AllStrategies, reordered.AllStrategies)
	assert.NotEqual(t, first.Summary, reordered.Summary)
}

func TestAnalyze_UnknownNeverFound(t *testing.T) {
	a := NewAnalyzer(testStore()).Analyze([]string{"PED-001", "NOPE-1", "pa-001"})
	for _, f := range a.CodesFound {
		assert.NotEqual(t, "NOPE-1", f.Code)
	}
	assert.Equal(t, []string{"NOPE-1"}, a.CodesUnknown)
	assert.Len(t, a.CodesFound, 2)
}

func TestNewAnalyzer_NilKnowledge(t *testing.T) {
	a := NewAnalyzer(nil).Analyze([]string{"PED-001"})
	assert.Equal(t, []string{"PED-001"}, a.CodesUnknown)
	assert.Equal(t, LikelihoodUnknown, a.OverallAppealLikelihood)
}

func TestFormatReport(t *testing.T) {
	a := NewAnalyzer(testStore()).Analyze([]string{"PED-001", "UNKNOWN-999"})
	report := FormatReport(a)

	lines := strings.Split(report, "\n")
	assert.Equal(t, heavyRule, lines[0])
	assert.Equal(t, "DENIAL CODE ANALYSIS", lines[1])
	assert.Equal(t, heavyRule, lines[len(lines)-1])

	assert.Contains(t, report, "Code: PED-001\nCategory: Pre-Existing Disease\n")
	assert.Contains(t, report, "Success Rate: High\n")
	assert.Contains(t, report, "Common Causes: Past ailment\n")
	assert.Contains(t, report, "Unknown Codes: UNKNOWN-999\n")
	assert.Contains(t, report, "Overall Appeal Likelihood: Good\n")
	assert.Contains(t, report, "RECOMMENDED APPEAL STRATEGIES:\n  1. Ask for evidence\n")
}

func TestFormatReport_NoStrategies(t *testing.T) {
	report := FormatReport(NewAnalyzer(testStore()).Analyze([]string{"ZZ-1"}))
	assert.NotContains(t, report, "RECOMMENDED APPEAL STRATEGIES")
	assert.Contains(t, report, "Overall Appeal Likelihood: Unknown")
}
