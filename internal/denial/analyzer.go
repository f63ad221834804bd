// Package denial aggregates per-code knowledge lookups into a single appeal
// verdict for a claim.
package denial

import (
	"fmt"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/knowledge"
)

// Likelihood is the overall appeal outlook.
type Likelihood string

const (
	LikelihoodGood        Likelihood = "Good"
	LikelihoodModerate    Likelihood = "Moderate"
	LikelihoodChallenging Likelihood = "Challenging"
	LikelihoodUnknown     Likelihood = "Unknown"
)

// Knowledge is the lookup surface the analyzer needs.
type Knowledge interface {
	Lookup(code string) (knowledge.Record, bool)
	CategoryOf(code string) (knowledge.Category, bool)
	Strategies(code string) []string
}

// FoundCode pairs a caller-supplied code with its record.
type FoundCode struct {
	Code   string           `json:"code"`
	Record knowledge.Record `json:"info"`
}

// Analysis is the result of analysing one list of denial codes.
type Analysis struct {
	CodesFound              []FoundCode `json:"codes_found"`
	CodesUnknown            []string    `json:"codes_unknown"`
	PrimaryCategory         string      `json:"primary_category,omitempty"`
	AllStrategies           []string    `json:"all_strategies"`
	OverallAppealLikelihood Likelihood  `json:"overall_appeal_likelihood"`
	Summary                 string      `json:"summary"`
}

// Analyzer analyses denial codes against a knowledge table.
type Analyzer struct {
	kb Knowledge
}

// NewAnalyzer creates an analyzer. A nil table behaves as empty.
func NewAnalyzer(kb Knowledge) *Analyzer {
	if kb == nil {
		kb = knowledge.Empty()
	}
	return &Analyzer{kb: kb}
}

// Analyze classifies codes and derives the overall verdict.
// The summary refers to the first found code, so callers should pass codes
// in document order.
func (a *Analyzer) Analyze(codes []string) Analysis {
	result := Analysis{
		CodesFound:              []FoundCode{},
		CodesUnknown:            []string{},
		AllStrategies:           []string{},
		OverallAppealLikelihood: LikelihoodUnknown,
	}

	var (
		categories []string
		rates      []knowledge.SuccessRate
		strategies []string
	)
	for _, code := range codes {
		rec, ok := a.kb.Lookup(code)
		if !ok {
			result.CodesUnknown = append(result.CodesUnknown, code)
			continue
		}
		result.CodesFound = append(result.CodesFound, FoundCode{Code: code, Record: rec})
		rates = append(rates, rec.SuccessRate)

		if cat, ok := a.kb.CategoryOf(code); ok {
			categories = append(categories, cat.Name)
		}
		strategies = append(strategies, a.kb.Strategies(code)...)
	}

	result.PrimaryCategory = mode(categories)
	result.AllStrategies = knowledge.Dedupe(strategies)
	if len(rates) > 0 {
		result.OverallAppealLikelihood = likelihood(rates)
	}

	if len(result.CodesFound) > 0 {
		primary := result.CodesFound[0]
		result.Summary = fmt.Sprintf(
			"Primary denial reason: %s. Appeal likelihood: %s. Found %d potential appeal strategies.",
			primary.Record.Description, result.OverallAppealLikelihood, len(result.AllStrategies),
		)
	}

	return result
}

// mode returns the most frequent value; ties go to the first one seen.
func mode(values []string) string {
	counts := make(map[string]int, len(values))
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func likelihood(rates []knowledge.SuccessRate) Likelihood {
	var medium bool
	for _, r := range rates {
		switch r {
		case knowledge.SuccessHigh:
			return LikelihoodGood
		case knowledge.SuccessMedium:
			medium = true
		}
	}
	if medium {
		return LikelihoodModerate
	}
	return LikelihoodChallenging
}
