package denial

import (
	"fmt"
	"strings"
)

const (
	heavyRule = "============================================================"
	lightRule = "------------------------------------------------------------"
)

// FormatReport renders an analysis as the plain-text report quoted into the
// denial review prompt.
func FormatReport(a Analysis) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(heavyRule)
	line("DENIAL CODE ANALYSIS")
	line(heavyRule)
	line("")

	for _, found := range a.CodesFound {
		rec := found.Record
		line("Code: %s", found.Code)
		line("Category: %s", orDefault(rec.Category, "Unknown"))
		line("Description: %s", orDefault(rec.Description, "No description"))
		line("Success Rate: %s", orDefault(string(rec.SuccessRate), "Unknown"))
		line("Common Causes: %s", strings.Join(rec.CommonCauses, ", "))
		line("")
	}

	if len(a.CodesUnknown) > 0 {
		line("Unknown Codes: %s", strings.Join(a.CodesUnknown, ", "))
		line("")
	}

	line(lightRule)
	line("Overall Appeal Likelihood: %s", orDefault(string(a.OverallAppealLikelihood), string(LikelihoodUnknown)))
	line("")

	if len(a.AllStrategies) > 0 {
		line("RECOMMENDED APPEAL STRATEGIES:")
		for i, s := range a.AllStrategies {
			line("  %d. %s", i+1, s)
		}
	}

	b.WriteString(heavyRule)
	return b.String()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
