package pipeline

import (
	"fmt"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/util"
)

// View is what a stage prompt sees of a run: declared predecessor outputs
// and declared raw inputs, already capped. Any other access is recorded as
// a violation and yields an empty value.
type View struct {
	stage      *Stage
	run        *Run
	violations []string
}

func newView(stage *Stage, run *Run) *View {
	return &View{stage: stage, run: run}
}

// Output returns the artifact of a declared predecessor stage.
func (v *View) Output(id StageID) string {
	if !v.stage.reads(id) {
		v.violate("output of %s", id)
		return ""
	}
	out, ok := v.run.Output(id)
	if !ok {
		v.violate("output of %s before it completed", id)
	}
	return out
}

// Document returns the denial document text, capped for the stage.
func (v *View) Document() string {
	if !v.stage.Inputs.Has(InputDocument) {
		v.violate("document text")
		return ""
	}
	return util.Truncate(v.run.Inputs.DocumentText, v.stage.Limits.Document)
}

// Policy returns the policy text, capped for the stage.
func (v *View) Policy() string {
	if !v.stage.Inputs.Has(InputPolicy) {
		v.violate("policy text")
		return ""
	}
	return util.Truncate(v.run.Inputs.PolicyText, v.stage.Limits.Policy)
}

// DenialReport returns the precomputed denial-code report.
func (v *View) DenialReport() string {
	if !v.stage.Inputs.Has(InputDenialReport) {
		v.violate("denial report")
		return ""
	}
	return v.run.DenialReport
}

// Patient returns the patient details with placeholders for blanks.
func (v *View) Patient() Patient {
	if !v.stage.Inputs.Has(InputPatient) {
		v.violate("patient details")
		return Patient{}.WithPlaceholders()
	}
	return v.run.Inputs.Patient.WithPlaceholders()
}

func (v *View) violate(format string, args ...any) {
	v.violations = append(v.violations, fmt.Sprintf(format, args...))
}

func (v *View) err() error {
	if len(v.violations) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s read %v", ErrUndeclaredRead, v.stage.ID, v.violations)
}
