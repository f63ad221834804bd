package pipeline

import (
	"strings"

	"github.com/google/uuid"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/denial"
)

// Patient placeholders used when a detail is not supplied.
const (
	PlaceholderName    = "[PATIENT NAME]"
	PlaceholderAddress = "[ADDRESS]"
	PlaceholderPhone   = "[PHONE]"
	PlaceholderEmail   = "[EMAIL]"
)

// Patient holds the claimant's contact details for the letter.
type Patient struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
}

// PatientFromMap reads name, address, phone and email keys.
func PatientFromMap(m map[string]string) Patient {
	return Patient{
		Name:    m["name"],
		Address: m["address"],
		Phone:   m["phone"],
		Email:   m["email"],
	}
}

// WithPlaceholders fills blank details with bracketed placeholders.
func (p Patient) WithPlaceholders() Patient {
	return Patient{
		Name:    orPlaceholder(p.Name, PlaceholderName),
		Address: orPlaceholder(p.Address, PlaceholderAddress),
		Phone:   orPlaceholder(p.Phone, PlaceholderPhone),
		Email:   orPlaceholder(p.Email, PlaceholderEmail),
	}
}

func orPlaceholder(v, placeholder string) string {
	if v = strings.TrimSpace(v); v == "" {
		return placeholder
	}
	return v
}

// Inputs are the caller-supplied values of one run.
type Inputs struct {
	DocumentText string
	DenialCodes  []string
	PolicyText   string
	Patient      Patient
}

func (in Inputs) clone() Inputs {
	in.DenialCodes = append([]string(nil), in.DenialCodes...)
	return in
}

// Run accumulates stage artifacts for one execution. Only the pipeline
// appends to it; callers get it back once all stages have completed.
type Run struct {
	ID           string
	Inputs       Inputs
	Analysis     denial.Analysis
	DenialReport string
	outputs      []string
}

func newRun(in Inputs, analysis denial.Analysis, report string) *Run {
	return &Run{
		ID:           uuid.NewString(),
		Inputs:       in.clone(),
		Analysis:     analysis,
		DenialReport: report,
		outputs:      make([]string, 0, StageCount),
	}
}

// Output returns the artifact of a completed stage.
func (r *Run) Output(id StageID) (string, bool) {
	i := int(id) - 1
	if i < 0 || i >= len(r.outputs) {
		return "", false
	}
	return r.outputs[i], true
}

// Outputs returns every artifact in stage order.
func (r *Run) Outputs() []string {
	return append([]string(nil), r.outputs...)
}

// Completed returns the number of stages that have produced output.
func (r *Run) Completed() int {
	return len(r.outputs)
}

// Final returns the quality-review artifact, or "" if the run is incomplete.
func (r *Run) Final() string {
	out, _ := r.Output(QualityReview)
	return out
}
