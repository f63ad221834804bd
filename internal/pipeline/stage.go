package pipeline

import (
	"fmt"
	"strings"
)

// StageID identifies one of the six fixed analysis stages.
type StageID int

const (
	DocumentAnalysis StageID = iota + 1
	PolicyAnalysis
	DenialReview
	AppealStrategy
	LetterDrafting
	QualityReview
)

// StageCount is the number of stages in every run.
const StageCount = 6

var stageNames = [...]string{
	DocumentAnalysis: "document_analysis",
	PolicyAnalysis:   "policy_analysis",
	DenialReview:     "denial_review",
	AppealStrategy:   "appeal_strategy",
	LetterDrafting:   "letter_drafting",
	QualityReview:    "quality_review",
}

func (id StageID) String() string {
	if id < DocumentAnalysis || id > QualityReview {
		return fmt.Sprintf("stage(%d)", int(id))
	}
	return stageNames[id]
}

// InputSet is the set of raw run inputs a stage may read.
type InputSet uint8

const (
	InputDocument InputSet = 1 << iota
	InputPolicy
	InputDenialReport
	InputPatient
)

// Has reports whether s contains every input in x.
func (s InputSet) Has(x InputSet) bool {
	return s&x == x
}

// Prompt caps for raw text quoted outside the first stage.
const (
	DocumentCap = 3000
	PolicyCap   = 5000
)

// Limits caps the raw text a stage receives. Zero means uncapped.
type Limits struct {
	Document int
	Policy   int
}

// Role is the persona a stage's model call takes on.
type Role struct {
	Title     string
	Goal      string
	Backstory string
}

// System renders the role as a system instruction.
func (r Role) System() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s.\nYour goal: %s", r.Title, r.Goal)
	if bs := strings.TrimSpace(r.Backstory); bs != "" {
		b.WriteString("\n\n")
		b.WriteString(bs)
	}
	return b.String()
}

// Stage is one step of the analysis chain. Prompt may only use the
// predecessors in Reads and the raw inputs in Inputs; View enforces that.
type Stage struct {
	ID       StageID
	Role     Role
	Reads    []StageID
	Inputs   InputSet
	Limits   Limits
	Expected string
	Prompt   func(v *View) string
}

// reads reports whether the stage declared id as a predecessor.
func (s *Stage) reads(id StageID) bool {
	for _, r := range s.Reads {
		if r == id {
			return true
		}
	}
	return false
}

// validate checks that stages run 1..6 in order and only read earlier stages.
func validate(stages []Stage) error {
	if len(stages) != StageCount {
		return fmt.Errorf("pipeline needs %d stages, got %d", StageCount, len(stages))
	}
	for i, st := range stages {
		want := StageID(i + 1)
		if st.ID != want {
			return fmt.Errorf("stage %d has id %s, want %s", i+1, st.ID, want)
		}
		if st.Prompt == nil {
			return fmt.Errorf("stage %s has no prompt", st.ID)
		}
		for _, r := range st.Reads {
			if r < DocumentAnalysis || r >= st.ID {
				return fmt.Errorf("stage %s reads %s, which does not precede it", st.ID, r)
			}
		}
	}
	return nil
}
