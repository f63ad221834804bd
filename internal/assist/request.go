package assist

import (
	"context"
	"fmt"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/intake"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/pipeline"
)

// Loader reads the documents a manifest case points at.
type Loader struct {
	Fetcher  *intake.Fetcher
	MaxBytes int64
}

// Load builds a Request from c.
func (l Loader) Load(ctx context.Context, c intake.Case) (Request, error) {
	doc, err := intake.Load(ctx, l.Fetcher, c.Document, l.MaxBytes)
	if err != nil {
		return Request{}, fmt.Errorf("case %s document: %w", c.ID, err)
	}

	var policy string
	if c.Policy != "" {
		policy, err = intake.Load(ctx, l.Fetcher, c.Policy, l.MaxBytes)
		if err != nil {
			return Request{}, fmt.Errorf("case %s policy: %w", c.ID, err)
		}
	}

	return Request{
		ID:           c.ID,
		DocumentText: doc,
		PolicyText:   policy,
		DenialCodes:  c.DenialCodes,
		Patient:      pipeline.PatientFromMap(c.Patient),
	}, nil
}
