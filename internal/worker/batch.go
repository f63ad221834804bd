package worker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/assist"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/intake"
)

// Appealer runs one claim through the workflow.
type Appealer interface {
	Appeal(ctx context.Context, req assist.Request) (*assist.Outcome, error)
}

// CaseLoader turns a manifest case into a request.
type CaseLoader interface {
	Load(ctx context.Context, c intake.Case) (assist.Request, error)
}

// CaseJob appeals one manifest case.
type CaseJob struct {
	Index    int
	Case     intake.Case
	Loader   CaseLoader
	Appealer Appealer
}

// Execute loads the case documents and runs the appeal.
func (j *CaseJob) Execute(ctx context.Context) Result {
	start := time.Now()
	res := &CaseResult{Index: j.Index, ID: j.Case.ID}

	req, err := j.Loader.Load(ctx, j.Case)
	if err != nil {
		res.Error = err
		res.Duration = time.Since(start)
		return res
	}

	res.Outcome, res.Error = j.Appealer.Appeal(ctx, req)
	res.Duration = time.Since(start)
	return res
}

// Recover reports a panic inside the loader or workflow as this case's
// failure so the rest of the batch keeps going.
func (j *CaseJob) Recover(v any) Result {
	return &CaseResult{Index: j.Index, ID: j.Case.ID, Error: fmt.Errorf("case %s panicked: %v", j.Case.ID, v)}
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Index    int
	ID       string
	Outcome  *assist.Outcome
	Error    error
	Duration time.Duration
}

// GetError returns the error from the case result
func (r *CaseResult) GetError() error {
	return r.Error
}

// BatchProcessor appeals many independent cases concurrently.
type BatchProcessor struct {
	appealer    Appealer
	loader      CaseLoader
	concurrency int
	onResult    func(*CaseResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(appealer Appealer, loader CaseLoader, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		appealer:    appealer,
		loader:      loader,
		concurrency: concurrency,
	}
}

// OnResult registers a callback invoked as each case finishes, from the
// collecting goroutine.
func (b *BatchProcessor) OnResult(fn func(*CaseResult)) {
	b.onResult = fn
}

// Process runs every case and returns the results in manifest order.
// Cases not started before ctx is cancelled report ctx's error.
func (b *BatchProcessor) Process(ctx context.Context, cases []intake.Case) []*CaseResult {
	results := make([]*CaseResult, len(cases))
	if len(cases) == 0 {
		return results
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	stop := context.AfterFunc(ctx, pool.Shutdown)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range pool.Results() {
			cr, ok := r.(*CaseResult)
			if !ok {
				continue
			}
			results[cr.Index] = cr
			if b.onResult != nil {
				b.onResult(cr)
			}
		}
	}()

	for i, c := range cases {
		if !pool.Submit(&CaseJob{Index: i, Case: c, Loader: b.loader, Appealer: b.appealer}) {
			break
		}
	}
	pool.Close()
	<-done

	for i, r := range results {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i] = &CaseResult{Index: i, ID: cases[i].ID, Error: err}
		}
	}
	return results
}

// Summary counts successes and failures.
type Summary struct {
	Succeeded int
	Failed    int
	Failures  []string
}

// Summarize tallies results; failure IDs are sorted.
func Summarize(results []*CaseResult) Summary {
	var s Summary
	for _, r := range results {
		if r.Error != nil {
			s.Failed++
			s.Failures = append(s.Failures, r.ID)
			continue
		}
		s.Succeeded++
	}
	sort.Strings(s.Failures)
	return s
}
