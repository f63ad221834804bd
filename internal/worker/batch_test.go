package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/assist"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/intake"
)

type mockAppealer struct {
	mock.Mock
}

func (m *mockAppealer) Appeal(ctx context.Context, req assist.Request) (*assist.Outcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assist.Outcome), args.Error(1)
}

// echoLoader turns a case into a request without touching the filesystem.
type echoLoader struct {
	fail map[string]error
}

func (l echoLoader) Load(_ context.Context, c intake.Case) (assist.Request, error) {
	if err := l.fail[c.ID]; err != nil {
		return assist.Request{}, err
	}
	return assist.Request{ID: c.ID, DocumentText: "letter for " + c.ID, DenialCodes: c.DenialCodes}, nil
}

type funcAppealer func(ctx context.Context, req assist.Request) (*assist.Outcome, error)

func (f funcAppealer) Appeal(ctx context.Context, req assist.Request) (*assist.Outcome, error) {
	return f(ctx, req)
}

func cases(ids ...string) []intake.Case {
	out := make([]intake.Case, len(ids))
	for i, id := range ids {
		out[i] = intake.Case{ID: id, Document: id + ".txt"}
	}
	return out
}

func TestBatchProcessor_Process(t *testing.T) {
	appealer := &mockAppealer{}
	appealer.On("Appeal", mock.Anything, mock.MatchedBy(func(r assist.Request) bool { return r.ID != "c2" })).
		Return(&assist.Outcome{Letter: "letter"}, nil)
	appealer.On("Appeal", mock.Anything, mock.MatchedBy(func(r assist.Request) bool { return r.ID == "c2" })).
		Return(nil, errors.New("stage 3 failed"))

	b := NewBatchProcessor(appealer, echoLoader{}, 2)
	results := b.Process(context.Background(), cases("c1", "c2", "c3", "c4"))

	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, fmt.Sprintf("c%d", i+1), r.ID)
	}
	assert.NoError(t, results[0].Error)
	assert.Equal(t, "letter", results[0].Outcome.Letter)
	assert.EqualError(t, results[1].Error, "stage 3 failed")
	assert.Nil(t, results[1].Outcome)

	appealer.AssertNumberOfCalls(t, "Appeal", 4)

	s := Summarize(results)
	assert.Equal(t, 3, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, []string{"c2"}, s.Failures)
}

func TestBatchProcessor_LoadFailureSkipsAppeal(t *testing.T) {
	appealer := &mockAppealer{}
	appealer.On("Appeal", mock.Anything, mock.Anything).Return(&assist.Outcome{}, nil)

	loadErr := errors.New("missing document")
	b := NewBatchProcessor(appealer, echoLoader{fail: map[string]error{"bad": loadErr}}, 3)
	results := b.Process(context.Background(), cases("ok", "bad"))

	assert.NoError(t, results[0].Error)
	assert.ErrorIs(t, results[1].Error, loadErr)
	appealer.AssertNumberOfCalls(t, "Appeal", 1)
}

func TestBatchProcessor_Empty(t *testing.T) {
	b := NewBatchProcessor(&mockAppealer{}, echoLoader{}, 2)
	assert.Empty(t, b.Process(context.Background(), nil))
}

func TestBatchProcessor_BoundedConcurrency(t *testing.T) {
	var current, peak int32
	appealer := funcAppealer(func(ctx context.Context, req assist.Request) (*assist.Outcome, error) {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return &assist.Outcome{ID: req.ID}, nil
	})

	ids := make([]string, 30)
	for i := range ids {
		ids[i] = fmt.Sprintf("case-%02d", i)
	}

	var seen int32
	b := NewBatchProcessor(appealer, echoLoader{}, 3)
	b.OnResult(func(*CaseResult) { atomic.AddInt32(&seen, 1) })
	results := b.Process(context.Background(), cases(ids...))

	assert.Equal(t, int32(30), atomic.LoadInt32(&seen))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	for i, r := range results {
		require.NoError(t, r.Error)
		assert.Equal(t, ids[i], r.Outcome.ID)
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	appealer := funcAppealer(func(ctx context.Context, req assist.Request) (*assist.Outcome, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})

	b := NewBatchProcessor(appealer, echoLoader{}, 1)
	results := b.Process(ctx, cases("a", "b", "c", "d", "e", "f", "g", "h"))

	require.Len(t, results, 8)
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
}

func TestBatchProcessor_CancelStopsSubmitting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	appealer := funcAppealer(func(ctx context.Context, req assist.Request) (*assist.Outcome, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return nil, ctx.Err()
	})

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = fmt.Sprintf("case-%02d", i)
	}

	// One worker with a queue of two: besides the first case, only the two
	// queued cases and a Submit already parked on the full queue can reach
	// the appealer. Every later Submit must be refused.
	results := NewBatchProcessor(appealer, echoLoader{}, 1).Process(ctx, cases(ids...))

	require.Len(t, results, 50)
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(4))
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
}

func TestCaseResult_GetError(t *testing.T) {
	r1 := &CaseResult{ID: "a"}
	assert.NoError(t, r1.GetError())

	expected := errors.New("failed")
	r2 := &CaseResult{ID: "b", Error: expected}
	assert.Equal(t, expected, r2.GetError())
}

func TestBatchProcessor_PanicIsCaseFailure(t *testing.T) {
	appealer := funcAppealer(func(_ context.Context, req assist.Request) (*assist.Outcome, error) {
		if req.ID == "bad" {
			panic("nil policy")
		}
		return &assist.Outcome{ID: req.ID}, nil
	})

	results := NewBatchProcessor(appealer, echoLoader{}, 2).Process(context.Background(), cases("ok", "bad"))
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Error)
	require.Error(t, results[1].Error)
	assert.Equal(t, "case bad panicked: nil policy", results[1].Error.Error())
	assert.Equal(t, "bad", results[1].ID)
}
