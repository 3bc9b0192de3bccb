package solver

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tballard34/trivia-speed/internal/backend"
	"github.com/tballard34/trivia-speed/internal/capture"
)

type stubVision struct {
	name     backend.Name
	budget   time.Duration
	delay    time.Duration
	analysis backend.Analysis
	err      error
	panicMsg string
	calls    atomic.Int32
}

func (s *stubVision) Name() backend.Name    { return s.name }
func (s *stubVision) Budget() time.Duration { return s.budget }

func (s *stubVision) Analyze(ctx context.Context, _ *capture.Shot) (backend.Analysis, error) {
	s.calls.Add(1)
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return backend.Analysis{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.analysis, s.err
}

type stubExtractor struct {
	name       backend.Name
	budget     time.Duration
	delay      time.Duration
	extraction backend.Extraction
	err        error
	calls      atomic.Int32
}

func (s *stubExtractor) Name() backend.Name    { return s.name }
func (s *stubExtractor) Budget() time.Duration { return s.budget }

func (s *stubExtractor) Extract(ctx context.Context, _ *capture.Shot) (backend.Extraction, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return backend.Extraction{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.extraction, s.err
}

type stubText struct {
	name     backend.Name
	budget   time.Duration
	analysis backend.Analysis
	err      error
	calls    atomic.Int32

	mu       sync.Mutex
	question backend.Question
}

func (s *stubText) Name() backend.Name    { return s.name }
func (s *stubText) Budget() time.Duration { return s.budget }

func (s *stubText) Answer(_ context.Context, q backend.Question) (backend.Analysis, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.question = q
	s.mu.Unlock()
	return s.analysis, s.err
}

func (s *stubText) gotQuestion() backend.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.question
}

func collect(ch <-chan backend.Outcome) []backend.Outcome {
	var out []backend.Outcome
	for oc := range ch {
		out = append(out, oc)
	}
	return out
}

func byBackend(ocs []backend.Outcome) map[backend.Name]backend.Outcome {
	m := make(map[backend.Name]backend.Outcome, len(ocs))
	for _, oc := range ocs {
		m[oc.Backend] = oc
	}
	return m
}

func TestRun_CompletionOrder(t *testing.T) {
	shot := &capture.Shot{Width: 100, Height: 50}
	fast := &stubVision{name: "fast", budget: time.Second, analysis: backend.Analysis{Answer: "A"}}
	slow := &stubVision{name: "slow", budget: time.Second, delay: 100 * time.Millisecond, analysis: backend.Analysis{Answer: "B"}}

	out := collect(Run(context.Background(), Set{Visions: []backend.Vision{slow, fast}}, shot))

	require.Len(t, out, 2)
	assert.Equal(t, backend.Name("fast"), out[0].Backend, "faster backend must stream first")
	assert.Equal(t, backend.Name("slow"), out[1].Backend)
	for _, oc := range out {
		assert.Equal(t, backend.StatusOK, oc.Status)
	}
}

func TestRun_ExtractionFeedsTextTier(t *testing.T) {
	shot := &capture.Shot{}
	x := &stubExtractor{
		name:   backend.BackendGeminiOCR,
		budget: time.Second,
		extraction: backend.Extraction{
			Question: "Which planet is closest to the sun?",
			Options:  []string{"Mercury", "Venus", "Mars"},
			Answer:   "Mercury",
		},
	}
	texts := []*stubText{
		{name: backend.BackendSonar, budget: time.Second, analysis: backend.Analysis{Answer: "Mercury"}},
		{name: backend.BackendSonarPro, budget: time.Second, analysis: backend.Analysis{Answer: "Mercury"}},
		{name: backend.BackendSonarReasoning, budget: time.Second, analysis: backend.Analysis{Answer: "Mercury"}},
	}
	set := Set{Extractor: x, Texts: []backend.Text{texts[0], texts[1], texts[2]}}

	out := collect(Run(context.Background(), set, shot))

	require.Len(t, out, 4)
	m := byBackend(out)

	ex := m[backend.BackendGeminiOCR]
	assert.Equal(t, backend.StatusOK, ex.Status)
	require.NotNil(t, ex.Extraction)
	assert.Equal(t, "Which planet is closest to the sun?", ex.Extraction.Question)

	assert.EqualValues(t, 1, x.calls.Load(), "one extraction feeds every text backend")
	for _, s := range texts {
		assert.Equal(t, backend.StatusOK, m[s.name].Status)
		q := s.gotQuestion()
		assert.Equal(t, "Which planet is closest to the sun?", q.Text)
		assert.Equal(t, []string{"Mercury", "Venus", "Mars"}, q.Options)
	}
}

func TestRun_ExtractionTimeoutSkipsTextTier(t *testing.T) {
	shot := &capture.Shot{}
	v := &stubVision{name: backend.BackendGPT, budget: time.Second, analysis: backend.Analysis{Answer: "A"}}
	x := &stubExtractor{name: backend.BackendGeminiOCR, budget: 30 * time.Millisecond, delay: time.Second}
	texts := []*stubText{
		{name: backend.BackendSonar, budget: 2 * time.Second},
		{name: backend.BackendSonarPro, budget: 3 * time.Second},
	}
	set := Set{
		Visions:   []backend.Vision{v},
		Extractor: x,
		Texts:     []backend.Text{texts[0], texts[1]},
	}

	out := collect(Run(context.Background(), set, shot))

	require.Len(t, out, 4)
	m := byBackend(out)

	assert.Equal(t, backend.StatusOK, m[backend.BackendGPT].Status, "vision tier is independent of extraction")
	assert.Equal(t, backend.StatusTimeout, m[backend.BackendGeminiOCR].Status)
	assert.Nil(t, m[backend.BackendGeminiOCR].Extraction)

	for _, s := range texts {
		oc := m[s.name]
		assert.Equal(t, backend.StatusSkipped, oc.Status)
		assert.ErrorIs(t, oc.Err, ErrExtractionUnavailable)
		assert.Equal(t, s.budget, oc.Budget)
		assert.Zero(t, s.calls.Load(), "skipped backend must never be called")
	}
}

func TestRun_EmptyQuestionSkipsTextTier(t *testing.T) {
	x := &stubExtractor{
		name:       backend.BackendGeminiOCR,
		budget:     time.Second,
		extraction: backend.Extraction{Answer: "Paris"},
	}
	txt := &stubText{name: backend.BackendSonar, budget: time.Second}

	out := collect(Run(context.Background(), Set{Extractor: x, Texts: []backend.Text{txt}}, &capture.Shot{}))

	require.Len(t, out, 2)
	by := byBackend(out)
	assert.Equal(t, backend.StatusOK, by[backend.BackendGeminiOCR].Status)
	assert.Equal(t, backend.StatusSkipped, by[backend.BackendSonar].Status, "an extraction with no question cannot feed the text tier")
	assert.ErrorIs(t, by[backend.BackendSonar].Err, ErrExtractionUnavailable)
	assert.Zero(t, txt.calls.Load())
}

func TestRun_EmptySet(t *testing.T) {
	out := collect(Run(context.Background(), Set{}, &capture.Shot{}))
	assert.Empty(t, out)
}

func TestRun_MissingKey(t *testing.T) {
	v := &stubVision{name: backend.BackendMistral, budget: time.Hour, err: backend.ErrNoAPIKey}

	start := time.Now()
	out := collect(Run(context.Background(), Set{Visions: []backend.Vision{v}}, &capture.Shot{}))

	require.Len(t, out, 1)
	assert.Equal(t, backend.StatusNoKey, out[0].Status)
	assert.ErrorIs(t, out[0].Err, backend.ErrNoAPIKey)
	assert.Less(t, time.Since(start), 3*time.Second, "missing key must fail fast, not wait out the budget")
}

func TestRun_InterruptSkipsTextTier(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x := &stubExtractor{
		name:       backend.BackendGeminiOCR,
		budget:     time.Second,
		extraction: backend.Extraction{Question: "Q", Answer: "A"},
	}
	txt := &stubText{name: backend.BackendSonar, budget: time.Second}

	out := collect(Run(ctx, Set{Extractor: x, Texts: []backend.Text{txt}}, &capture.Shot{}))

	require.Len(t, out, 1, "a cancelled run reports the extraction but launches nothing after it")
	assert.Equal(t, backend.StatusOK, out[0].Status, "cancellation gates launches, not calls already in flight")
	assert.Zero(t, txt.calls.Load())
}

func TestRun_TextTierNeedsExtractor(t *testing.T) {
	txt := &stubText{name: backend.BackendSonar, budget: time.Second}

	out := collect(Run(context.Background(), Set{Texts: []backend.Text{txt}}, &capture.Shot{}))

	assert.Empty(t, out)
	assert.Zero(t, txt.calls.Load())
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	v := &stubVision{name: backend.BackendGPT, budget: time.Second, panicMsg: "bad image decode"}

	out := collect(Run(context.Background(), Set{Visions: []backend.Vision{v}}, &capture.Shot{}))

	require.Len(t, out, 1)
	assert.Equal(t, backend.StatusFailure, out[0].Status)
	assert.ErrorContains(t, out[0].Err, "bad image decode")
}
