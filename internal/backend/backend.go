package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tballard34/trivia-speed/internal/capture"
)

// Name identifies which backend produced an outcome.
type Name string

const (
	BackendGPT            Name = "gpt"
	BackendMistral        Name = "mistral"
	BackendGeminiOCR      Name = "gemini-ocr"
	BackendTesseract      Name = "tesseract-ocr"
	BackendSonar          Name = "sonar"
	BackendSonarPro       Name = "sonar-pro"
	BackendSonarReasoning Name = "sonar-reasoning"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusTimeout Status = "timeout"
	StatusFailure Status = "failure"
	StatusNoKey   Status = "no_key"
	StatusSkipped Status = "skipped"
)

var ErrNoAPIKey = errors.New("backend: api key not configured")

// Analysis is the normalized verdict every backend resolves to. Answer is
// never empty on a parsed reply; the parse ladder substitutes a sentinel
// before it would leave it blank.
type Analysis struct {
	Rationale string `json:"rationale"`
	Answer    string `json:"answer"`
	Raw       string `json:"-"`
}

// Extraction is the OCR backend's reply: the transcribed question plus the
// model's own attempt at answering it.
type Extraction struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	Rationale string   `json:"rationale"`
	Answer    string   `json:"answer"`
	Raw       string   `json:"-"`
}

func (e Extraction) Analysis() Analysis {
	return Analysis{Rationale: e.Rationale, Answer: e.Answer, Raw: e.Raw}
}

// Question is the text form of the on-screen prompt. Published once per run
// by the OCR backend and shared read-only by the text tier.
type Question struct {
	Text    string
	Options []string
}

func (q Question) Empty() bool { return strings.TrimSpace(q.Text) == "" }

// Outcome is the single terminal result of one backend launch. Backend
// errors stop here; nothing propagates past it.
type Outcome struct {
	Backend    Name
	Status     Status
	Analysis   Analysis
	Extraction *Extraction
	Err        error
	Elapsed    time.Duration
	Budget     time.Duration
}

func (o Outcome) OK() bool { return o.Status == StatusOK }

// Vision answers straight from the captured image.
type Vision interface {
	Name() Name
	Budget() time.Duration
	Analyze(ctx context.Context, shot *capture.Shot) (Analysis, error)
}

// Extractor reads the question out of the image and answers it in the same
// call. Its extraction feeds the text tier.
type Extractor interface {
	Name() Name
	Budget() time.Duration
	Extract(ctx context.Context, shot *capture.Shot) (Extraction, error)
}

// Text answers from an extracted question instead of pixels.
type Text interface {
	Name() Name
	Budget() time.Duration
	Answer(ctx context.Context, q Question) (Analysis, error)
}

// Classify maps a backend error onto the outcome taxonomy.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.Is(err, ErrNoAPIKey):
		return StatusNoKey
	default:
		return StatusFailure
	}
}

// prepGate bounds concurrent payload construction; a vision payload embeds
// a few hundred KB of base64.
var prepGate = semaphore.NewWeighted(4)

func prepare(ctx context.Context, build func() error) error {
	if err := prepGate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer prepGate.Release(1)
	return build()
}
