package present

import (
	"fmt"
	"io"
	"os"

	"github.com/tballard34/trivia-speed/internal/backend"
	"github.com/tballard34/trivia-speed/internal/config"
)

// Style is one backend's terminal rendering: a 256-color code (0 = plain),
// an optional bracketed label, and the heading used in debug blocks.
type Style struct {
	Color int
	Label string
	Title string
}

var styles = map[backend.Name]Style{
	backend.BackendGPT:            {Title: "GPT-4o"},
	backend.BackendMistral:        {Color: 208, Title: "Mistral"},
	backend.BackendGeminiOCR:      {Color: 135, Title: "Gemini OCR"},
	backend.BackendTesseract:      {Title: "Tesseract OCR"},
	backend.BackendSonar:          {Color: 27, Label: "[Sonar] ", Title: "Sonar"},
	backend.BackendSonarPro:       {Color: 40, Label: "[Sonar Pro] ", Title: "Sonar Pro"},
	backend.BackendSonarReasoning: {Color: 75, Label: "[Sonar Reasoning] ", Title: "Sonar Reasoning"},
}

var failMessages = map[backend.Name][2]string{
	backend.BackendGPT:       {"Error: GPT-4o API request timed out", "Error: Failed to analyze trivia with GPT-4o"},
	backend.BackendMistral:   {"Error: Mistral API request timed out", "Error: Failed to analyze trivia with Mistral"},
	backend.BackendGeminiOCR: {"Error: Gemini OCR API request timed out", "Error: Failed to extract text with Gemini OCR"},
	backend.BackendTesseract: {"Error: Tesseract OCR timed out", "Error: Failed to extract text with Tesseract OCR"},
}

// Presenter renders outcomes as they arrive. Answers go to stdout; the
// structured logs stay on stderr so piping the answers works.
type Presenter struct {
	Out      io.Writer
	Debug    bool
	ShowOCR  bool
	OnlyMode bool
}

func New(cfg *config.Config) *Presenter {
	return &Presenter{
		Out:      os.Stdout,
		Debug:    cfg.Debug,
		ShowOCR:  cfg.ShowOCR,
		OnlyMode: cfg.OnlyMode(),
	}
}

// Render writes one outcome. Safe to call from a single drain loop only.
func (p *Presenter) Render(oc backend.Outcome) {
	if p.OnlyMode && isExtractor(oc.Backend) {
		// only-sonar modes suppress extraction output; errors still show in debug
		if p.Debug && !oc.OK() {
			p.renderDebug(oc)
		}
		return
	}
	if p.Debug {
		p.renderDebug(oc)
		return
	}
	switch oc.Status {
	case backend.StatusOK:
		p.renderAnswer(oc)
	case backend.StatusSkipped:
		// silent outside debug, same as a disabled backend
	default:
		p.renderError(oc)
	}
}

func (p *Presenter) renderAnswer(oc backend.Outcome) {
	st := styles[oc.Backend]
	if oc.Extraction != nil {
		p.renderExtraction(oc.Extraction, st)
		return
	}
	fmt.Fprintf(p.Out, "\n%s\n", colorize(st.Color, st.Label+oc.Analysis.Answer))
}

func (p *Presenter) renderExtraction(e *backend.Extraction, st Style) {
	if p.ShowOCR {
		fmt.Fprintf(p.Out, "\n%s\n\n", e.Question)
		for i, opt := range e.Options {
			fmt.Fprintf(p.Out, "  %d. %s\n", i+1, opt)
		}
		fmt.Fprintln(p.Out)
		if e.Answer != "" {
			fmt.Fprintln(p.Out, colorize(st.Color, e.Answer))
		}
		return
	}
	if e.Answer != "" {
		fmt.Fprintf(p.Out, "\n%s\n", colorize(st.Color, e.Answer))
	}
}

func (p *Presenter) renderError(oc backend.Outcome) {
	if msg := errorMessage(oc); msg != "" {
		fmt.Fprintln(p.Out, msg)
	}
}

func (p *Presenter) renderDebug(oc backend.Outcome) {
	st := styles[oc.Backend]
	fmt.Fprintf(p.Out, "\n--- %s (%.3fs) ---\n", st.Title, oc.Elapsed.Seconds())
	switch oc.Status {
	case backend.StatusOK:
		if e := oc.Extraction; e != nil {
			fmt.Fprintf(p.Out, "Question: %s\n", e.Question)
			if len(e.Options) > 0 {
				fmt.Fprintln(p.Out, "Options:")
				for i, opt := range e.Options {
					fmt.Fprintf(p.Out, "  %d. %s\n", i+1, opt)
				}
			}
		}
		fmt.Fprintf(p.Out, "Rationale: %s\n", oc.Analysis.Rationale)
		fmt.Fprintf(p.Out, "Answer: %s\n", oc.Analysis.Answer)
	case backend.StatusSkipped:
		fmt.Fprintln(p.Out, "Skipped: extraction unavailable")
	case backend.StatusTimeout:
		fmt.Fprintf(p.Out, "Error: timed out after %s\n", oc.Budget)
	default:
		fmt.Fprintf(p.Out, "Error: %v\n", oc.Err)
	}
}

func errorMessage(oc backend.Outcome) string {
	if isSonar(oc.Backend) {
		model := string(oc.Backend)
		switch oc.Status {
		case backend.StatusTimeout:
			return fmt.Sprintf("Error: Perplexity API request timed out for model %s", model)
		case backend.StatusNoKey:
			return fmt.Sprintf("\n\x1b[31mError: Failed to get response from Perplexity (%s)\x1b[0m", model)
		default:
			return fmt.Sprintf("Error: Failed to analyze with Perplexity (%s)", model)
		}
	}
	m, ok := failMessages[oc.Backend]
	if !ok {
		return fmt.Sprintf("Error: %s failed", oc.Backend)
	}
	if oc.Status == backend.StatusTimeout {
		return m[0]
	}
	return m[1]
}

func colorize(code int, s string) string {
	if code == 0 {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

func isExtractor(n backend.Name) bool {
	return n == backend.BackendGeminiOCR || n == backend.BackendTesseract
}

func isSonar(n backend.Name) bool {
	switch n {
	case backend.BackendSonar, backend.BackendSonarPro, backend.BackendSonarReasoning:
		return true
	}
	return false
}
