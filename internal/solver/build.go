package solver

import (
	"golang.org/x/time/rate"

	"github.com/tballard34/trivia-speed/internal/backend"
	"github.com/tballard34/trivia-speed/internal/config"
	"github.com/tballard34/trivia-speed/internal/ocr"
)

// Set is the collection of backends enabled for one run, split by tier.
type Set struct {
	Visions   []backend.Vision
	Extractor backend.Extractor
	Texts     []backend.Text
}

// Build assembles the enabled backends from the run configuration. A missing
// key is not checked here; the backend reports it as its own outcome.
func Build(cfg *config.Config) Set {
	var s Set

	if !cfg.NoGPT {
		s.Visions = append(s.Visions, &backend.OpenAI{
			Key:       cfg.OpenAIKey,
			Model:     cfg.OpenAIModel,
			MaxTokens: cfg.GPTMaxTokens,
			Timeout:   cfg.GPTTimeout,
			DryRun:    cfg.DryRun,
		})
	}
	if !cfg.NoMistral {
		s.Visions = append(s.Visions, &backend.Mistral{
			Key:       cfg.MistralKey,
			Model:     cfg.MistralModel,
			MaxTokens: cfg.MistralMaxTokens,
			Timeout:   cfg.MistralTimeout,
			DryRun:    cfg.DryRun,
		})
	}

	if !cfg.NoGeminiOCR {
		if cfg.OCREngine == "tesseract" {
			s.Extractor = &ocr.Tesseract{Lang: cfg.OCRLang, Timeout: cfg.GeminiTimeout}
		} else {
			s.Extractor = &backend.Gemini{
				Key:       cfg.GeminiKey,
				Model:     cfg.GeminiModel,
				MaxTokens: cfg.GeminiMaxTokens,
				Timeout:   cfg.GeminiTimeout,
				DryRun:    cfg.DryRun,
			}
		}
	}

	if cfg.SonarEnabled() {
		// one key behind every tier, so one shared limiter
		lim := rate.NewLimiter(rate.Limit(cfg.PerplexityRPS), cfg.PerplexityBurst)
		sonar := func(id backend.Name, model string) *backend.Perplexity {
			return &backend.Perplexity{
				ID:        id,
				Key:       cfg.PerplexityKey,
				Model:     model,
				MaxTokens: cfg.PerplexityMaxTokens,
				Timeout:   cfg.PerplexityTimeout,
				DryRun:    cfg.DryRun,
				Limiter:   lim,
			}
		}
		if !cfg.NoSonar {
			s.Texts = append(s.Texts, sonar(backend.BackendSonar, "sonar"))
		}
		if !cfg.NoSonarPro {
			s.Texts = append(s.Texts, sonar(backend.BackendSonarPro, "sonar-pro"))
		}
		if !cfg.NoSonarReasoning {
			s.Texts = append(s.Texts, sonar(backend.BackendSonarReasoning, "sonar-reasoning"))
		}
	}

	return s
}
