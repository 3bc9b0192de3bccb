package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the per-run context: capture settings, backend credentials and
// budgets, and the enable/disable switches resolved from flags. It is built
// once before a run and treated as read-only while the run is in flight.
type Config struct {
	// capture
	OutputPath     string
	Quality        int
	ResizeFactor   float64
	SaveOriginal   string
	SaveCopy       bool
	ImagePath      string
	ScreenshotsDir string

	// backend switches
	NoGPT, NoMistral, NoGeminiOCR               bool
	NoSonar, NoSonarPro, NoSonarReasoning       bool
	OnlySonar, OnlySonarPro, OnlySonarReasoning bool

	Debug   bool
	ShowOCR bool

	// provider credentials and models
	OpenAIKey, OpenAIModel   string
	MistralKey, MistralModel string
	GeminiKey, GeminiModel   string
	PerplexityKey            string

	// per-backend budgets
	GPTMaxTokens        int
	MistralMaxTokens    int
	GeminiMaxTokens     int
	PerplexityMaxTokens int

	GPTTimeout        time.Duration
	MistralTimeout    time.Duration
	GeminiTimeout     time.Duration
	PerplexityTimeout time.Duration

	PerplexityRPS   int
	PerplexityBurst int

	// extraction stage
	OCREngine string
	OCRLang   string

	DryRun bool
}

var ErrOnlyModeConflict = errors.New("the --only-sonar, --only-sonar-pro, and --only-sonar-reasoning flags are mutually exclusive")

func Load() *Config {
	_ = godotenv.Load()

	apiTimeout := seconds(get("API_TIMEOUT", "15"))

	c := &Config{
		Quality:        60,
		ResizeFactor:   0.5,
		ScreenshotsDir: get("SCREENSHOTS_DIR", "screenshots"),

		OpenAIKey:     get("OPENAI_API_KEY", ""),
		OpenAIModel:   get("OPENAI_MODEL", "gpt-4o"),
		MistralKey:    get("MISTRAL_API_KEY", ""),
		MistralModel:  get("MISTRAL_MODEL", "pixtral-12b-2409"),
		GeminiKey:     get("GEMINI_API_KEY", ""),
		GeminiModel:   get("GEMINI_MODEL", "gemini-2.0-flash"),
		PerplexityKey: get("PERPLEXITY_API_KEY", ""),

		GPTMaxTokens:        atoi(get("MAX_TOKENS", "200")),
		MistralMaxTokens:    atoi(get("MISTRAL_MAX_TOKENS", "200")),
		GeminiMaxTokens:     atoi(get("GEMINI_MAX_TOKENS", "10000")),
		PerplexityMaxTokens: atoi(get("PERPLEXITY_MAX_TOKENS", "10000")),

		GPTTimeout:        apiTimeout,
		MistralTimeout:    secondsOr(get("MISTRAL_API_TIMEOUT", ""), apiTimeout),
		GeminiTimeout:     secondsOr(get("GEMINI_API_TIMEOUT", ""), apiTimeout),
		PerplexityTimeout: secondsOr(get("PERPLEXITY_API_TIMEOUT", ""), apiTimeout),

		PerplexityRPS:   atoi(get("PERPLEXITY_RPS", "3")),
		PerplexityBurst: atoi(get("PERPLEXITY_BURST", "3")),

		OCREngine: get("OCR_ENGINE", "gemini"),
		OCRLang:   get("OCR_LANG", "eng"),

		DryRun: parseBool(get("DRY_RUN", "false")),
	}
	return c
}

// SetTimeout applies one budget to every backend, the --timeout flag path.
func (c *Config) SetTimeout(d time.Duration) {
	c.GPTTimeout = d
	c.MistralTimeout = d
	c.GeminiTimeout = d
	c.PerplexityTimeout = d
}

// ResolveOnlyMode applies the --only-sonar* flags: exactly one may be set,
// and it force-disables the vision backends, keeps OCR on, and narrows the
// sonar tier to the chosen model. --show-ocr is ignored in these modes so
// the extraction stage stays silent.
func (c *Config) ResolveOnlyMode() error {
	n := 0
	for _, v := range []bool{c.OnlySonar, c.OnlySonarPro, c.OnlySonarReasoning} {
		if v {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	if n > 1 {
		return ErrOnlyModeConflict
	}

	c.NoGPT = true
	c.NoMistral = true
	c.NoGeminiOCR = false
	c.NoSonar = !c.OnlySonar
	c.NoSonarPro = !c.OnlySonarPro
	c.NoSonarReasoning = !c.OnlySonarReasoning
	c.ShowOCR = false
	return nil
}

// OnlyMode reports whether any --only-sonar* flag is active, which also
// suppresses the OCR backend's own answer output.
func (c *Config) OnlyMode() bool {
	return c.OnlySonar || c.OnlySonarPro || c.OnlySonarReasoning
}

// SonarEnabled reports whether at least one dependent text backend will run.
func (c *Config) SonarEnabled() bool {
	return !c.NoSonar || !c.NoSonarPro || !c.NoSonarReasoning
}

func get(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func atoi(s string) int       { i, _ := strconv.Atoi(s); return i }
func parseBool(s string) bool { b, _ := strconv.ParseBool(s); return b }

func seconds(s string) time.Duration {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		i = 15
	}
	return time.Duration(i) * time.Second
}

func secondsOr(s string, d time.Duration) time.Duration {
	if s == "" {
		return d
	}
	return seconds(s)
}

func GetEnv(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
