package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the assertions depend on so a developer's
// shell cannot leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"API_TIMEOUT", "MISTRAL_API_TIMEOUT", "GEMINI_API_TIMEOUT", "PERPLEXITY_API_TIMEOUT",
		"MAX_TOKENS", "MISTRAL_MAX_TOKENS", "GEMINI_MAX_TOKENS", "PERPLEXITY_MAX_TOKENS",
		"OPENAI_MODEL", "MISTRAL_MODEL", "GEMINI_MODEL",
		"PERPLEXITY_RPS", "PERPLEXITY_BURST",
		"OCR_ENGINE", "OCR_LANG", "SCREENSHOTS_DIR", "DRY_RUN",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c := Load()

	assert.Equal(t, 60, c.Quality)
	assert.Equal(t, 0.5, c.ResizeFactor)
	assert.Equal(t, "screenshots", c.ScreenshotsDir)

	assert.Equal(t, "gpt-4o", c.OpenAIModel)
	assert.Equal(t, "pixtral-12b-2409", c.MistralModel)
	assert.Equal(t, "gemini-2.0-flash", c.GeminiModel)

	assert.Equal(t, 200, c.GPTMaxTokens)
	assert.Equal(t, 200, c.MistralMaxTokens)
	assert.Equal(t, 10000, c.GeminiMaxTokens)
	assert.Equal(t, 10000, c.PerplexityMaxTokens)

	assert.Equal(t, 15*time.Second, c.GPTTimeout)
	assert.Equal(t, 15*time.Second, c.MistralTimeout)
	assert.Equal(t, 15*time.Second, c.GeminiTimeout)
	assert.Equal(t, 15*time.Second, c.PerplexityTimeout)

	assert.Equal(t, 3, c.PerplexityRPS)
	assert.Equal(t, 3, c.PerplexityBurst)

	assert.Equal(t, "gemini", c.OCREngine)
	assert.Equal(t, "eng", c.OCRLang)
	assert.False(t, c.DryRun)
}

func TestLoad_TimeoutOverrides(t *testing.T) {
	clearEnv(t)

	t.Run("per backend override wins over the shared default", func(t *testing.T) {
		t.Setenv("API_TIMEOUT", "20")
		t.Setenv("MISTRAL_API_TIMEOUT", "30")

		c := Load()
		assert.Equal(t, 20*time.Second, c.GPTTimeout)
		assert.Equal(t, 30*time.Second, c.MistralTimeout)
		assert.Equal(t, 20*time.Second, c.GeminiTimeout)
		assert.Equal(t, 20*time.Second, c.PerplexityTimeout)
	})

	t.Run("garbage falls back to fifteen seconds", func(t *testing.T) {
		t.Setenv("API_TIMEOUT", "abc")

		c := Load()
		assert.Equal(t, 15*time.Second, c.GPTTimeout)
	})

	t.Run("dry run toggles from the environment", func(t *testing.T) {
		t.Setenv("DRY_RUN", "true")

		assert.True(t, Load().DryRun)
	})
}

func TestConfig_SetTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("MISTRAL_API_TIMEOUT", "30")

	c := Load()
	c.SetTimeout(5 * time.Second)

	assert.Equal(t, 5*time.Second, c.GPTTimeout)
	assert.Equal(t, 5*time.Second, c.MistralTimeout)
	assert.Equal(t, 5*time.Second, c.GeminiTimeout)
	assert.Equal(t, 5*time.Second, c.PerplexityTimeout)
}

func TestConfig_ResolveOnlyMode(t *testing.T) {
	t.Run("no only flags is a no-op", func(t *testing.T) {
		c := &Config{NoGPT: true, ShowOCR: true}

		require.NoError(t, c.ResolveOnlyMode())
		assert.True(t, c.NoGPT)
		assert.True(t, c.ShowOCR)
	})

	t.Run("two only flags conflict", func(t *testing.T) {
		c := &Config{OnlySonar: true, OnlySonarPro: true}

		assert.ErrorIs(t, c.ResolveOnlyMode(), ErrOnlyModeConflict)
	})

	t.Run("narrows the run to one sonar model", func(t *testing.T) {
		c := &Config{OnlySonarPro: true, NoGeminiOCR: true, ShowOCR: true}

		require.NoError(t, c.ResolveOnlyMode())

		assert.True(t, c.NoGPT)
		assert.True(t, c.NoMistral)
		assert.False(t, c.NoGeminiOCR, "extraction must stay on to feed the sonar model")
		assert.True(t, c.NoSonar)
		assert.False(t, c.NoSonarPro)
		assert.True(t, c.NoSonarReasoning)
		assert.False(t, c.ShowOCR)
	})
}

func TestConfig_OnlyMode(t *testing.T) {
	assert.False(t, (&Config{}).OnlyMode())
	assert.True(t, (&Config{OnlySonarReasoning: true}).OnlyMode())
}

func TestConfig_SonarEnabled(t *testing.T) {
	assert.True(t, (&Config{}).SonarEnabled())
	assert.True(t, (&Config{NoSonar: true, NoSonarPro: true}).SonarEnabled())
	assert.False(t, (&Config{NoSonar: true, NoSonarPro: true, NoSonarReasoning: true}).SonarEnabled())
}
