package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tballard34/trivia-speed/internal/capture"
	"github.com/tballard34/trivia-speed/internal/telemetry"
)

// Gemini transcribes the question out of the shot and answers it in the
// same call. Its extraction is what the sonar tier runs on.
type Gemini struct {
	Key, Model string
	MaxTokens  int
	Timeout    time.Duration
	DryRun     bool
}

func (c *Gemini) Name() Name            { return BackendGeminiOCR }
func (c *Gemini) Budget() time.Duration { return c.Timeout }

func (c *Gemini) Extract(ctx context.Context, shot *capture.Shot) (Extraction, error) {
	// DRY_RUN mode: skip API call
	if c.DryRun {
		log := telemetry.L().With().Str("backend", string(c.Name())).Logger()
		log.Info().Msg("gemini_dry_run_enabled")
		return Extraction{
			Question:  "simulated question",
			Options:   []string{"A", "B", "C"},
			Rationale: "simulated rationale",
			Answer:    "simulated answer",
		}, nil
	}
	if c.Key == "" {
		return Extraction{}, ErrNoAPIKey
	}

	cli, err := genai.NewClient(ctx, option.WithAPIKey(c.Key))
	if err != nil {
		return Extraction{}, err
	}
	defer cli.Close()

	model := cli.GenerativeModel(c.Model)
	model.SetTemperature(0.1)
	model.SetMaxOutputTokens(int32(c.MaxTokens))
	model.ResponseMIMEType = "application/json"

	var parts []genai.Part
	err = prepare(ctx, func() error {
		parts = []genai.Part{
			genai.Text(extractSystemPrompt),
			genai.Blob{MIMEType: capture.MIME, Data: shot.JPEG},
		}
		return nil
	})
	if err != nil {
		return Extraction{}, err
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return Extraction{}, err
	}
	txt := geminiText(resp)
	if strings.TrimSpace(txt) == "" {
		return Extraction{}, errors.New("gemini empty response")
	}
	return ParseExtraction(txt), nil
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
