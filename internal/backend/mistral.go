package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/tballard34/trivia-speed/internal/capture"
	"github.com/tballard34/trivia-speed/internal/telemetry"
)

// Mistral sends the shot to Pixtral for direct vision analysis.
type Mistral struct {
	Key, Model string
	MaxTokens  int
	Timeout    time.Duration
	DryRun     bool
}

func (c *Mistral) Name() Name            { return BackendMistral }
func (c *Mistral) Budget() time.Duration { return c.Timeout }

func (c *Mistral) Analyze(ctx context.Context, shot *capture.Shot) (Analysis, error) {
	// DRY_RUN mode: skip API call
	if c.DryRun {
		log := telemetry.L().With().Str("backend", string(c.Name())).Logger()
		log.Info().Msg("mistral_dry_run_enabled")
		return Analysis{Rationale: "simulated rationale", Answer: "simulated answer"}, nil
	}
	if c.Key == "" {
		return Analysis{}, ErrNoAPIKey
	}

	var b []byte
	err := prepare(ctx, func() error {
		payload := map[string]any{
			"model": c.Model,
			"messages": []any{
				map[string]any{"role": "system", "content": visionSystemPrompt},
				map[string]any{"role": "user", "content": []any{
					map[string]string{"type": "text", "text": analyzeInstruction},
					// Mistral takes the data URL as a bare string, not an object.
					map[string]string{"type": "image_url", "image_url": "data:" + capture.MIME + ";base64," + shot.Base64},
				}},
			},
			"max_tokens":      c.MaxTokens,
			"temperature":     0.1,
			"response_format": map[string]string{"type": "json_object"},
		}
		b, _ = json.Marshal(payload)
		return nil
	})
	if err != nil {
		return Analysis{}, err
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.mistral.ai/v1/chat/completions", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Analysis{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Analysis{}, errors.New("mistral http " + resp.Status)
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	_ = json.Unmarshal(raw, &out)
	if len(out.Choices) == 0 {
		return Analysis{}, errors.New("mistral empty choices")
	}
	return ParseAnalysis(out.Choices[0].Message.Content), nil
}
