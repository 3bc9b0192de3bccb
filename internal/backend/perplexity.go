package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tballard34/trivia-speed/internal/telemetry"
)

const perplexityEndpoint = "https://api.perplexity.ai/chat/completions"

// Perplexity answers from the extracted question text. One instance per
// sonar tier; all tiers share one API key, so they also share one Limiter.
type Perplexity struct {
	ID         Name
	Key, Model string
	MaxTokens  int
	Timeout    time.Duration
	DryRun     bool
	Limiter    *rate.Limiter
}

func (c *Perplexity) Name() Name            { return c.ID }
func (c *Perplexity) Budget() time.Duration { return c.Timeout }

func (c *Perplexity) Answer(ctx context.Context, q Question) (Analysis, error) {
	// DRY_RUN mode: skip API call
	if c.DryRun {
		log := telemetry.L().With().Str("backend", string(c.Name())).Logger()
		log.Info().Msg("perplexity_dry_run_enabled")
		return Analysis{Rationale: "simulated rationale", Answer: "simulated answer"}, nil
	}
	if c.Key == "" {
		return Analysis{}, ErrNoAPIKey
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return Analysis{}, err
		}
	}

	var b []byte
	err := prepare(ctx, func() error {
		payload := map[string]any{
			"model": c.Model,
			"messages": []any{
				map[string]string{"role": "system", "content": textSystemPrompt},
				map[string]string{"role": "user", "content": TextPrompt(q)},
			},
			"max_tokens":  c.MaxTokens,
			"temperature": 0.1,
			"response_format": map[string]any{
				"type":        "json_schema",
				"json_schema": map[string]any{"schema": analysisSchema},
			},
		}
		b, _ = json.Marshal(payload)
		return nil
	})
	if err != nil {
		return Analysis{}, err
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", perplexityEndpoint, bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Analysis{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Analysis{}, errors.New("perplexity http " + resp.Status)
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
		return Analysis{}, errors.New("perplexity empty choices")
	}
	return ParseAnalysis(out.Choices[0].Message.Content), nil
}
