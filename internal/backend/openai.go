package backend

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tballard34/trivia-speed/internal/capture"
	"github.com/tballard34/trivia-speed/internal/telemetry"
)

// OpenAI sends the shot to GPT for direct vision analysis.
type OpenAI struct {
	Key, Model string
	MaxTokens  int
	Timeout    time.Duration
	DryRun     bool
}

func (c *OpenAI) Name() Name            { return BackendGPT }
func (c *OpenAI) Budget() time.Duration { return c.Timeout }

func (c *OpenAI) Analyze(ctx context.Context, shot *capture.Shot) (Analysis, error) {
	// DRY_RUN mode: skip API call
	if c.DryRun {
		log := telemetry.L().With().Str("backend", string(c.Name())).Logger()
		log.Info().Msg("gpt_dry_run_enabled")
		return Analysis{Rationale: "simulated rationale", Answer: "simulated answer"}, nil
	}
	if c.Key == "" {
		return Analysis{}, ErrNoAPIKey
	}

	var req openai.ChatCompletionRequest
	err := prepare(ctx, func() error {
		req = openai.ChatCompletionRequest{
			Model: c.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: visionSystemPrompt},
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{Type: openai.ChatMessagePartTypeText, Text: analyzeInstruction},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL: "data:" + capture.MIME + ";base64," + shot.Base64,
							},
						},
					},
				},
			},
			MaxTokens:   c.MaxTokens,
			Temperature: 0.1,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
					Name:   "trivia_analysis",
					Schema: analysisSchema,
					Strict: true,
				},
			},
		}
		return nil
	})
	if err != nil {
		return Analysis{}, err
	}

	resp, err := openai.NewClient(c.Key).CreateChatCompletion(ctx, req)
	if err != nil {
		return Analysis{}, err
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, errors.New("gpt empty choices")
	}
	return ParseAnalysis(resp.Choices[0].Message.Content), nil
}
