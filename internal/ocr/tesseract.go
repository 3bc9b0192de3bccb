package ocr

import (
	"context"
	"errors"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/tballard34/trivia-speed/internal/backend"
	"github.com/tballard34/trivia-speed/internal/capture"
)

// Tesseract extracts the question locally instead of through Gemini. No
// network and no key, but it cannot answer; it only feeds the sonar tier.
type Tesseract struct {
	Lang    string
	Timeout time.Duration
}

func (t *Tesseract) Name() backend.Name    { return backend.BackendTesseract }
func (t *Tesseract) Budget() time.Duration { return t.Timeout }

func (t *Tesseract) Extract(ctx context.Context, shot *capture.Shot) (backend.Extraction, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)

	// gosseract blocks in C; run it aside so the budget still applies.
	go func() {
		client := gosseract.NewClient()
		defer client.Close()
		if t.Lang != "" {
			_ = client.SetLanguage(t.Lang)
		}
		if err := client.SetImageFromBytes(shot.JPEG); err != nil {
			ch <- result{err: err}
			return
		}
		text, err := client.Text()
		ch <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return backend.Extraction{}, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return backend.Extraction{}, r.err
		}
		q, opts := SplitQuestion(r.text)
		if q == "" {
			return backend.Extraction{}, errors.New("tesseract empty text")
		}
		return backend.Extraction{Question: q, Options: opts, Raw: r.text}, nil
	}
}
