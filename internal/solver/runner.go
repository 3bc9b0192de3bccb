package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tballard34/trivia-speed/internal/backend"
	"github.com/tballard34/trivia-speed/internal/capture"
	"github.com/tballard34/trivia-speed/internal/telemetry"
)

// ErrExtractionUnavailable marks a sonar outcome skipped because the
// extraction stage produced nothing for it to run on.
var ErrExtractionUnavailable = errors.New("solver: extraction unavailable")

// Run fans the shot out to every backend in the set and streams outcomes in
// completion order. The channel closes once the last launched backend has
// reported. The vision tier and the extractor launch immediately; the text
// tier launches only after an extraction that yielded a question. ctx gates
// new launches only, it never cancels a call already in flight.
func Run(ctx context.Context, s Set, shot *capture.Shot) <-chan backend.Outcome {
	out := make(chan backend.Outcome, 8)

	go func() {
		defer close(out)
		log := telemetry.L()

		g := new(errgroup.Group)
		for _, v := range s.Visions {
			v := v // capture range var
			g.Go(func() error {
				out <- invoke(v.Name(), v.Budget(), func(ctx context.Context) (backend.Analysis, error) {
					return v.Analyze(ctx, shot)
				})
				return nil
			})
		}

		if s.Extractor == nil {
			if len(s.Texts) > 0 {
				log.Debug().Msg("extraction_disabled_skip_sonar")
			}
			_ = g.Wait()
			return
		}

		g.Go(func() error {
			oc := invokeExtract(s.Extractor, shot)
			out <- oc

			if len(s.Texts) == 0 {
				return nil
			}
			var q backend.Question
			if oc.OK() {
				q = backend.Question{Text: oc.Extraction.Question, Options: oc.Extraction.Options}
			}
			if q.Empty() {
				if oc.OK() {
					log.Warn().Msg("empty_question_skip_sonar")
				}
				for _, t := range s.Texts {
					out <- backend.Outcome{
						Backend: t.Name(),
						Status:  backend.StatusSkipped,
						Err:     ErrExtractionUnavailable,
						Budget:  t.Budget(),
					}
				}
				return nil
			}
			if ctx.Err() != nil {
				log.Warn().Msg("interrupted_skip_sonar")
				return nil
			}

			for _, t := range s.Texts {
				t := t // capture range var
				g.Go(func() error {
					out <- invoke(t.Name(), t.Budget(), func(ctx context.Context) (backend.Analysis, error) {
						return t.Answer(ctx, q)
					})
					return nil
				})
			}
			return nil
		})

		_ = g.Wait()
	}()

	return out
}

// invoke runs one backend call under its own budget and folds the result,
// the error, or a panic into a single outcome.
func invoke(name backend.Name, budget time.Duration, call func(ctx context.Context) (backend.Analysis, error)) (oc backend.Outcome) {
	log := telemetry.L().With().Str("backend", string(name)).Logger()
	t0 := time.Now()

	// recover so one misbehaving backend cannot take down the run
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("backend_panic")
			oc = backend.Outcome{
				Backend: name,
				Status:  backend.StatusFailure,
				Err:     fmt.Errorf("panic: %v", r),
				Elapsed: time.Since(t0),
				Budget:  budget,
			}
		}
	}()

	ictx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	a, err := call(ictx)
	oc = backend.Outcome{
		Backend:  name,
		Status:   backend.Classify(err),
		Analysis: a,
		Err:      err,
		Elapsed:  time.Since(t0),
		Budget:   budget,
	}
	logOutcome(log, oc)
	return oc
}

func invokeExtract(x backend.Extractor, shot *capture.Shot) (oc backend.Outcome) {
	log := telemetry.L().With().Str("backend", string(x.Name())).Logger()
	t0 := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("backend_panic")
			oc = backend.Outcome{
				Backend: x.Name(),
				Status:  backend.StatusFailure,
				Err:     fmt.Errorf("panic: %v", r),
				Elapsed: time.Since(t0),
				Budget:  x.Budget(),
			}
		}
	}()

	ictx, cancel := context.WithTimeout(context.Background(), x.Budget())
	defer cancel()

	e, err := x.Extract(ictx, shot)
	oc = backend.Outcome{
		Backend:  x.Name(),
		Status:   backend.Classify(err),
		Analysis: e.Analysis(),
		Elapsed:  time.Since(t0),
		Budget:   x.Budget(),
		Err:      err,
	}
	if err == nil {
		oc.Extraction = &e
	}
	logOutcome(log, oc)
	return oc
}

func logOutcome(log zerolog.Logger, oc backend.Outcome) {
	ev := log.Info()
	if oc.Err != nil {
		ev = log.Error().Err(oc.Err)
	}
	ev.Str("status", string(oc.Status)).
		Dur("elapsed", oc.Elapsed).
		Msg("backend_done")
}
