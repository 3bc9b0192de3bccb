package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tballard34/trivia-speed/internal/capture"
	"github.com/tballard34/trivia-speed/internal/config"
	"github.com/tballard34/trivia-speed/internal/present"
	"github.com/tballard34/trivia-speed/internal/solver"
	"github.com/tballard34/trivia-speed/internal/telemetry"
)

// saveOriginalFlag takes both the bare switch (timestamped file in the
// screenshots folder) and an explicit --save-original=PATH.
type saveOriginalFlag struct {
	set  bool
	path string
}

func (f *saveOriginalFlag) String() string   { return f.path }
func (f *saveOriginalFlag) IsBoolFlag() bool { return true }
func (f *saveOriginalFlag) Set(s string) error {
	f.set = true
	if s != "true" {
		f.path = s
	}
	return nil
}

func main() {
	cfg := config.Load()

	var output string
	flag.StringVar(&output, "o", "", "Output file path (default: screenshots folder with timestamp)")
	flag.StringVar(&output, "output", "", "Output file path (default: screenshots folder with timestamp)")

	quality := flag.Int("quality", cfg.Quality, "JPEG quality (1-100, default: 60)")
	flag.IntVar(quality, "q", cfg.Quality, "JPEG quality (1-100, default: 60)")

	resize := flag.Float64("resize", cfg.ResizeFactor, "Resize factor for the image (default: 0.5 = 50%)")
	flag.Float64Var(resize, "r", cfg.ResizeFactor, "Resize factor for the image (default: 0.5 = 50%)")

	var saveOriginal saveOriginalFlag
	flag.Var(&saveOriginal, "save-original", "Save an unmodified copy of the screenshot, to =PATH if given")

	noGPT := flag.Bool("no-gpt", false, "Skip sending to GPT-4o (just take screenshot)")
	noMistral := flag.Bool("no-mistral", false, "Skip sending to Mistral AI (just take screenshot)")
	noGeminiOCR := flag.Bool("no-gemini-ocr", false, "Skip sending to Gemini 2.0 for OCR (skip text extraction)")
	noSonar := flag.Bool("no-sonar", false, "Skip sending to Perplexity AI Sonar model")
	noSonarPro := flag.Bool("no-sonar-pro", false, "Skip sending to Perplexity AI Sonar Pro model")
	noSonarReasoning := flag.Bool("no-sonar-reasoning", false, "Skip sending to Perplexity AI Sonar Reasoning model")

	onlySonar := flag.Bool("only-sonar", false, "Only use Perplexity AI Sonar model with Gemini OCR (suppresses Gemini output)")
	onlySonarPro := flag.Bool("only-sonar-pro", false, "Only use Perplexity AI Sonar Pro model with Gemini OCR (suppresses Gemini output)")
	onlySonarReasoning := flag.Bool("only-sonar-reasoning", false, "Only use Perplexity AI Sonar Reasoning model with Gemini OCR (suppresses Gemini output)")

	debug := flag.Bool("debug", false, "Print debug information")
	showOCR := flag.Bool("show-ocr", false, "Show the OCR extracted question and options")
	timeout := flag.Int("timeout", int(cfg.GPTTimeout/time.Second), "Timeout for API calls in seconds")
	flag.Parse()

	cfg.OutputPath = output
	cfg.Quality = *quality
	cfg.ResizeFactor = *resize
	cfg.SaveOriginal = saveOriginal.path
	cfg.SaveCopy = saveOriginal.set
	cfg.NoGPT = *noGPT
	cfg.NoMistral = *noMistral
	cfg.NoGeminiOCR = *noGeminiOCR
	cfg.NoSonar = *noSonar
	cfg.NoSonarPro = *noSonarPro
	cfg.NoSonarReasoning = *noSonarReasoning
	cfg.OnlySonar = *onlySonar
	cfg.OnlySonarPro = *onlySonarPro
	cfg.OnlySonarReasoning = *onlySonarReasoning
	cfg.Debug = *debug
	cfg.ShowOCR = *showOCR
	cfg.ImagePath = flag.Arg(0)
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "timeout" {
			cfg.SetTimeout(time.Duration(*timeout) * time.Second)
		}
	})

	if err := cfg.ResolveOnlyMode(); err != nil {
		fmt.Println("Error: The --only-sonar, --only-sonar-pro, and --only-sonar-reasoning flags are mutually exclusive.")
		fmt.Println("Please use only one of these flags at a time.")
		os.Exit(1)
	}

	telemetry.Init(telemetry.FromEnv(config.GetEnv))
	telemetry.SetDebug(cfg.Debug)
	log := telemetry.L()

	// interrupt stops new launches; calls already in flight finish on their
	// own budgets
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		shot *capture.Shot
		err  error
	)
	if cfg.ImagePath != "" {
		log.Debug().Str("path", cfg.ImagePath).Msg("using_provided_image")
		shot, err = capture.FromFile(cfg.ImagePath)
	} else {
		shot, err = capture.Grab(capture.Options{
			OutputPath:   cfg.OutputPath,
			Quality:      cfg.Quality,
			ResizeFactor: cfg.ResizeFactor,
			SaveOriginal: cfg.SaveOriginal,
			SaveCopy:     cfg.SaveCopy,
			Dir:          cfg.ScreenshotsDir,
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("capture_failed")
		if cfg.Debug {
			fmt.Printf("Error: %v\n", err)
		} else {
			fmt.Println("An error occurred. Run with --debug for more information.")
		}
		os.Exit(1)
	}

	set := solver.Build(cfg)
	if len(set.Visions) == 0 && set.Extractor == nil {
		log.Debug().Msg("all analysis options are disabled, no analysis performed")
	}

	p := present.New(cfg)
	for oc := range solver.Run(ctx, set, shot) {
		p.Render(oc)
	}

	if ctx.Err() != nil {
		fmt.Println("\nOperation cancelled by user")
	}
}
