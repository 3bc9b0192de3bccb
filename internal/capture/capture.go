package capture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"

	"github.com/tballard34/trivia-speed/internal/telemetry"
)

// Shot is the captured question image: the raster itself plus the compact
// JPEG/base64 form every backend payload embeds. Read-only once built.
type Shot struct {
	Image  image.Image
	JPEG   []byte
	Base64 string
	Path   string
	Width  int
	Height int
}

type Options struct {
	OutputPath   string
	Quality      int
	ResizeFactor float64
	SaveOriginal string
	SaveCopy     bool
	Dir          string
}

// The trivia overlay sits in the right ~29% of the screen; the paddings trim
// the app chrome above and below the question card.
const (
	regionWidthFrac = 0.29
	padLeft         = 30
	padRight        = 30
	padTop          = 430
	padBottom       = 80
)

func region(bounds image.Rectangle) image.Rectangle {
	w := bounds.Dx()
	h := bounds.Dy()
	rw := int(float64(w) * regionWidthFrac)
	x0 := bounds.Min.X + w - rw + padLeft
	y0 := bounds.Min.Y + padTop
	x1 := bounds.Min.X + w - padRight
	y1 := bounds.Min.Y + h - padBottom
	return image.Rect(x0, y0, x1, y1)
}

// Grab captures the question region of the primary display, resizes it, and
// writes the working JPEG to disk. A capture failure is fatal for the run:
// the caller aborts before launching any backend.
func Grab(opts Options) (*Shot, error) {
	log := telemetry.L()
	start := time.Now()

	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("capture: no active display")
	}
	bounds := screenshot.GetDisplayBounds(0)
	r := region(bounds)
	log.Debug().Int("x", r.Min.X).Int("y", r.Min.Y).Int("w", r.Dx()).Int("h", r.Dy()).Msg("capture_region")

	raw, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	if opts.SaveCopy || opts.SaveOriginal != "" {
		p := opts.SaveOriginal
		if p == "" {
			p = filepath.Join(opts.Dir, "original_"+timestamp()+".png")
		}
		if err := saveImage(raw, p, 100); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("save_original_failed")
		} else {
			log.Debug().Str("path", p).Msg("saved_original")
		}
	}

	var img image.Image = raw
	if opts.ResizeFactor > 0 && opts.ResizeFactor != 1.0 {
		nw := int(float64(raw.Bounds().Dx()) * opts.ResizeFactor)
		nh := int(float64(raw.Bounds().Dy()) * opts.ResizeFactor)
		img = imaging.Resize(raw, nw, nh, imaging.Lanczos)
		log.Debug().Int("w", nw).Int("h", nh).Msg("resized")
	}

	out := opts.OutputPath
	if out == "" {
		out = filepath.Join(opts.Dir, "screenshot_"+timestamp()+".jpg")
	}
	if err := saveImage(img, out, clamp(opts.Quality, 1, 100)); err != nil {
		return nil, fmt.Errorf("capture: save: %w", err)
	}

	shot, err := build(img, out)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", out).Dur("elapsed", time.Since(start)).
		Int("w", shot.Width).Int("h", shot.Height).Msg("capture_done")
	return shot, nil
}

// FromFile analyzes an existing image instead of capturing; used by the
// positional image-path argument. The file is used as-is, no resize pass.
func FromFile(path string) (*Shot, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}
	return build(img, path)
}

func build(img image.Image, path string) (*Shot, error) {
	jpegBytes, b64, err := PrepareForAPI(img)
	if err != nil {
		return nil, fmt.Errorf("capture: encode: %w", err)
	}
	return &Shot{
		Image:  img,
		JPEG:   jpegBytes,
		Base64: b64,
		Path:   path,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func saveImage(img image.Image, path string, quality int) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return imaging.Save(img, path, imaging.JPEGQuality(quality))
}

func timestamp() string { return time.Now().Format("20060102_150405") }
