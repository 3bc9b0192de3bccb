package capture

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

// MIME is the content type of the payload form; every backend sends the
// shot as a base64 JPEG data blob.
const MIME = "image/jpeg"

// Quality of the in-memory payload JPEG. Higher than the on-disk working
// copy: the payload is what the models actually read.
const apiQuality = 85

// PrepareForAPI re-encodes the shot into the compact form embedded in
// backend payloads.
func PrepareForAPI(img image.Image) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, forceOpaque(img), &jpeg.Options{Quality: apiQuality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// forceOpaque flattens any alpha channel onto white. JPEG has no alpha and
// screenshots loaded from PNG files may carry transparency.
func forceOpaque(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
