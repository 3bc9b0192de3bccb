package capture

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegion(t *testing.T) {
	t.Run("2560x1440 display", func(t *testing.T) {
		r := region(image.Rect(0, 0, 2560, 1440))

		// right 29% strip minus padding: 2560*0.29 = 742 wide before trim
		assert.Equal(t, image.Rect(1848, 430, 2530, 1360), r)
	})

	t.Run("offset display origin", func(t *testing.T) {
		r := region(image.Rect(100, 50, 2660, 1490))

		assert.Equal(t, image.Rect(1948, 480, 2630, 1410), r)
	})
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "question.png")

	src := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 10, G: 120, B: 40, A: 255})
		}
	}
	require.NoError(t, imaging.Save(src, path))

	shot, err := FromFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, shot.Path)
	assert.Equal(t, 20, shot.Width)
	assert.Equal(t, 10, shot.Height)
	assert.NotEmpty(t, shot.JPEG)
	assert.NotEmpty(t, shot.Base64)
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}
