package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/models"
)

const placeholderSize = 256

var placeholderColor = color.RGBA{R: 0x9e, G: 0xa7, B: 0xb3, A: 0xff}

// EnsureDefaultAvatar writes the shared placeholder avatar if it's missing.
func (s *Storage) EnsureDefaultAvatar() error {
	if s.Exists(models.DefaultAvatar) {
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	for y := 0; y < placeholderSize; y++ {
		for x := 0; x < placeholderSize; x++ {
			img.Set(x, y, placeholderColor)
		}
	}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return errors.WithStack(err)
	}

	return s.Save(models.DefaultAvatar, buf.Bytes())
}
