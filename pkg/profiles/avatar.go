package profiles

import (
	"bytes"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// MaxAvatarDimension bounds the longest edge of a stored avatar.
const MaxAvatarDimension = 512

// DefaultMaxAvatarPixels is the decode budget used when none is configured.
const DefaultMaxAvatarPixels = 40_000_000

const invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// avatarExtensions maps the accepted content types to the extension the file
// is stored with.
var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// processAvatar sniffs the upload and shrinks it to fit MaxAvatarDimension.
// Images over maxPixels are rejected before the pixel data is decoded.
// Images that already fit are stored untouched. Resized JPEGs stay JPEG,
// everything else is re-encoded as PNG.
func processAvatar(data []byte, maxPixels int) ([]byte, string, error) {
	mtype := mimetype.Detect(data)
	ext, ok := avatarExtensions[mtype.String()]
	if !ok {
		return nil, "", errcodes.ValidationError(`"avatar" must be a JPEG, PNG, GIF, or WebP image`)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", errcodes.ValidationError(invalidImageMessage)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", errcodes.ValidationError(invalidImageMessage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, "", errcodes.ValidationError(`"avatar" dimensions are too large`)
	}
	if cfg.Width <= MaxAvatarDimension && cfg.Height <= MaxAvatarDimension {
		return data, ext, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errcodes.ValidationError(invalidImageMessage)
	}

	width, height := fitDimensions(cfg.Width, cfg.Height, MaxAvatarDimension)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	buf := &bytes.Buffer{}
	if mtype.Is("image/jpeg") {
		if err := jpeg.Encode(buf, dst, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", errors.WithStack(err)
		}
		return buf.Bytes(), ".jpg", nil
	}

	if err := png.Encode(buf, dst); err != nil {
		return nil, "", errors.WithStack(err)
	}
	return buf.Bytes(), ".png", nil
}

// fitDimensions scales w x h down so neither edge exceeds limit, keeping the
// aspect ratio. Edges never drop below one pixel.
func fitDimensions(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
