package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"

	disimg "github.com/disintegration/imaging"

	_ "golang.org/x/image/webp"
)

var ErrUnsupported = errors.New("imaging: codec unavailable for this format")

// Codec abstracts image decode/re-encode capability so both the "available"
// and "unavailable" branches are explicit and testable.
type Codec interface {
	Dimensions(buf []byte) (width, height int, err error)
	Shrink(buf []byte, mimeType string, maxWidth, maxHeight, quality int) ([]byte, error)
}

// StdCodec decodes jpeg/png/webp and re-encodes jpeg/png. There is no webp
// encoder in the ecosystem, so webp shrink reports ErrUnsupported and the
// caller keeps the original bytes.
type StdCodec struct{}

func (StdCodec) Dimensions(buf []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func (StdCodec) Shrink(buf []byte, mimeType string, maxWidth, maxHeight, quality int) ([]byte, error) {
	img, err := disimg.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxWidth || bounds.Dy() > maxHeight {
		img = disimg.Fit(img, maxWidth, maxHeight, disimg.Lanczos)
	}

	var out bytes.Buffer
	switch {
	case strings.Contains(mimeType, "png"):
		err = disimg.Encode(&out, img, disimg.PNG, disimg.PNGCompressionLevel(png.BestCompression))
	case strings.Contains(mimeType, "webp"):
		return nil, ErrUnsupported
	default:
		err = disimg.Encode(&out, img, disimg.JPEG, disimg.JPEGQuality(quality))
	}
	if err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// NoCodec is the degraded branch: dimension checks are skipped and
// compression passes the original through.
type NoCodec struct{}

func (NoCodec) Dimensions([]byte) (int, int, error) {
	return 0, 0, ErrUnsupported
}

func (NoCodec) Shrink([]byte, string, int, int, int) ([]byte, error) {
	return nil, ErrUnsupported
}
