package imaging

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxImageSize  = 5242880
	DefaultMaxBase64Size = 7000000
	DefaultMinDimension  = 200
)

var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

type Result struct {
	Valid  bool
	Error  string
	Width  int
	Height int
	Size   int
}

type Validator struct {
	MaxBase64Size int
	MaxImageSize  int
	MinDimension  int
	AllowedTypes  []string
	Codec         Codec
}

func NewValidator(codec Codec) *Validator {
	return &Validator{
		MaxBase64Size: DefaultMaxBase64Size,
		MaxImageSize:  DefaultMaxImageSize,
		MinDimension:  DefaultMinDimension,
		AllowedTypes:  DefaultAllowedTypes,
		Codec:         codec,
	}
}

// Validate runs the checks in order, stopping at the first failure: encoded
// size ceiling, MIME allow-list, decoded size ceiling, minimum dimensions.
// The dimension check is skipped when the codec cannot decode the buffer.
func (v *Validator) Validate(encodedLen int, mimeType string, buf []byte) Result {
	if encodedLen > v.MaxBase64Size {
		return Result{Error: fmt.Sprintf("image too large, maximum size: %dMB", v.MaxBase64Size/1024/1024)}
	}

	allowed := false
	for _, t := range v.AllowedTypes {
		if t == mimeType {
			allowed = true
			break
		}
	}
	if !allowed {
		short := make([]string, len(v.AllowedTypes))
		for i, t := range v.AllowedTypes {
			if idx := strings.IndexByte(t, '/'); idx >= 0 {
				short[i] = t[idx+1:]
			} else {
				short[i] = t
			}
		}
		return Result{Error: "file type not allowed, use: " + strings.Join(short, ", ")}
	}

	if len(buf) > v.MaxImageSize {
		return Result{Error: fmt.Sprintf("image too large, maximum size: %dMB", v.MaxImageSize/1024/1024)}
	}

	width, height, err := v.Codec.Dimensions(buf)
	if err == nil && (width < v.MinDimension || height < v.MinDimension) {
		return Result{
			Width:  width,
			Height: height,
			Error: fmt.Sprintf("image too small, minimum dimension: %dx%dpx, got: %dx%dpx",
				v.MinDimension, v.MinDimension, width, height),
		}
	}

	return Result{Valid: true, Width: width, Height: height, Size: len(buf)}
}
