package imaging

const (
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1920
	DefaultQuality   = 85
)

type CompressionResult struct {
	Buffer         []byte
	OriginalSize   int
	CompressedSize int
	Ratio          float64
}

type Compressor struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	Codec     Codec
}

func NewCompressor(codec Codec) *Compressor {
	return &Compressor{
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		Quality:   DefaultQuality,
		Codec:     codec,
	}
}

// Compress is strictly best-effort: any decode or encode failure returns the
// original buffer with ratio 1 and never fails the submission.
func (c *Compressor) Compress(buf []byte, mimeType string) CompressionResult {
	original := len(buf)

	out, err := c.Codec.Shrink(buf, mimeType, c.MaxWidth, c.MaxHeight, c.Quality)
	if err != nil || len(out) == 0 {
		return CompressionResult{Buffer: buf, OriginalSize: original, CompressedSize: original, Ratio: 1}
	}

	return CompressionResult{
		Buffer:         out,
		OriginalSize:   original,
		CompressedSize: len(out),
		Ratio:          float64(len(out)) / float64(original),
	}
}
