package segmask

import (
	"errors"
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrMissingCodec reports that no image codec is registered.
	ErrMissingCodec = errors.New("segmask: image codec unavailable")
	// ErrInvalidArgument reports a shape, layout or channel-count
	// violation.
	ErrInvalidArgument = errors.New("segmask: invalid argument")
)

// Mode identifies the pixel interpretation of an encoded image buffer.
type Mode string

const (
	ModeGray Mode = "L"
	ModeRGB  Mode = "RGB"
	ModeRGBA Mode = "RGBA"
)

// Codec builds a displayable image from a raw 8-bit pixel buffer. The
// buffer is row-major with 1, 3 or 4 bytes per pixel depending on mode.
type Codec interface {
	FromBuffer(mode Mode, w, h int, pix []uint8) (image.Image, error)
}

// activeCodec is the capability ArrayToImage depends on. SetCodec(nil)
// makes ArrayToImage fail with ErrMissingCodec.
var activeCodec Codec = stdCodec{}

// SetCodec replaces the codec used by ArrayToImage.
func SetCodec(c Codec) { activeCodec = c }

type stdCodec struct{}

func (stdCodec) FromBuffer(mode Mode, w, h int, pix []uint8) (image.Image, error) {
	switch mode {
	case ModeGray:
		img := image.NewGray(image.Rect(0, 0, w, h))
		copy(img.Pix, pix)
		return img, nil
	case ModeRGB:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for i := 0; i < w*h; i++ {
			img.Pix[i*4] = pix[i*3]
			img.Pix[i*4+1] = pix[i*3+1]
			img.Pix[i*4+2] = pix[i*3+2]
			img.Pix[i*4+3] = 255
		}
		return img, nil
	case ModeRGBA:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		copy(img.Pix, pix)
		return img, nil
	}
	return nil, fmt.Errorf("%w: mode %q", ErrInvalidArgument, mode)
}

// ArrayToImage converts a rank-3 numeric array into a displayable
// image. format tags the axis ordering of x; the array is cast to dtype
// before processing. With scale true the values are linearly rescaled
// so the minimum maps to 0 and the maximum to 255. The channel count
// selects the mode: 1 is grayscale, 3 RGB, 4 RGBA. x is not mutated.
func ArrayToImage(x *Array, format DataFormat, scale bool, dtype DType) (image.Image, error) {
	if activeCodec == nil {
		return nil, fmt.Errorf("%w: register a codec with SetCodec before calling ArrayToImage", ErrMissingCodec)
	}
	if x.Rank() != 3 {
		return nil, fmt.Errorf("%w: expected rank 3 array, got shape %v", ErrInvalidArgument, x.Shape)
	}
	switch format {
	case ChannelsFirst, ChannelsLast:
	default:
		return nil, fmt.Errorf("%w: data format %d", ErrInvalidArgument, format)
	}

	y := x.cast(dtype)
	if format == ChannelsFirst {
		y = transposeToChannelsLast(y)
	}
	if scale && len(y.Data) > 0 {
		if m := floats.Min(y.Data); m < 0 {
			floats.AddConst(-m, y.Data)
		}
		if m := floats.Max(y.Data); m != 0 {
			floats.Scale(1/m, y.Data)
		}
		floats.Scale(255, y.Data)
	}

	h, w, c := y.Shape[0], y.Shape[1], y.Shape[2]
	var mode Mode
	switch c {
	case 4:
		mode = ModeRGBA
	case 3:
		mode = ModeRGB
	case 1:
		mode = ModeGray
	default:
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidArgument, c)
	}
	pix := make([]uint8, len(y.Data))
	for i, v := range y.Data {
		pix[i] = uint8(int64(v))
	}
	return activeCodec.FromBuffer(mode, w, h, pix)
}
