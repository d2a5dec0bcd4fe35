// Package segmask provides array transforms for semantic-segmentation
// masks: palette one-hot encoding/decoding, array-to-image conversion
// and fixed-kernel semantic edge detection.
package segmask

// Array is a dense rank-3 float64 array stored row-major in a flat
// slice. Masks use the shape (H, W, C), one-hot encodings (H, W, K).
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray allocates a zero-filled array with the given shape.
func NewArray(shape ...int) *Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Array{Shape: shape, Data: make([]float64, n)}
}

func (a *Array) Rank() int { return len(a.Shape) }

func (a *Array) offset(i, j, k int) int {
	return (i*a.Shape[1]+j)*a.Shape[2] + k
}

// At returns the element at (i, j, k). The array must be rank 3.
func (a *Array) At(i, j, k int) float64 { return a.Data[a.offset(i, j, k)] }

// Set stores v at (i, j, k). The array must be rank 3.
func (a *Array) Set(i, j, k int, v float64) { a.Data[a.offset(i, j, k)] = v }

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	shape := make([]int, len(a.Shape))
	copy(shape, a.Shape)
	data := make([]float64, len(a.Data))
	copy(data, a.Data)
	return &Array{Shape: shape, Data: data}
}

// DataFormat tags the axis ordering of an image-like rank-3 array.
type DataFormat int

const (
	// ChannelsLast is the (H, W, C) layout.
	ChannelsLast DataFormat = iota
	// ChannelsFirst is the (C, H, W) layout.
	ChannelsFirst
)

func (f DataFormat) String() string {
	switch f {
	case ChannelsLast:
		return "channels_last"
	case ChannelsFirst:
		return "channels_first"
	}
	return "unknown"
}

// DType selects the element precision an array is cast to before
// processing in ArrayToImage.
type DType int

const (
	// Float32 rounds every element through float32.
	Float32 DType = iota
	// Float64 keeps full precision.
	Float64
)

// cast returns a copy of a with every element converted to dt.
func (a *Array) cast(dt DType) *Array {
	out := a.Clone()
	if dt == Float32 {
		for i, v := range out.Data {
			out.Data[i] = float64(float32(v))
		}
	}
	return out
}

// transposeToChannelsLast converts a (C, H, W) array to (H, W, C).
func transposeToChannelsLast(a *Array) *Array {
	c, h, w := a.Shape[0], a.Shape[1], a.Shape[2]
	out := NewArray(h, w, c)
	for ch := 0; ch < c; ch++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Set(y, x, ch, a.At(ch, y, x))
			}
		}
	}
	return out
}
