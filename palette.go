package segmask

// Palette is an ordered list of reference colors. The index of a color
// is its class label, so order matters. All colors must have the same
// length (1 for grayscale, 3 for RGB).
type Palette [][]float64

// EncodePalette converts a color-coded mask of shape (H, W, C) into a
// one-hot encoding of shape (H, W, K), K = len(palette). A pixel whose
// channel vector equals palette[k] exactly gets a 1 at index k; pixels
// matching no palette color stay all-zero. Duplicate palette colors
// produce multiple ones per pixel.
//
// The caller must ensure the mask channel count matches the palette
// color length; the function does not validate this.
func EncodePalette(mask *Array, palette Palette) *Array {
	h, w, c := mask.Shape[0], mask.Shape[1], mask.Shape[2]
	out := NewArray(h, w, len(palette))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for k, color := range palette {
				match := true
				for ch := 0; ch < c; ch++ {
					if mask.At(y, x, ch) != color[ch] {
						match = false
						break
					}
				}
				if match {
					out.Set(y, x, k, 1)
				}
			}
		}
	}
	return out
}

// DecodePalette converts a one-hot encoding or per-class score array of
// shape (H, W, K) back into a color-coded mask of shape (H, W, C). The
// class of a pixel is the argmax over the last axis, ties resolving to
// the lowest index. The class index passes through a wrapping 8-bit
// conversion before the palette lookup, so palettes are limited to 256
// colors; larger palettes silently decode classes >= 256 to the wrong
// color.
func DecodePalette(scores *Array, palette Palette) *Array {
	h, w, k := scores.Shape[0], scores.Shape[1], scores.Shape[2]
	out := NewArray(h, w, len(palette[0]))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := 0
			bestScore := scores.At(y, x, 0)
			for i := 1; i < k; i++ {
				if v := scores.At(y, x, i); v > bestScore {
					best = i
					bestScore = v
				}
			}
			color := palette[uint8(best)]
			for ch, v := range color {
				out.Set(y, x, ch, v)
			}
		}
	}
	return out
}
