package segmask

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// First-difference kernels. kernelX responds to changes between
// vertically adjacent pixels, kernelY between horizontally adjacent
// ones.
var (
	kernelX = mat.NewDense(3, 3, []float64{
		0, 1, 0,
		0, -1, 0,
		0, 0, 0,
	})
	kernelY = mat.NewDense(3, 3, []float64{
		0, 0, 0,
		1, -1, 0,
		0, 0, 0,
	})
)

// SemanticEdge detects class boundaries in a single-channel mask of
// shape (H, W, 1). It returns a semantic edge map whose intensities are
// quantized to the palette's label values (the first component of each
// palette entry, buckets taken in palette order) and a binary edge map
// where every positive edge value becomes 255. Both maps are H x W.
//
// Zero padding around the mask means a nonzero border pixel registers
// as an edge against the outside.
//
// Masks with more than one channel are rejected; palettes with fewer
// than two entries skip quantization.
func SemanticEdge(mask *Array, palette Palette) (semantic, binary *mat.Dense, err error) {
	if mask.Rank() != 3 || mask.Shape[2] != 1 {
		return nil, nil, fmt.Errorf("%w: edge detection needs a single-channel (H, W, 1) mask, got shape %v", ErrInvalidArgument, mask.Shape)
	}
	h, w := mask.Shape[0], mask.Shape[1]
	plane := mat.NewDense(h, w, append([]float64(nil), mask.Data...))

	edgeX := conv2d(plane, kernelX)
	edgeY := conv2d(plane, kernelY)

	semantic = mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ex := math.Abs(edgeX.At(y, x))
			if ex > 0 {
				semantic.Set(y, x, ex)
			} else {
				semantic.Set(y, x, math.Abs(edgeY.At(y, x)))
			}
		}
	}
	quantizeToPalette(semantic, palette)

	binary = mat.DenseCopyOf(semantic)
	raw := binary.RawMatrix().Data
	for i, v := range raw {
		if v > 0 {
			raw[i] = 255
		}
	}
	return semantic, binary, nil
}

// conv2d cross-correlates src with a 3x3 kernel, zero-padded by one on
// each side so the output keeps the source dimensions.
func conv2d(src, kernel *mat.Dense) *mat.Dense {
	h, w := src.Dims()
	out := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					k := kernel.At(i, j)
					if k == 0 {
						continue
					}
					sy, sx := y+i-1, x+j-1
					if sy < 0 || sy >= h || sx < 0 || sx >= w {
						continue
					}
					sum += k * src.At(sy, sx)
				}
			}
			out.Set(y, x, sum)
		}
	}
	return out
}

// quantizeToPalette snaps edge intensities to palette label values: any
// value strictly between the labels of adjacent palette entries is
// raised to the higher label. Values equal to a label, or beyond the
// last bucket, are left untouched.
func quantizeToPalette(edge *mat.Dense, palette Palette) {
	raw := edge.RawMatrix().Data
	for i := 0; i+1 < len(palette); i++ {
		lo, hi := palette[i][0], palette[i+1][0]
		for j, v := range raw {
			if v > lo && v < hi {
				raw[j] = hi
			}
		}
	}
}
