// Package utils carries the pipeline helpers around segmask: palette
// extraction from reference images, palette/mask conversions and
// PNG I/O.
package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	xdraw "golang.org/x/image/draw"

	"github.com/setanarut/segmask"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// FromColorful converts a colorful palette into a segmask palette of
// integral RGB tuples in [0, 255]. Rounding to whole values keeps the
// palette comparable against 8-bit mask pixels.
func FromColorful(palette []colorful.Color) segmask.Palette {
	out := make(segmask.Palette, len(palette))
	for i, c := range palette {
		cc := c.Clamped()
		out[i] = []float64{
			math.Round(cc.R * 255),
			math.Round(cc.G * 255),
			math.Round(cc.B * 255),
		}
	}
	return out
}

// GrayPalette builds a single-channel palette from label values.
func GrayPalette(levels ...float64) segmask.Palette {
	out := make(segmask.Palette, len(levels))
	for i, v := range levels {
		out[i] = []float64{v}
	}
	return out
}

// SortPaletteByBrightness orders colors from darkest to brightest, so
// the first entry (class 0) becomes the darkest color.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ra, ga, ba := a.LinearRgb()
		rb, gb, bb := b.LinearRgb()
		ya := 0.2126*ra + 0.7152*ga + 0.0722*ba
		yb := 0.2126*rb + 0.7152*gb + 0.0722*bb
		if ya < yb {
			return -1
		}
		if ya > yb {
			return 1
		}
		return 0
	})
}

// MaskFromImage decodes an image into a mask array. Grayscale images
// become (H, W, 1), everything else (H, W, 3) with 8-bit channel
// values.
func MaskFromImage(img image.Image) *segmask.Array {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	if gray, ok := img.(*image.Gray); ok {
		out := segmask.NewArray(h, w, 1)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Set(y, x, 0, float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
		return out
	}
	out := segmask.NewArray(h, w, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Set(y, x, 0, float64(r>>8))
			out.Set(y, x, 1, float64(g>>8))
			out.Set(y, x, 2, float64(bl>>8))
		}
	}
	return out
}

// ResizeMask resizes a label mask with nearest-neighbor sampling, the
// only resampler that cannot invent colors outside the palette.
func ResizeMask(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// ExtractPalette derives a k-color palette from a reference image. The
// kmeans method falls back to dominantcolor when clustering yields
// nothing usable.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	if method == PaletteMethodKMeans {
		if p := extractKMeansPalette(img, k); len(p) != 0 {
			return p
		}
		log.Println("palette warning: kmeans returned empty palette, falling back to dominantcolor")
	}
	return extractDominantPalette(img, k)
}

func extractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: max(c.Weight, 1e-6)})
	}
	if len(weighted) == 0 {
		weighted = append(weighted, weightedColor{
			col:    colorful.Color{R: 0.5, G: 0.5, B: 0.5},
			weight: 1,
		})
	}
	return selectDiverse(weighted, k)
}

func extractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	// Subsample large images to keep clustering tractable.
	const maxSamples = 12000
	step := 1
	if w*h > maxSamples {
		step = int(math.Sqrt(float64(w*h)/maxSamples)) + 1
	}
	dataset := make(clusters.Observations, 0, min(w*h, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 65535.0,
				float64(g) / 65535.0,
				float64(bl) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}
	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{col: col, weight: max(float64(len(c.Observations)), 1e-6)})
	}
	return selectDiverse(weighted, k)
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// selectDiverse picks k colors that balance weight against pairwise Lab
// distance, seeding with the heaviest candidate.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))

	maxW := 0.0
	labs := make([][3]float64, len(cands))
	for i, c := range cands {
		l, a, b := c.col.Lab()
		labs[i] = [3]float64{l, a, b}
		maxW = max(maxW, c.weight)
	}
	if maxW <= 0 {
		maxW = 1
	}

	seed := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].weight > cands[seed].weight {
			seed = i
		}
	}
	chosen := []int{seed}
	taken := make([]bool, len(cands))
	taken[seed] = true

	for len(chosen) < k {
		bestIdx, bestScore := -1, -1.0
		for i := range cands {
			if taken[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range chosen {
				d0 := labs[i][0] - labs[s][0]
				d1 := labs[i][1] - labs[s][1]
				d2 := labs[i][2] - labs[s][2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(cands[i].weight/maxW))
			if score > bestScore {
				bestScore, bestIdx = score, i
			}
		}
		if bestIdx < 0 {
			break
		}
		taken[bestIdx] = true
		chosen = append(chosen, bestIdx)
	}

	out := make([]colorful.Color, len(chosen))
	for i, idx := range chosen {
		out[i] = cands[idx].col
	}
	return out
}

func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	return img, err
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// SavePalette renders the palette as a strip of tiles for inspection.
func SavePalette(palette segmask.Palette, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		col := color.RGBA{A: 255}
		switch len(c) {
		case 1:
			v := uint8(max(0, min(255, c[0])))
			col.R, col.G, col.B = v, v, v
		default:
			col.R = uint8(max(0, min(255, c[0])))
			col.G = uint8(max(0, min(255, c[1])))
			col.B = uint8(max(0, min(255, c[2])))
		}
		x0 := i * tileSize
		for y := 0; y < tileSize; y++ {
			for x := x0; x < x0+tileSize; x++ {
				img.SetRGBA(x, y, col)
			}
		}
	}
	return SaveImage(img, filename)
}
