package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/setanarut/segmask"
)

func TestGrayPalette(t *testing.T) {
	got := GrayPalette(0, 60, 120)
	want := segmask.Palette{{0}, {60}, {120}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("gray palette (-want +got):\n%s", d)
	}
}

func TestFromColorful(t *testing.T) {
	got := FromColorful([]colorful.Color{
		{R: 1, G: 0, B: 0},
		{R: 0, G: 0.5, B: 1},
	})
	want := segmask.Palette{
		{255, 0, 0},
		{0, 128, 255},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("palette (-want +got):\n%s", d)
	}
}

func TestSortPaletteByBrightness(t *testing.T) {
	palette := []colorful.Color{
		{R: 1, G: 1, B: 1},
		{R: 0, G: 0, B: 0},
		{R: 1, G: 0, B: 0},
	}
	SortPaletteByBrightness(palette)
	want := []colorful.Color{
		{R: 0, G: 0, B: 0},
		{R: 1, G: 0, B: 0},
		{R: 1, G: 1, B: 1},
	}
	if d := cmp.Diff(want, palette); d != "" {
		t.Errorf("sorted palette (-want +got):\n%s", d)
	}
}

func TestMaskFromImageGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.SetGray(0, 0, color.Gray{Y: 10})
	img.SetGray(1, 0, color.Gray{Y: 20})
	img.SetGray(0, 1, color.Gray{Y: 30})
	img.SetGray(1, 1, color.Gray{Y: 40})

	got := MaskFromImage(img)
	want := &segmask.Array{
		Shape: []int{2, 2, 1},
		Data:  []float64{10, 20, 30, 40},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("gray mask (-want +got):\n%s", d)
	}
}

func TestMaskFromImageRGB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	got := MaskFromImage(img)
	want := &segmask.Array{
		Shape: []int{1, 1, 3},
		Data:  []float64{10, 20, 30},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("rgb mask (-want +got):\n%s", d)
	}
}

func TestResizeMaskKeepsLabels(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	colors := []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	}
	src.SetRGBA(0, 0, colors[0])
	src.SetRGBA(1, 0, colors[1])
	src.SetRGBA(0, 1, colors[2])
	src.SetRGBA(1, 1, colors[3])

	dst := ResizeMask(src, 4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got := dst.RGBAAt(x, y)
			found := false
			for _, c := range colors {
				if got == c {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("pixel (%d, %d) = %v is not one of the source labels", x, y, got)
			}
		}
	}
	if got := dst.RGBAAt(0, 0); got != colors[0] {
		t.Errorf("top-left pixel = %v, want %v", got, colors[0])
	}
}
