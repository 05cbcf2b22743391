package render

import (
	"testing"

	"github.com/Darkone83/XBOX-RGB/internal/model"
)

func TestPaletteSampleSingleColorIsFlat(t *testing.T) {
	pal := Palette{N: 1, Colors: [4]model.RGB{model.NewRGB(10, 20, 30)}}
	for _, x := range []float64{0, 0.25, 0.5, 0.99} {
		if got := pal.Sample(x, 128); got != pal.Colors[0] {
			t.Errorf("Sample(%v) = %#x, want %#x", x, uint32(got), uint32(pal.Colors[0]))
		}
	}
}

func TestPaletteSampleHardStepAtBlendZero(t *testing.T) {
	pal := Palette{N: 2, Colors: [4]model.RGB{
		model.NewRGB(255, 0, 0),
		model.NewRGB(0, 255, 0),
	}}
	// Just past the midpoint of the first segment, blend=0 must still
	// return the hard-stepped entry, never a blended value.
	got := pal.Sample(0.4, 0)
	if got != pal.Colors[0] {
		t.Errorf("Sample(0.4, 0) = %#x, want hard step %#x", uint32(got), uint32(pal.Colors[0]))
	}
}

func TestPaletteSampleWraps(t *testing.T) {
	pal := Palette{N: 2, Colors: [4]model.RGB{
		model.NewRGB(255, 0, 0),
		model.NewRGB(0, 255, 0),
	}}
	a := pal.Sample(0.1, 0)
	b := pal.Sample(1.1, 0)
	if a != b {
		t.Errorf("Sample(0.1) = %#x, Sample(1.1) = %#x, want equal (wrap)", uint32(a), uint32(b))
	}
}

func TestLoadMotionPaletteExpandsSingleColor(t *testing.T) {
	cfg := model.Default()
	cfg.PaletteCount = 1

	pal := LoadMotionPalette(cfg)
	if pal.N != 4 {
		t.Fatalf("N = %d, want 4 after motion-palette expansion", pal.N)
	}
}

func TestLoadMotionPaletteLeavesMultiColorAlone(t *testing.T) {
	cfg := model.Default()
	cfg.PaletteCount = 3

	pal := LoadMotionPalette(cfg)
	if pal.N != 3 {
		t.Fatalf("N = %d, want 3 (unchanged)", pal.N)
	}
	if pal.Colors != [4]model.RGB{cfg.ColorA, cfg.ColorB, cfg.ColorC, cfg.ColorD} {
		t.Errorf("colors changed despite N >= 2")
	}
}

func TestWheelThreeSegments(t *testing.T) {
	red := Wheel(0)
	if red.R() != 255 || red.G() != 0 || red.B() != 0 {
		t.Errorf("Wheel(0) = %v, want pure red", red)
	}
	mid := Wheel(128)
	if mid.R() != 0 {
		t.Errorf("Wheel(128).R() = %d, want 0 (second segment)", mid.R())
	}
}
