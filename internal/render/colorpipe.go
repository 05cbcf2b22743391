package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Darkone83/XBOX-RGB/internal/model"
)

// Palette is the up-to-4-color set derived from colorA..colorD and
// paletteCount, in the order the color pipeline samples it.
type Palette struct {
	Colors [4]model.RGB
	N      int
}

// LoadPalette reads colorA..colorD and clamps paletteCount to 1..4.
// Grounded on original_source/src/RGBCtrl.cpp's loadPalette.
func LoadPalette(cfg model.Config) Palette {
	n := int(cfg.PaletteCount)
	if n < 1 {
		n = 1
	}
	if n > 4 {
		n = 4
	}
	return Palette{
		Colors: [4]model.RGB{cfg.ColorA, cfg.ColorB, cfg.ColorC, cfg.ColorD},
		N:      n,
	}
}

// LoadMotionPalette is LoadPalette, except when only one color is
// configured: it derives three companion hues/values from Color A in
// HSV space so single-color motion effects (comet, meteor, twinkle...)
// still show gradient motion instead of a flat block. Grounded on
// original_source/src/RGBCtrl.cpp's loadMotionPalette, reimplemented
// on top of go-colorful's Hsv/Color.Hsv instead of hand-rolled HSV
// conversion.
func LoadMotionPalette(cfg model.Config) Palette {
	pal := LoadPalette(cfg)
	if pal.N >= 2 {
		return pal
	}

	h, s, v := toColorful(pal.Colors[0]).Hsv()
	hf := h / 360.0

	s1 := clamp01(s * 1.05)
	s2 := clamp01(s * 0.85)
	v1 := clamp01(v * 1.05)
	v2 := clamp01(v * 0.92)

	pal.Colors[0] = hsvColor(hf, s, v)
	pal.Colors[1] = hsvColor(wrap01(hf+0.08), s1, v1)
	pal.Colors[2] = hsvColor(wrap01(hf+0.33), s2, v1)
	pal.Colors[3] = hsvColor(wrap01(hf+0.58), s, v2)
	pal.N = 4
	return pal
}

// Sample walks the palette at fractional ring position x (wrapped to
// 0..1). blend==0 produces hard steps between palette entries; higher
// values blend an increasing fraction of the gap toward the next
// entry. The blend itself happens in linear light rather than sRGB
// space, so a 50/50 mix between a saturated red and a saturated blue
// doesn't wash out to a muddy pink the way naive sRGB averaging does.
func (p Palette) Sample(x float64, blend uint8) model.RGB {
	if p.N <= 1 {
		return p.Colors[0]
	}
	fx := math.Mod(x, 1.0)
	if fx < 0 {
		fx += 1.0
	}
	pos := fx * float64(p.N)
	i0 := int(math.Floor(pos)) % p.N
	i1 := (i0 + 1) % p.N
	t := pos - math.Floor(pos)

	if blend == 0 {
		return p.Colors[i0]
	}
	bw := float64(blend) / 255.0
	return lerpLinear(p.Colors[i0], p.Colors[i1], t*bw)
}

// Wheel reproduces the classic NeoPixel rainbow wheel: a 256-step hue
// ramp built from three linear segments rather than an HSV conversion,
// matching original_source/src/RGBCtrl.cpp's wheel() bit for bit so
// the Rainbow effect's exact banding survives the port.
func Wheel(pos uint8) model.RGB {
	switch {
	case pos < 85:
		return model.NewRGB(255-pos*3, pos*3, 0)
	case pos < 170:
		pos -= 85
		return model.NewRGB(0, 255-pos*3, pos*3)
	default:
		pos -= 170
		return model.NewRGB(pos*3, 0, 255-pos*3)
	}
}

func hsvColor(hFrac, s, v float64) model.RGB {
	return fromColorful(colorful.Hsv(hFrac*360.0, s, v))
}

func toColorful(c model.RGB) colorful.Color {
	return colorful.Color{
		R: float64(c.R()) / 255.0,
		G: float64(c.G()) / 255.0,
		B: float64(c.B()) / 255.0,
	}
}

func fromColorful(c colorful.Color) model.RGB {
	r, g, b := c.Clamped().RGB255()
	return model.NewRGB(r, g, b)
}

func lerpLinear(a, b model.RGB, t float64) model.RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	ar, ag, ab := toColorful(a).LinearRgb()
	br, bg, bb := toColorful(b).LinearRgb()
	return fromColorful(colorful.LinearRgb(
		ar+(br-ar)*t,
		ag+(bg-ag)*t,
		ab+(bb-ab)*t,
	))
}

// scaleFloat scales a color by a 0..1 factor in linear light, used by
// effects that fade a sampled color toward black (tails, twinkle
// glints) so the falloff looks physically smooth instead of crushing
// dark tones the way an sRGB multiply does.
func scaleFloat(c model.RGB, f float64) model.RGB {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return c
	}
	r, g, b := toColorful(c).LinearRgb()
	return fromColorful(colorful.LinearRgb(r*f, g*f, b*f))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func wrap01(v float64) float64 {
	v = math.Mod(v, 1.0)
	if v < 0 {
		v += 1.0
	}
	return v
}
