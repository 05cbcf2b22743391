package render

import (
	"math"
	"math/rand"

	"github.com/Darkone83/XBOX-RGB/internal/model"
)

const maxMeteors = 8

// EffectState holds every effect's persistent, frame-to-frame state:
// low-pass filters, per-pixel phases, the fire heat map, meteor
// kinematics. One EffectState belongs to one Scheduler for its whole
// lifetime and is not recreated when the ring length changes; only the
// meteor state re-seeds itself on a new length, the way
// original_source/src/RGBCtrl.cpp's animMeteor statics reset whenever
// `lastL` changes.
type EffectState struct {
	rng *rand.Rand

	breathePhase float64
	breatheLevel float64

	plasmaT float64

	heat [model.MaxRingLen]uint8

	twinklePhase [model.MaxRingLen]uint8

	meteorInit   bool
	meteorLastL  int
	meteorPos    [maxMeteors]float64
	meteorVel    [maxMeteors]float64
	meteorLen    [maxMeteors]uint8
}

// NewEffectState builds a fresh, zeroed effect state seeded from seed
// (the caller typically passes the current wall-clock time once, at
// startup, since effects don't need cryptographic randomness — only
// visually distinct sparkle/meteor placement).
func NewEffectState(seed int64) *EffectState {
	return &EffectState{rng: rand.New(rand.NewSource(seed))}
}

// Render dispatches to the effect implementation for mode, using
// canvas as the pixel surface, cfg for the active parameters, and tick
// as the frame counter original_source/src/RGBCtrl.cpp calls `tick`.
// Unknown modes render nothing, matching the original's `default:`
// no-op in renderFrame's switch.
func (st *EffectState) Render(mode model.Mode, cfg model.Config, canvas *Canvas, tick uint32) {
	switch mode {
	case model.ModeSolid:
		st.solid(canvas, cfg)
	case model.ModeBreathe:
		st.breathe(canvas, cfg)
	case model.ModeColorWipe:
		st.colorWipe(canvas, cfg, tick)
	case model.ModeLarson:
		st.larson(canvas, cfg, tick)
	case model.ModeRainbow:
		st.rainbow(canvas, cfg, tick)
	case model.ModeTheaterChase:
		st.theaterChase(canvas, cfg, tick)
	case model.ModeTwinkle:
		st.twinkle(canvas, cfg, tick)
	case model.ModeComet:
		st.comet(canvas, cfg, tick)
	case model.ModeMeteor:
		st.meteor(canvas, cfg, tick)
	case model.ModeClockSpin:
		st.clockSpin(canvas, cfg, tick)
	case model.ModePlasma:
		st.plasma(canvas, cfg)
	case model.ModeFire:
		st.fire(canvas, cfg)
	case model.ModePaletteCycle:
		st.paletteCycle(canvas, cfg, tick)
	case model.ModePaletteChase:
		st.paletteChase(canvas, cfg, tick)
	}
}

func (st *EffectState) solid(canvas *Canvas, cfg model.Config) {
	canvas.Fill(cfg.ColorA)
}

// breathe pulses Color A through a low-passed, smoothstep-eased sine,
// never fully off. Grounded on RGBCtrl.cpp's animBreathe.
func (st *EffectState) breathe(canvas *Canvas, cfg model.Config) {
	if canvas.Len() == 0 {
		return
	}
	step := 0.010 + (float64(cfg.Speed)/255.0)*0.045
	st.breathePhase += step

	s := 0.5 + 0.5*math.Sin(st.breathePhase*2*math.Pi)
	eased := s * s * (3 - 2*s)
	target := 0.10 + 0.90*eased

	const alpha = 0.10
	st.breatheLevel = st.breatheLevel*(1-alpha) + target*alpha

	canvas.Fill(scaleFloat(cfg.ColorA, st.breatheLevel))
}

func (st *EffectState) colorWipe(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	canvas.Fill(0)
	idx := int(tick/2) % L
	pal := LoadMotionPalette(cfg)
	phase := float64(tick) * (0.003 + (float64(cfg.Speed)/255.0)*0.008)
	c := pal.Sample(float64(idx)/float64(L)+phase, cfg.Intensity)
	canvas.Set(idx, c)
}

func (st *EffectState) larson(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	denom := 6 - int(cfg.Speed)/51
	if denom < 1 {
		denom = 1
	}
	pos := int(tick) / denom % (L * 2)
	if pos >= L {
		pos = 2*L - 1 - pos
	}
	fadeBase := 10 + int(cfg.Intensity)
	if fadeBase > 254 {
		fadeBase = 254
	}
	canvas.Fade(uint8(255 - fadeBase))

	pal := LoadMotionPalette(cfg)
	phase := float64(tick) * 0.006
	width := int(cfg.Width)
	for w := -width; w <= width; w++ {
		p := pos + w
		if p >= 0 && p < L {
			c := pal.Sample(float64(p)/float64(L)+phase, cfg.Intensity)
			canvas.Set(p, c)
		}
	}
}

func (st *EffectState) rainbow(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	denom := 6 - int(cfg.Speed)/51
	if denom < 1 {
		denom = 1
	}
	offset := uint8(int(tick) / denom)
	for i := 0; i < L; i++ {
		canvas.Set(i, Wheel(uint8((i*256/L+int(offset))&255)))
	}
}

func (st *EffectState) theaterChase(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	denom := 10 - int(cfg.Speed)/32
	if denom < 1 {
		denom = 1
	}
	gap := int(cfg.Width)
	if gap < 1 {
		gap = 1
	}
	q := (int(tick) / denom) % gap
	fadeBase := 10 + int(cfg.Intensity)
	if fadeBase > 254 {
		fadeBase = 254
	}
	canvas.Fade(uint8(255 - fadeBase))

	pal := LoadMotionPalette(cfg)
	phase := float64(tick) * 0.0045
	for i := q; i < L; i += gap {
		c := pal.Sample(float64(i)/float64(L)+phase, cfg.Intensity)
		canvas.Set(i, c)
	}
}

// twinkle spawns short-lived glints on random pixels with a sin^3
// rise/fall curve. Grounded on RGBCtrl.cpp's animTwinkle.
func (st *EffectState) twinkle(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	f := 18 + int(cfg.Speed)/2
	if f > 254 {
		f = 254
	}
	canvas.Fade(uint8(255 - f))

	pops := 1 + int(float64(cfg.Intensity)*float64(L)/(255*30)+0.5)
	for n := 0; n < pops; n++ {
		k := st.rng.Intn(L)
		if st.twinklePhase[k] == 0 {
			st.twinklePhase[k] = uint8(1 + st.rng.Intn(2))
		}
	}

	pal := LoadMotionPalette(cfg)
	palPhase := float64(tick) * 0.0025

	advance := 2 + int(cfg.Speed)/24 - int(cfg.Width)/6
	if advance < 1 {
		advance = 1
	}

	for i := 0; i < L; i++ {
		ph := st.twinklePhase[i]
		if ph == 0 {
			continue
		}
		x := float64(ph) / 255.0
		b := math.Sin(math.Pi * x)
		b = b * b * b

		u := float64(i)/float64(L) + palPhase
		base := pal.Sample(u, cfg.Intensity)
		canvas.Set(i, scaleFloat(base, b))

		next := int(ph) + advance
		if next >= 255 {
			st.twinklePhase[i] = 0
		} else {
			st.twinklePhase[i] = uint8(next)
		}
	}
}

func (st *EffectState) comet(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	denom := 4 - int(cfg.Speed)/64
	if denom < 1 {
		denom = 1
	}
	pos := int(tick) / denom % L

	intensity := int(cfg.Intensity)
	if intensity > 199 {
		intensity = 199
	}
	canvas.Fade(uint8(200 - intensity))

	pal := LoadMotionPalette(cfg)
	phase := float64(tick) * 0.0055
	head := pal.Sample(float64(pos)/float64(L)+phase, cfg.Intensity)

	width := int(cfg.Width)
	for w := 0; w < width; w++ {
		tail := 1.0 - float64(w)/float64(width)
		p := ((pos - w) + L) % L
		canvas.Set(p, scaleFloat(head, tail))
	}
}

// meteor runs a small shower of independent meteors, each with its own
// velocity, tail length and tapered quadratic falloff. Grounded on
// RGBCtrl.cpp's animMeteor.
func (st *EffectState) meteor(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}

	intensity := int(cfg.Intensity)
	if intensity > 209 {
		intensity = 209
	}
	canvas.Fade(uint8(210 - intensity))

	count := 1 + int(cfg.Intensity)*(maxMeteors-1)/255

	if !st.meteorInit || st.meteorLastL != L {
		for m := 0; m < maxMeteors; m++ {
			st.meteorPos[m] = float64(st.rng.Intn(L))
			st.meteorVel[m] = 0.35 + 1.25*st.rng.Float64()
			st.meteorLen[m] = uint8(2 + st.rng.Intn(6))
		}
		st.meteorInit = true
		st.meteorLastL = L
	}

	baseTail := 2 + int(cfg.Width)*2
	pal := LoadMotionPalette(cfg)
	pphase := float64(tick) * 0.004
	speedMul := 0.5 + 2.0*(float64(cfg.Speed)/255.0)

	for m := 0; m < count; m++ {
		st.meteorPos[m] += st.meteorVel[m] * speedMul
		for st.meteorPos[m] >= float64(L) {
			st.meteorPos[m] -= float64(L)
		}

		hu := st.meteorPos[m]/float64(L) + pphase
		head := pal.Sample(hu, cfg.Intensity)
		canvas.Set(int(st.meteorPos[m]), head)

		tl := baseTail + int(st.meteorLen[m])
		for k := 1; k <= tl; k++ {
			t := float64(k) / float64(tl)
			fall := 1.0 - t
			fall *= fall
			p := ((int(st.meteorPos[m])-k)%L + L) % L
			canvas.Set(p, scaleFloat(head, fall))
		}

		if st.rng.Intn(256) < 4 {
			st.meteorVel[m] = 0.35 + 1.25*st.rng.Float64()
			st.meteorLen[m] = uint8(2 + st.rng.Intn(6))
		}
	}
}

func (st *EffectState) clockSpin(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	denom := 3 - int(cfg.Speed)/85
	if denom < 1 {
		denom = 1
	}
	pos := int(tick) / denom % L
	canvas.Fill(cfg.ColorB)

	span := int(cfg.Width)*2 + 1
	if span < 1 {
		span = 1
	}
	for w := 0; w < span; w++ {
		canvas.Set((pos+w)%L, cfg.ColorA)
	}
}

// plasma renders a three-octave sine field mapped through hue/sat/val,
// with a slow independent drift term and a touch of edge sparkle.
// Grounded on RGBCtrl.cpp's animPlasma.
func (st *EffectState) plasma(canvas *Canvas, cfg model.Config) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	tstep := 0.015 + (float64(cfg.Speed)/255.0)*0.050
	st.plasmaT += tstep
	t := st.plasmaT

	drift := math.Sin(t*0.23)*0.35 + math.Sin(t*0.11+1.3)*0.15

	satBase := 0.55 + (float64(cfg.Intensity)/255.0)*0.45
	contrast := 0.90 + (float64(cfg.Width)/20.0)*0.60
	sparkAmp := 0.06 * (float64(cfg.Intensity) / 255.0)

	for i := 0; i < L; i++ {
		u := float64(i) / float64(L)
		a := u * 2 * math.Pi

		f1 := math.Sin(3.0*a+t) * 0.55
		f2 := math.Sin(5.0*a-t*0.8+drift) * 0.35
		f3 := math.Sin(6.3*a+t*1.6) * 0.20
		field := (f1+f2+f3)*0.5 + 0.5

		v := field*contrast + sparkAmp*math.Sin(a*8.0-t*2.2)
		v = clamp01(v)

		hue := math.Mod(field*1.2+t*0.05, 1.0)
		canvas.Set(i, hsvColor(hue, satBase, v))
	}
}

// fire is a heat-diffusion simulation: cool, blur, spark, then map heat
// to a red/yellow/white ramp. Grounded on RGBCtrl.cpp's animFire.
func (st *EffectState) fire(canvas *Canvas, cfg model.Config) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	const coolBase = 50
	const coolSpan = 36
	const sparkAddBase = 180
	const heatBias = 65
	const th1 = 35
	const th2 = 160

	cool := coolBase - int(cfg.Intensity)*coolSpan/255
	for i := 0; i < L; i++ {
		dec := st.rng.Intn(cool + 1)
		if int(st.heat[i]) > dec {
			st.heat[i] -= uint8(dec)
		} else {
			st.heat[i] = 0
		}
	}

	for i := 0; i < L; i++ {
		i1 := (i + L - 1) % L
		i2 := (i + 1) % L
		st.heat[i] = uint8((int(st.heat[i]) + int(st.heat[i1]) + int(st.heat[i2])) / 3)
	}

	sparks := 1 + int(cfg.Speed)/64
	for s := 0; s < sparks; s++ {
		p := st.rng.Intn(L)
		add := sparkAddBase + st.rng.Intn(96)
		v := int(st.heat[p]) + add
		if v > 255 {
			v = 255
		}
		st.heat[p] = uint8(v)
	}

	for i := 0; i < L; i++ {
		q := int(st.heat[i]) + heatBias
		if q > 255 {
			q = 255
		}
		t8 := q

		var c model.RGB
		switch {
		case t8 < th1:
			r := t8 * 255 / th1
			c = model.NewRGB(uint8(r), 0, 0)
		case t8 < th2:
			g := (t8 - th1) * 255 / (th2 - th1)
			c = model.NewRGB(255, uint8(g), 0)
		default:
			b := (t8 - th2) * 255 / (255 - th2)
			c = model.NewRGB(255, 255, uint8(b))
		}
		canvas.Set(i, c)
	}
}

func (st *EffectState) paletteCycle(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	pal := LoadPalette(cfg)
	denom := 6 - int(cfg.Speed)/51
	if denom < 1 {
		denom = 1
	}
	offset := (float64(tick) / float64(denom)) * 0.015
	for i := 0; i < L; i++ {
		x := float64(i)/float64(L) + offset
		canvas.Set(i, pal.Sample(x, cfg.Intensity))
	}
}

// paletteChase moves fixed-width blocks of palette colors around the
// ring, softening the block edges by cfg.Intensity. Grounded on
// RGBCtrl.cpp's animPaletteChase.
func (st *EffectState) paletteChase(canvas *Canvas, cfg model.Config, tick uint32) {
	L := canvas.Len()
	if L == 0 {
		return
	}
	pal := LoadPalette(cfg)

	block := int(cfg.Width)
	if block < 1 {
		block = 1
	}
	denom := 4 - int(cfg.Speed)/64
	if denom < 1 {
		denom = 1
	}
	pos := int(tick) / denom % L

	for i := 0; i < L; i++ {
		k := ((i-pos)%L + L) % L
		which := (k / block) % pal.N
		base := pal.Colors[which]

		if cfg.Intensity == 0 {
			canvas.Set(i, base)
			continue
		}

		edge := k % block
		tEdge := math.Abs(float64(edge)-float64(block-1)/2.0) / (float64(block) / 2.0)
		soft := 1.0 - (float64(cfg.Intensity)/255.0)*tEdge
		if soft < 0 {
			soft = 0
		}
		canvas.Set(i, scaleFloat(base, soft))
	}
}
