package render

import (
	"encoding/json"
	"time"

	"github.com/Darkone83/XBOX-RGB/internal/model"
)

// Playlist is the Playlist Engine (spec.md §4.5): it parses customSeq
// lazily (only when the JSON text actually changes), walks a sequence
// of steps with per-step parameter overrides layered onto the live
// config, and holds on the last step when looping is disabled.
// Grounded on original_source/src/RGBCtrl.cpp's animCustom, which
// keeps the same kind of static locals (lastJs, idx, stepStart).
type Playlist struct {
	lastJS    string
	steps     []model.PlaylistStep
	idx       int
	stepStart time.Time
}

// NewPlaylist returns an empty, not-yet-parsed Playlist.
func NewPlaylist() *Playlist {
	return &Playlist{}
}

// Step reparses base.CustomSeq if it changed since the last call,
// advances to the next step if the current one's duration has elapsed,
// then returns the scratch config (base with the current step's overrides
// applied) and the mode that scratch config should render with. ok is
// false when there are no parsed steps (spec.md §4.5: "no steps ->
// render black"), in which case the returned config/mode are zero and
// the caller should fill the ring black directly instead of invoking
// an effect.
func (p *Playlist) Step(base model.Config, now time.Time) (scratch model.Config, mode model.Mode, ok bool) {
	if base.CustomSeq != p.lastJS {
		p.reparse(base.CustomSeq, now)
	}
	if len(p.steps) == 0 {
		return model.Config{}, model.ModeSolid, false
	}

	if now.Sub(p.stepStart) >= time.Duration(p.steps[p.idx].Duration)*time.Millisecond {
		p.stepStart = now
		p.idx++
		if p.idx >= len(p.steps) {
			if base.CustomLoop {
				p.idx = 0
			} else {
				p.idx = len(p.steps) - 1
			}
		}
	}

	step := p.steps[p.idx]
	scratch = base
	applyStepOverrides(&scratch, step)

	return scratch, step.Mode, true
}

func (p *Playlist) reparse(js string, now time.Time) {
	p.lastJS = js
	p.steps = nil
	p.idx = 0
	p.stepStart = now

	if js == "" {
		return
	}
	var steps []model.PlaylistStep
	if err := json.Unmarshal([]byte(js), &steps); err != nil {
		return
	}
	for i := range steps {
		steps[i].Clamp()
	}
	p.steps = steps
}

func applyStepOverrides(cfg *model.Config, s model.PlaylistStep) {
	if s.Speed != nil {
		cfg.Speed = *s.Speed
	}
	if s.Intensity != nil {
		cfg.Intensity = *s.Intensity
	}
	if s.Width != nil {
		cfg.Width = *s.Width
	}
	if s.PaletteCount != nil {
		cfg.PaletteCount = *s.PaletteCount
	}
	if s.ColorA != nil {
		cfg.ColorA = *s.ColorA
	}
	if s.ColorB != nil {
		cfg.ColorB = *s.ColorB
	}
	if s.ColorC != nil {
		cfg.ColorC = *s.ColorC
	}
	if s.ColorD != nil {
		cfg.ColorD = *s.ColorD
	}
}
