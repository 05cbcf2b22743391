package render

import (
	"testing"
	"time"

	"github.com/Darkone83/XBOX-RGB/internal/model"
)

func TestPlaylistStepNoStepsRendersNothing(t *testing.T) {
	p := NewPlaylist()
	base := model.Default()
	base.CustomSeq = "[]"

	_, _, ok := p.Step(base, time.Now())
	if ok {
		t.Fatalf("Step() with empty sequence should return ok=false")
	}
}

func TestPlaylistStepAdvancesOnDurationElapsed(t *testing.T) {
	p := NewPlaylist()
	base := model.Default()
	base.CustomSeq = `[{"mode":0,"duration":10},{"mode":1,"duration":10}]`

	start := time.Now()
	_, mode, ok := p.Step(base, start)
	if !ok || mode != model.ModeSolid {
		t.Fatalf("first Step() = (%v, %v), want (ModeSolid, true)", mode, ok)
	}

	// Not yet elapsed: still step 0.
	_, mode, ok = p.Step(base, start.Add(5*time.Millisecond))
	if !ok || mode != model.ModeSolid {
		t.Fatalf("Step() before duration elapsed = (%v, %v), want still ModeSolid", mode, ok)
	}

	// Elapsed: this call advances to the next step before reporting.
	_, _, ok = p.Step(base, start.Add(11*time.Millisecond))
	if !ok {
		t.Fatalf("Step() at boundary: ok = false")
	}

	_, mode, ok = p.Step(base, start.Add(12*time.Millisecond))
	if !ok || mode != model.ModeBreathe {
		t.Fatalf("Step() after advance = (%v, %v), want ModeBreathe", mode, ok)
	}
}

func TestPlaylistHoldsOnLastStepWhenLoopDisabled(t *testing.T) {
	p := NewPlaylist()
	base := model.Default()
	base.CustomSeq = `[{"mode":0,"duration":1},{"mode":1,"duration":1}]`
	base.CustomLoop = false

	now := time.Now()
	for i := 0; i < 6; i++ {
		_, _, ok := p.Step(base, now)
		if !ok {
			t.Fatalf("Step() iteration %d: not ok", i)
		}
		now = now.Add(2 * time.Millisecond)
	}

	_, mode, ok := p.Step(base, now)
	if !ok || mode != model.ModeBreathe {
		t.Fatalf("Step() after run-out = (%v, %v), want held on ModeBreathe", mode, ok)
	}
}

func TestPlaylistLoopsBackToFirstStep(t *testing.T) {
	p := NewPlaylist()
	base := model.Default()
	base.CustomSeq = `[{"mode":0,"duration":1},{"mode":1,"duration":1}]`
	base.CustomLoop = true

	now := time.Now()
	var modes []model.Mode
	for i := 0; i < 5; i++ {
		_, mode, ok := p.Step(base, now)
		if !ok {
			t.Fatalf("Step() iteration %d: not ok", i)
		}
		modes = append(modes, mode)
		now = now.Add(2 * time.Millisecond)
	}

	if modes[0] != model.ModeSolid || modes[1] != model.ModeBreathe || modes[2] != model.ModeSolid {
		t.Fatalf("modes = %v, want loop [Solid, Breathe, Solid, ...]", modes)
	}
}

func TestPlaylistReparsesOnlyWhenSequenceTextChanges(t *testing.T) {
	p := NewPlaylist()
	base := model.Default()
	base.CustomSeq = `[{"mode":1,"duration":50}]`

	_, mode, ok := p.Step(base, time.Now())
	if !ok || mode != model.ModeBreathe {
		t.Fatalf("Step() = (%v, %v), want ModeBreathe", mode, ok)
	}

	// Same text again: idx/stepStart must not reset.
	before := p.idx
	_, _, _ = p.Step(base, time.Now().Add(1*time.Millisecond))
	if p.idx != before {
		t.Fatalf("idx reset on unchanged sequence text")
	}
}

func TestPlaylistMalformedSequenceYieldsNoSteps(t *testing.T) {
	p := NewPlaylist()
	base := model.Default()
	base.CustomSeq = `not json`

	_, _, ok := p.Step(base, time.Now())
	if ok {
		t.Fatalf("Step() with malformed JSON should return ok=false")
	}
}

func TestApplyStepOverridesLeavesUnsetFieldsAlone(t *testing.T) {
	base := model.Default()
	speed := uint8(200)
	step := model.PlaylistStep{Mode: model.ModeSolid, Duration: 100, Speed: &speed}

	scratch := base
	applyStepOverrides(&scratch, step)

	if scratch.Speed != 200 {
		t.Errorf("Speed = %d, want 200", scratch.Speed)
	}
	if scratch.Intensity != base.Intensity {
		t.Errorf("Intensity changed to %d, want unchanged %d", scratch.Intensity, base.Intensity)
	}
	if scratch.ColorA != base.ColorA {
		t.Errorf("ColorA changed despite no override")
	}
}
