package render

import (
	"context"
	"time"

	"github.com/Darkone83/XBOX-RGB/internal/config"
	"github.com/Darkone83/XBOX-RGB/internal/model"
	"github.com/Darkone83/XBOX-RGB/internal/sink"
)

// FramePeriod implements spec.md §4.6's frame pacing formula: higher
// speed values produce a shorter frame period. Grounded on
// original_source/src/RGBCtrl.cpp's loop(): `10 + (255-speed)/2`.
func FramePeriod(speed uint8) time.Duration {
	ms := 10 + (255-int(speed))/2
	return time.Duration(ms) * time.Millisecond
}

// Scheduler is the Frame Loop (spec.md §4.6): on every tick it reads
// the live config, rebuilds the Ring Mapper if counts/reverse changed,
// runs the implicit Masked -> PlaylistRun -> EffectRun state machine,
// applies the boot fade-in ramp to brightness, and transmits the
// result. Grounded on original_source/src/RGBCtrl.cpp's loop()/
// renderFrame()/showRing() trio.
type Scheduler struct {
	store *config.Store
	sink  *sink.Sink
	ring  *Ring

	canvas   *Canvas
	effects  *EffectState
	playlist *Playlist

	tick uint32

	lastCount   [model.NumChannels]uint16
	lastReverse [model.NumChannels]bool
	ringBuilt   bool

	bootFadeActive   bool
	bootFadeStart    time.Time
	bootFadeDuration time.Duration
}

// NewScheduler wires a Scheduler around the given Store and hardware
// Transmitter. bootFadeDuration mirrors
// original_source/src/RGBCtrl.cpp's bootFadeDurationMs (3200ms there);
// callers typically pass that same default.
func NewScheduler(store *config.Store, tx sink.Transmitter, bootFadeDuration time.Duration) *Scheduler {
	s := sink.New(tx)
	ring := &Ring{}
	return &Scheduler{
		store:            store,
		sink:             s,
		ring:             ring,
		canvas:           NewCanvas(ring, s),
		effects:          NewEffectState(time.Now().UnixNano()),
		playlist:         NewPlaylist(),
		bootFadeDuration: bootFadeDuration,
	}
}

// Sink exposes the underlying Pixel Sink, so callers can read back
// transmitted pixels without the Scheduler needing its own readback
// API.
func (s *Scheduler) Sink() *sink.Sink { return s.sink }

// ArmBootFade starts a fresh boot-fade ramp from black up to the
// config's current brightness, matching the setup() sequence in
// original_source/src/RGBCtrl.cpp (strips forced to 0 brightness,
// then faded up to target over bootFadeDurationMs).
func (s *Scheduler) ArmBootFade(now time.Time) {
	s.bootFadeActive = true
	s.bootFadeStart = now
	s.sink.SetBrightness(0)
}

// Tick renders and transmits exactly one frame for the current instant
// now, using cfg as the already-clamped live config.
func (s *Scheduler) Tick(now time.Time, cfg model.Config) error {
	s.syncRing(cfg)
	s.tick++

	switch {
	case cfg.MasterOff:
		s.canvas.Fill(0)
	case cfg.Mode == model.ModeCustom:
		scratch, mode, ok := s.playlist.Step(cfg, now)
		if !ok {
			s.canvas.Fill(0)
		} else {
			s.effects.Render(mode, scratch, s.canvas, s.tick)
		}
	default:
		s.effects.Render(cfg.Mode, cfg, s.canvas, s.tick)
	}

	s.applyBrightness(cfg.Brightness, now)
	return s.sink.Show()
}

func (s *Scheduler) syncRing(cfg model.Config) {
	if s.ringBuilt && cfg.Count == s.lastCount && cfg.Reverse == s.lastReverse {
		return
	}
	s.ring.Rebuild(cfg)
	s.sink.SetLengths(cfg.Count)
	s.lastCount = cfg.Count
	s.lastReverse = cfg.Reverse
	s.ringBuilt = true
}

func (s *Scheduler) applyBrightness(target uint8, now time.Time) {
	if !s.bootFadeActive {
		s.sink.SetBrightness(target)
		return
	}
	elapsed := now.Sub(s.bootFadeStart)
	if elapsed >= s.bootFadeDuration {
		s.sink.SetBrightness(target)
		s.bootFadeActive = false
		return
	}
	cur := uint8(uint32(target) * uint32(elapsed.Milliseconds()) / uint32(s.bootFadeDuration.Milliseconds()))
	if target > 0 && cur == 0 {
		cur = 1
	}
	s.sink.SetBrightness(cur)
}

// Run drives the frame loop until ctx is canceled, re-deriving the
// frame period from the live speed on every iteration (so a speed
// change takes effect on the very next frame) and invoking afterTick,
// if non-nil, once per rendered frame. cmd/rgbcored passes nil: the
// control plane drains its pending-operation queue on its own
// maintenance ticker rather than after each frame. Grounded on
// coreman2200-funtimes-arcaluminis/spi/loop.go's Looper: a timer that
// is reset to the next period rather than recreated, so accumulated
// drift doesn't compound.
func (s *Scheduler) Run(ctx context.Context, afterTick func()) error {
	cfg := s.store.Snapshot()
	timer := time.NewTimer(FramePeriod(cfg.Speed))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-timer.C:
			cfg := s.store.Snapshot()
			if err := s.Tick(now, cfg); err != nil {
				return err
			}
			if afterTick != nil {
				afterTick()
			}
			timer.Reset(FramePeriod(cfg.Speed))
		}
	}
}
