// Package sink implements the Pixel Sink (spec.md §4.1): four
// fixed-size strip buffers, a global brightness latch, and a pluggable
// Transmitter that actually puts bytes on the wire to real (or
// simulated) hardware.
package sink

import "github.com/Darkone83/XBOX-RGB/internal/model"

// Transmitter is the hardware boundary a Sink drives. Grounded on
// coreman2200-funtimes-arcaluminis/spi/render.go's SPILedRenderer and
// smazurov-videonode/internal/led's Controller — a narrow interface so
// the render loop never depends on which backend is live.
type Transmitter interface {
	// Transmit ships one frame per channel. frames[i] is nil or empty
	// for channels with zero configured pixels.
	Transmit(frames [model.NumChannels][]model.RGB) error
}

// Sink owns the four per-channel pixel buffers and the brightness
// scalar latch described in spec.md §4.1. Writes outside a channel's
// configured length are ignored; there is no error return because the
// firmware's Pixel Sink never fails.
type Sink struct {
	tx Transmitter

	buf        [model.NumChannels][model.MaxPerChannel]model.RGB
	lens       [model.NumChannels]int
	brightness uint8
	lastApplied uint8
	hasApplied  bool
}

// New constructs a Sink around the given Transmitter.
func New(tx Transmitter) *Sink {
	return &Sink{tx: tx, brightness: 255}
}

// SetLengths tells the Sink how many pixels of each channel buffer are
// live (the rest are never transmitted and writes to them are no-ops).
func (s *Sink) SetLengths(lens [model.NumChannels]uint16) {
	for i, v := range lens {
		n := int(v)
		if n > model.MaxPerChannel {
			n = model.MaxPerChannel
		}
		s.lens[i] = n
	}
}

// SetPixel writes one pixel; out-of-range (channel, index) pairs are
// silently ignored per spec.md §4.1's error semantics.
func (s *Sink) SetPixel(ch int, idx int, c model.RGB) {
	if ch < 0 || ch >= model.NumChannels {
		return
	}
	if idx < 0 || idx >= s.lens[ch] {
		return
	}
	s.buf[ch][idx] = c
}

// Pixel reads back a single pixel's last-written, brightness-scaled
// color. This is the test-only readback path testable property S4
// depends on: "every transmitted pixel" must be directly observable.
func (s *Sink) Pixel(ch, idx int) model.RGB {
	if ch < 0 || ch >= model.NumChannels || idx < 0 || idx >= s.lens[ch] {
		return 0
	}
	return scale(s.buf[ch][idx], s.brightness)
}

// Raw reads back a pixel's last-written value with no brightness
// scaling applied. Render-side effects (fade trails, twinkle decay)
// need this: they treat the Sink's buffer as their own persistent
// canvas state, the way the original firmware read back packed strip
// memory in fadeRing.
func (s *Sink) Raw(ch, idx int) model.RGB {
	if ch < 0 || ch >= model.NumChannels || idx < 0 || idx >= s.lens[ch] {
		return 0
	}
	return s.buf[ch][idx]
}

// SetBrightness latches a new global brightness; per spec.md §4.1 this
// is applied lazily (only the value is remembered here — Show applies
// it to every pixel at transmit time, and the Scheduler is responsible
// for boot-fade interpolation of the value it passes in).
func (s *Sink) SetBrightness(b uint8) {
	s.brightness = b
}

// Show applies the global brightness and transmits all four channels
// in one call. Ordering across channels is not observable, matching
// spec.md §4.1.
func (s *Sink) Show() error {
	var frames [model.NumChannels][]model.RGB
	for ch := 0; ch < model.NumChannels; ch++ {
		n := s.lens[ch]
		if n == 0 {
			continue
		}
		out := make([]model.RGB, n)
		for i := 0; i < n; i++ {
			out[i] = scale(s.buf[ch][i], s.brightness)
		}
		frames[ch] = out
	}
	s.lastApplied = s.brightness
	s.hasApplied = true
	return s.tx.Transmit(frames)
}

func scale(c model.RGB, b uint8) model.RGB {
	if b == 255 {
		return c
	}
	r := uint16(c.R()) * uint16(b) / 255
	g := uint16(c.G()) * uint16(b) / 255
	bl := uint16(c.B()) * uint16(b) / 255
	return model.NewRGB(uint8(r), uint8(g), uint8(bl))
}
