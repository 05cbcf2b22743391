package render

import (
	"github.com/Darkone83/XBOX-RGB/internal/model"
	"github.com/Darkone83/XBOX-RGB/internal/sink"
)

// Canvas is the render-side view of the ring: it composes the Ring
// Mapper with the Pixel Sink so effects can address pixels by logical
// ring index without knowing which physical channel backs them.
// Grounded on original_source/src/RGBCtrl.cpp's setRing/fillRing/
// fadeRing trio, which all operate purely in ring-index space.
type Canvas struct {
	ring *Ring
	sink *sink.Sink
}

// NewCanvas builds a Canvas over the given Ring and Sink.
func NewCanvas(ring *Ring, s *sink.Sink) *Canvas {
	return &Canvas{ring: ring, sink: s}
}

// Len returns the current ring length.
func (c *Canvas) Len() int { return c.ring.Len() }

// Set writes one pixel by logical ring index; out-of-range indexes are
// silently ignored.
func (c *Canvas) Set(idx int, col model.RGB) {
	ch, px, ok := c.ring.Locate(idx)
	if !ok {
		return
	}
	c.sink.SetPixel(ch, px, col)
}

// Get reads back the last value written at a logical ring index.
func (c *Canvas) Get(idx int) model.RGB {
	ch, px, ok := c.ring.Locate(idx)
	if !ok {
		return 0
	}
	return c.sink.Raw(ch, px)
}

// Fill writes the same color to every pixel on the ring.
func (c *Canvas) Fill(col model.RGB) {
	n := c.Len()
	for i := 0; i < n; i++ {
		c.Set(i, col)
	}
}

// Fade multiplies every pixel toward black by amt/255, matching
// original_source/src/RGBCtrl.cpp's fadeRing (`c * (255-amt) >> 8`).
// Used by trail-style effects (Larson, Theater, Comet, Meteor) to
// decay the previous frame instead of clearing it outright.
func (c *Canvas) Fade(amt uint8) {
	if amt == 0 {
		return
	}
	keep := uint16(255 - amt)
	n := c.Len()
	for i := 0; i < n; i++ {
		cur := c.Get(i)
		r := uint8(uint16(cur.R()) * keep >> 8)
		g := uint8(uint16(cur.G()) * keep >> 8)
		b := uint8(uint16(cur.B()) * keep >> 8)
		c.Set(i, model.NewRGB(r, g, b))
	}
}
