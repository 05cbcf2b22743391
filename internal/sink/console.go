package sink

import (
	"image"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	"github.com/Darkone83/XBOX-RGB/internal/model"
)

// ConsoleTransmitter draws each channel through a periph.io/x/extra
// screen.Dev, the same "print at the console" fallback
// coreman2200-funtimes-arcaluminis/spi/render.go reaches for when no
// SPI port is found.
type ConsoleTransmitter struct {
	drawers [model.NumChannels]display.Drawer
}

// NewConsoleTransmitter opens one screen.Dev per channel sized to its
// pixel count.
func NewConsoleTransmitter(counts [model.NumChannels]uint16) *ConsoleTransmitter {
	var c ConsoleTransmitter
	for ch, n := range counts {
		if n == 0 {
			continue
		}
		c.drawers[ch] = screen.New(int(n))
	}
	return &c
}

// Transmit draws one row per non-empty channel.
func (c *ConsoleTransmitter) Transmit(frames [model.NumChannels][]model.RGB) error {
	for ch, px := range frames {
		d := c.drawers[ch]
		if d == nil || len(px) == 0 {
			continue
		}
		if err := d.Draw(d.Bounds(), toImage(px), image.Point{}); err != nil {
			return err
		}
	}
	return nil
}

// Close halts every channel's drawer.
func (c *ConsoleTransmitter) Close() error {
	var first error
	for _, d := range c.drawers {
		if d == nil {
			continue
		}
		if err := d.Halt(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
