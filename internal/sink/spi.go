package sink

import (
	"fmt"
	"image"

	"github.com/Darkone83/XBOX-RGB/internal/model"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
)

// SPITransmitter drives up to NumChannels independent WS2812-class
// strips, one per SPI bus, via periph.io's nrzled driver. Grounded on
// coreman2200-funtimes-arcaluminis/spi/render.go's InitLedRenderer:
// host.Init() once, then one spireg.Open + nrzled.NewSPI per strip.
type SPITransmitter struct {
	ports  [model.NumChannels]spi.PortCloser
	drawer [model.NumChannels]display.Drawer
}

// NewSPITransmitter opens one SPI bus per channel (busNames[i] == ""
// lets periph.io pick any available bus for that index) and wires up
// an nrzled strip of length counts[i] pixels on each. It returns an
// error if any configured (non-zero-length) channel fails to open, so
// the caller (sink.Detect) can fall back to a software transmitter
// instead of running with a partially wired ring.
func NewSPITransmitter(busNames [model.NumChannels]string, counts [model.NumChannels]uint16) (*SPITransmitter, error) {
	t := &SPITransmitter{}
	for ch := 0; ch < model.NumChannels; ch++ {
		if counts[ch] == 0 {
			continue
		}
		port, err := spireg.Open(busNames[ch])
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("open spi bus for channel %d: %w", ch, err)
		}
		d, err := nrzled.NewSPI(port, &nrzled.Opts{
			NumPixels: int(counts[ch]),
			Channels:  3,
			Freq:      800 * physic.KiloHertz,
		})
		if err != nil {
			_ = port.Close()
			t.Close()
			return nil, fmt.Errorf("init nrzled strip for channel %d: %w", ch, err)
		}
		t.ports[ch] = port
		t.drawer[ch] = d
	}
	return t, nil
}

// Transmit draws each channel's pixel slice onto its strip.
func (t *SPITransmitter) Transmit(frames [model.NumChannels][]model.RGB) error {
	for ch, px := range frames {
		d := t.drawer[ch]
		if d == nil || len(px) == 0 {
			continue
		}
		img := toImage(px)
		if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
			return fmt.Errorf("draw channel %d: %w", ch, err)
		}
	}
	return nil
}

// Close halts every open strip and releases its SPI port.
func (t *SPITransmitter) Close() error {
	var first error
	for ch := range t.drawer {
		if t.drawer[ch] != nil {
			if err := t.drawer[ch].Halt(); err != nil && first == nil {
				first = err
			}
		}
		if t.ports[ch] != nil {
			if err := t.ports[ch].Close(); err != nil && first == nil {
				first = err
			}
			t.ports[ch] = nil
		}
	}
	return first
}

func toImage(px []model.RGB) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(px), 1))
	for i, c := range px {
		off := img.PixOffset(i, 0)
		img.Pix[off+0] = c.R()
		img.Pix[off+1] = c.G()
		img.Pix[off+2] = c.B()
		img.Pix[off+3] = 0xFF
	}
	return img
}
