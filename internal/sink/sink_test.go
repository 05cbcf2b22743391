package sink

import (
	"testing"

	"github.com/Darkone83/XBOX-RGB/internal/model"
)

type recordingTransmitter struct {
	frames [model.NumChannels][]model.RGB
	calls  int
}

func (r *recordingTransmitter) Transmit(frames [model.NumChannels][]model.RGB) error {
	r.frames = frames
	r.calls++
	return nil
}

func TestSinkSetPixelIgnoresOutOfRange(t *testing.T) {
	tx := &recordingTransmitter{}
	s := New(tx)
	s.SetLengths([model.NumChannels]uint16{4, 0, 0, 0})

	s.SetPixel(0, 10, model.NewRGB(255, 255, 255)) // past length, ignored
	s.SetPixel(-1, 0, model.NewRGB(255, 255, 255)) // bad channel, ignored
	s.SetPixel(9, 0, model.NewRGB(255, 255, 255))  // bad channel, ignored

	if got := s.Pixel(0, 10); got != 0 {
		t.Errorf("Pixel(0,10) = %#x, want 0 (write should have been dropped)", uint32(got))
	}
}

func TestSinkPixelAppliesBrightnessRaw(t *testing.T) {
	tx := &recordingTransmitter{}
	s := New(tx)
	s.SetLengths([model.NumChannels]uint16{1, 0, 0, 0})
	s.SetPixel(0, 0, model.NewRGB(200, 100, 50))
	s.SetBrightness(128)

	raw := s.Raw(0, 0)
	if raw != model.NewRGB(200, 100, 50) {
		t.Errorf("Raw() = %#x, want unscaled write", uint32(raw))
	}

	scaled := s.Pixel(0, 0)
	if scaled == raw {
		t.Errorf("Pixel() should apply brightness scaling, got same as Raw()")
	}
}

func TestSinkShowZeroBrightnessProducesBlack(t *testing.T) {
	tx := &recordingTransmitter{}
	s := New(tx)
	s.SetLengths([model.NumChannels]uint16{3, 0, 0, 0})
	s.SetPixel(0, 0, model.NewRGB(255, 255, 255))
	s.SetPixel(0, 1, model.NewRGB(10, 20, 30))
	s.SetPixel(0, 2, model.NewRGB(1, 2, 3))
	s.SetBrightness(0)

	if err := s.Show(); err != nil {
		t.Fatalf("Show(): %v", err)
	}
	for i, c := range tx.frames[0] {
		if c != 0 {
			t.Errorf("frame pixel %d = %#x, want black at brightness 0", i, uint32(c))
		}
	}
}

func TestSinkShowSkipsEmptyChannels(t *testing.T) {
	tx := &recordingTransmitter{}
	s := New(tx)
	s.SetLengths([model.NumChannels]uint16{5, 0, 3, 0})

	if err := s.Show(); err != nil {
		t.Fatalf("Show(): %v", err)
	}
	if tx.frames[1] != nil {
		t.Errorf("channel 1 frame = %v, want nil (zero length)", tx.frames[1])
	}
	if len(tx.frames[0]) != 5 {
		t.Errorf("channel 0 frame len = %d, want 5", len(tx.frames[0]))
	}
	if len(tx.frames[2]) != 3 {
		t.Errorf("channel 2 frame len = %d, want 3", len(tx.frames[2]))
	}
}

func TestSinkFullBrightnessPassesThroughUnscaled(t *testing.T) {
	tx := &recordingTransmitter{}
	s := New(tx)
	s.SetLengths([model.NumChannels]uint16{1, 0, 0, 0})
	want := model.NewRGB(17, 200, 3)
	s.SetPixel(0, 0, want)
	s.SetBrightness(255)

	if got := s.Pixel(0, 0); got != want {
		t.Errorf("Pixel() at full brightness = %#x, want %#x unchanged", uint32(got), uint32(want))
	}
}
