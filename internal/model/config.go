// Package model holds the data types shared by the Config Store, the
// rendering engine, and the control plane: the configuration record,
// playlist steps, and the JSON wire shapes of the control protocol.
package model

import "encoding/json"

// Mode selects the active effect program. Custom (14) delegates to the
// playlist engine.
type Mode uint8

const (
	ModeSolid Mode = iota
	ModeBreathe
	ModeColorWipe
	ModeLarson
	ModeRainbow
	ModeTheaterChase
	ModeTwinkle
	ModeComet
	ModeMeteor
	ModeClockSpin
	ModePlasma
	ModeFire
	ModePaletteCycle
	ModePaletteChase
	ModeCustom
	modeCount
)

// ModeCount is the number of valid Mode values (0..ModeCount-1).
const ModeCount = int(modeCount)

// NumChannels is the number of physical ring channels (CH1..CH4).
const NumChannels = 4

// MaxPerChannel is the maximum pixel count of a single channel.
const MaxPerChannel = 50

// MaxRingLen is the largest legal ring length (NumChannels * MaxPerChannel).
const MaxRingLen = NumChannels * MaxPerChannel

// RGB is a 24-bit sRGB color packed as 0xRRGGBB when marshaled to/from JSON.
type RGB uint32

// NewRGB packs 8-bit channels into an RGB.
func NewRGB(r, g, b uint8) RGB {
	return RGB(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// R returns the red channel.
func (c RGB) R() uint8 { return uint8(c >> 16) }

// G returns the green channel.
func (c RGB) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c RGB) B() uint8 { return uint8(c) }

// Config is the single source-of-truth configuration record described
// in spec.md §3. JSON field names match the wire protocol exactly.
type Config struct {
	Count [NumChannels]uint16 `json:"count"`

	Brightness uint8 `json:"brightness"`
	Mode       Mode  `json:"mode"`
	Speed      uint8 `json:"speed"`
	Intensity  uint8 `json:"intensity"`
	Width      uint8 `json:"width"`

	ColorA RGB   `json:"colorA"`
	ColorB RGB   `json:"colorB"`
	ColorC RGB   `json:"colorC"`
	ColorD RGB   `json:"colorD"`
	PaletteCount uint8 `json:"paletteCount"`

	ResumeOnBoot bool `json:"resumeOnBoot"`
	EnableCpu    bool `json:"enableCpu"`
	EnableFan    bool `json:"enableFan"`

	Reverse [NumChannels]bool `json:"reverse"`

	MasterOff bool `json:"masterOff"`

	CustomSeq  string `json:"customSeq"`
	CustomLoop bool   `json:"customLoop"`
}

// RingLen returns the sum of all channel counts (derived, not persisted).
func (c *Config) RingLen() int {
	n := 0
	for _, v := range c.Count {
		n += int(v)
	}
	return n
}

// Default returns the compile-time default record from spec.md §3.
func Default() Config {
	return Config{
		Count:        [NumChannels]uint16{50, 50, 50, 50},
		Brightness:   180,
		Mode:         ModeRainbow,
		Speed:        128,
		Intensity:    128,
		Width:        4,
		ColorA:       NewRGB(0xFF, 0x00, 0x00),
		ColorB:       NewRGB(0xFF, 0xA0, 0x00),
		ColorC:       NewRGB(0x00, 0xFF, 0x00),
		ColorD:       NewRGB(0x00, 0x00, 0xFF),
		PaletteCount: 2,
		ResumeOnBoot: true,
		EnableCpu:    true,
		EnableFan:    true,
		Reverse:      [NumChannels]bool{true, false, false, true},
		MasterOff:    false,
		CustomSeq:    "[]",
		CustomLoop:   true,
	}
}

// Clamp enforces every numeric/range invariant from spec.md §3 in
// place. It is idempotent: Clamp(Clamp(c)) == Clamp(c).
func (c *Config) Clamp() {
	for i := range c.Count {
		if c.Count[i] > MaxPerChannel {
			c.Count[i] = MaxPerChannel
		}
	}
	if c.Brightness < 1 {
		c.Brightness = 1
	}
	if int(c.Mode) >= ModeCount {
		c.Mode = Mode(ModeCount - 1)
	}
	if c.Width < 1 {
		c.Width = 1
	}
	if c.PaletteCount < 1 {
		c.PaletteCount = 1
	} else if c.PaletteCount > 4 {
		c.PaletteCount = 4
	}
}

// PlaylistStep is one element of a parsed customSeq array (spec.md §3,
// playlist step table). Optional override fields use pointers so that
// "absent" is distinguishable from "zero".
type PlaylistStep struct {
	Mode     Mode  `json:"mode"`
	Duration int   `json:"duration"`
	Speed    *uint8 `json:"speed,omitempty"`
	Intensity *uint8 `json:"intensity,omitempty"`
	Width    *uint8 `json:"width,omitempty"`
	PaletteCount *uint8 `json:"paletteCount,omitempty"`
	ColorA   *RGB `json:"colorA,omitempty"`
	ColorB   *RGB `json:"colorB,omitempty"`
	ColorC   *RGB `json:"colorC,omitempty"`
	ColorD   *RGB `json:"colorD,omitempty"`
}

// Clamp enforces a playlist step's own ranges in place; mandatory
// fields (mode, duration) are normalized rather than rejected, matching
// the parse-lazily/clamp-don't-reject policy of spec.md §4.5.
func (s *PlaylistStep) Clamp() {
	if int(s.Mode) >= ModeCount-1 { // Custom is excluded from step modes
		s.Mode = ModeSolid
	}
	if s.Duration < 1 {
		s.Duration = 1000
	} else if s.Duration > 60000 {
		s.Duration = 60000
	}
	if s.Width != nil && *s.Width < 1 {
		v := uint8(1)
		s.Width = &v
	}
	if s.PaletteCount != nil {
		v := *s.PaletteCount
		if v < 1 {
			v = 1
		} else if v > 4 {
			v = 4
		}
		s.PaletteCount = &v
	}
}

// MarshalJSON packs RGB as a bare 0xRRGGBB-valued JSON number, matching
// the wire format in spec.md §6.
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint32(c))
}

// UnmarshalJSON accepts a JSON number and packs it into an RGB.
func (c *RGB) UnmarshalJSON(b []byte) error {
	var v uint32
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*c = RGB(v)
	return nil
}
