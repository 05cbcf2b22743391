package model

// DiscoverReply is the JSON body answered to both the UDP `discover` op
// and the plain-text `RGBDISC?` query (spec.md §6).
type DiscoverReply struct {
	Ok   bool   `json:"ok"`
	Op   string `json:"op"`
	Name string `json:"name"`
	Ver  string `json:"ver"`
	Port uint16 `json:"port"`
	IP   string `json:"ip"`
	MAC  string `json:"mac"`
}

// ConfigView is the full record returned by `get` and embedded in the
// HTML page: the persisted subset plus the derived display-only fields.
type ConfigView struct {
	Config
	InPreview    bool   `json:"inPreview"`
	BuildVersion string `json:"buildVersion"`
	Copyright    string `json:"copyright"`
}

// Envelope is the generic `{"ok":...,"op":...}` reply shape; Cfg is
// populated only by `get`.
type Envelope struct {
	Ok  bool        `json:"ok"`
	Op  string      `json:"op"`
	Err string      `json:"err,omitempty"`
	Cfg *ConfigView `json:"cfg,omitempty"`
}

// Request is the permissive shape of an inbound JSON control frame: it
// may carry an op envelope with a nested cfg, or the config fields
// directly at the top level (both are accepted for preview/save,
// per the original firmware's `doc.containsKey("cfg")` fallback).
type Request struct {
	Op  string          `json:"op"`
	Key string          `json:"key"`
	Cfg *RawConfigPatch `json:"cfg"`
	RawConfigPatch
	Counts *[4]uint16 `json:"c"`
}

// RawConfigPatch mirrors Config but with every field optional, so a
// partial JSON object only overwrites the fields it names (spec.md
// §4.7 parse policy: "missing fields leave current value").
type RawConfigPatch struct {
	Count        *[NumChannels]*uint16 `json:"count,omitempty"`
	Brightness   *uint8                `json:"brightness,omitempty"`
	Mode         *Mode                 `json:"mode,omitempty"`
	Speed        *uint8                `json:"speed,omitempty"`
	Intensity    *uint8                `json:"intensity,omitempty"`
	Width        *uint8                `json:"width,omitempty"`
	ColorA       *RGB                  `json:"colorA,omitempty"`
	ColorB       *RGB                  `json:"colorB,omitempty"`
	ColorC       *RGB                  `json:"colorC,omitempty"`
	ColorD       *RGB                  `json:"colorD,omitempty"`
	PaletteCount *uint8                `json:"paletteCount,omitempty"`
	ResumeOnBoot *bool                 `json:"resumeOnBoot,omitempty"`
	EnableCpu    *bool                 `json:"enableCpu,omitempty"`
	EnableFan    *bool                 `json:"enableFan,omitempty"`
	Reverse      *[NumChannels]*bool   `json:"reverse,omitempty"`
	MasterOff    *bool                 `json:"masterOff,omitempty"`
	CustomSeq    *string               `json:"customSeq,omitempty"`
	CustomLoop   *bool                 `json:"customLoop,omitempty"`
}

// Apply overlays non-nil fields from the patch onto c, then clamps.
// `count` and `reverse` are both decoded as fixed-size [4]*T arrays, so
// a short JSON array leaves its missing trailing indices as nil rather
// than zero-filling them, and each index is applied independently: an
// index absent from the source JSON (nil) leaves the current value
// unchanged, matching the firmware's per-index null check (Open
// Question #3 in DESIGN.md).
func (c *Config) Apply(p *RawConfigPatch) {
	if p == nil {
		return
	}
	if p.Count != nil {
		for i, v := range *p.Count {
			if v != nil {
				c.Count[i] = *v
			}
		}
	}
	if p.Brightness != nil {
		c.Brightness = *p.Brightness
	}
	if p.Mode != nil {
		c.Mode = *p.Mode
	}
	if p.Speed != nil {
		c.Speed = *p.Speed
	}
	if p.Intensity != nil {
		c.Intensity = *p.Intensity
	}
	if p.Width != nil {
		c.Width = *p.Width
	}
	if p.ColorA != nil {
		c.ColorA = *p.ColorA
	}
	if p.ColorB != nil {
		c.ColorB = *p.ColorB
	}
	if p.ColorC != nil {
		c.ColorC = *p.ColorC
	}
	if p.ColorD != nil {
		c.ColorD = *p.ColorD
	}
	if p.PaletteCount != nil {
		c.PaletteCount = *p.PaletteCount
	}
	if p.ResumeOnBoot != nil {
		c.ResumeOnBoot = *p.ResumeOnBoot
	}
	if p.EnableCpu != nil {
		c.EnableCpu = *p.EnableCpu
	}
	if p.EnableFan != nil {
		c.EnableFan = *p.EnableFan
	}
	if p.Reverse != nil {
		for i, v := range *p.Reverse {
			if v != nil {
				c.Reverse[i] = *v
			}
		}
	}
	if p.MasterOff != nil {
		c.MasterOff = *p.MasterOff
	}
	if p.CustomLoop != nil {
		c.CustomLoop = *p.CustomLoop
	}
	if p.CustomSeq != nil {
		c.CustomSeq = *p.CustomSeq
	}
	c.Clamp()
}
