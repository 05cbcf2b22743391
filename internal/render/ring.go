package render

import "github.com/Darkone83/XBOX-RGB/internal/model"

// Ring is the Ring Mapper (spec.md §4.2): it turns a single logical
// ring index into a (channel, within-channel) pair, walking the four
// channels in the fixed CH1->CH2->CH3->CH4 order and honoring each
// channel's independent reverse flag. Grounded on
// original_source/src/RGBCtrl.cpp's rebuildRingMap/setRing.
type Ring struct {
	lens    [model.NumChannels]int
	reverse [model.NumChannels]bool
	total   int
}

// Rebuild recomputes the segment table from the live config. Called
// whenever counts or reverse flags change.
func (r *Ring) Rebuild(cfg model.Config) {
	r.total = 0
	for ch := 0; ch < model.NumChannels; ch++ {
		n := int(cfg.Count[ch])
		r.lens[ch] = n
		r.reverse[ch] = cfg.Reverse[ch]
		r.total += n
	}
}

// Len returns the total ring length (sum of all four channel counts).
func (r *Ring) Len() int { return r.total }

// Locate maps a logical ring index to its (channel, within-channel
// pixel index), applying the channel's reverse flag. The second return
// value is false if idx is outside [0, Len()).
func (r *Ring) Locate(idx int) (ch int, px int, ok bool) {
	if idx < 0 || idx >= r.total {
		return 0, 0, false
	}
	base := 0
	for ch := 0; ch < model.NumChannels; ch++ {
		n := r.lens[ch]
		if idx < base+n {
			within := idx - base
			if r.reverse[ch] && n > 0 {
				within = n - 1 - within
			}
			return ch, within, true
		}
		base += n
	}
	return 0, 0, false
}
