package render

import (
	"testing"

	"github.com/Darkone83/XBOX-RGB/internal/model"
)

func TestRingLocateWalksChannelsInOrder(t *testing.T) {
	cfg := model.Config{Count: [model.NumChannels]uint16{2, 3, 0, 1}}
	var r Ring
	r.Rebuild(cfg)

	if got := r.Len(); got != 6 {
		t.Fatalf("Len() = %d, want 6", got)
	}

	cases := []struct {
		idx    int
		wantCh int
		wantPx int
	}{
		{0, 0, 0},
		{1, 0, 1},
		{2, 1, 0},
		{4, 1, 2},
		{5, 3, 0},
	}
	for _, c := range cases {
		ch, px, ok := r.Locate(c.idx)
		if !ok {
			t.Fatalf("Locate(%d): not ok", c.idx)
		}
		if ch != c.wantCh || px != c.wantPx {
			t.Errorf("Locate(%d) = (%d,%d), want (%d,%d)", c.idx, ch, px, c.wantCh, c.wantPx)
		}
	}

	if _, _, ok := r.Locate(6); ok {
		t.Errorf("Locate(6) should be out of range")
	}
	if _, _, ok := r.Locate(-1); ok {
		t.Errorf("Locate(-1) should be out of range")
	}
}

func TestRingLocateHonorsReverse(t *testing.T) {
	cfg := model.Config{
		Count:   [model.NumChannels]uint16{4, 0, 0, 0},
		Reverse: [model.NumChannels]bool{true, false, false, false},
	}
	var r Ring
	r.Rebuild(cfg)

	ch, px, ok := r.Locate(0)
	if !ok || ch != 0 || px != 3 {
		t.Fatalf("Locate(0) = (%d,%d,%v), want (0,3,true)", ch, px, ok)
	}
	ch, px, ok = r.Locate(3)
	if !ok || ch != 0 || px != 0 {
		t.Fatalf("Locate(3) = (%d,%d,%v), want (0,0,true)", ch, px, ok)
	}
}
