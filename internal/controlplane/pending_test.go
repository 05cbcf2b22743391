package controlplane

import (
	"net"
	"testing"
	"time"
)

func newRecordingActions() (*pendingActions, *[]string) {
	var calls []string
	act := &pendingActions{
		handleRaw: func(addr *net.UDPAddr, data []byte) { calls = append(calls, "raw") },
		reset:     func() { calls = append(calls, "reset") },
		setCounts: func(c [4]uint16) { calls = append(calls, "counts") },
		applyCfg:  func(js []byte, isSave bool) { calls = append(calls, "cfg") },
	}
	return act, &calls
}

func TestPendingDrainPrefersRawAlone(t *testing.T) {
	var q pendingQueue
	var quiet QuietWindow
	act, calls := newRecordingActions()

	q.queueRaw(&net.UDPAddr{}, []byte("RGBDISC?"))
	q.queueReset()
	q.queueCounts([4]uint16{1, 2, 3, 4})
	q.queueCfg([]byte(`{}`), false)

	q.drain(time.Second, &quiet, *act)

	if got := *calls; len(got) != 1 || got[0] != "raw" {
		t.Fatalf("calls = %v, want [raw] only", got)
	}
}

func TestPendingDrainSkipsRawDuringQuietWindow(t *testing.T) {
	var q pendingQueue
	var quiet QuietWindow
	quiet.Enter(time.Second)
	act, calls := newRecordingActions()

	q.queueRaw(&net.UDPAddr{}, []byte("RGBDISC?"))
	q.queueReset()

	q.drain(time.Second, &quiet, *act)

	got := *calls
	if len(got) != 1 || got[0] != "reset" {
		t.Fatalf("calls = %v, want [reset] with raw deferred by quiet window", got)
	}
}

func TestPendingDrainOrdersResetCountsCfg(t *testing.T) {
	var q pendingQueue
	var quiet QuietWindow
	act, calls := newRecordingActions()

	q.queueReset()
	q.queueCounts([4]uint16{4, 4, 4, 4})
	q.queueCfg([]byte(`{}`), true)

	q.drain(time.Second, &quiet, *act)

	got := *calls
	want := []string{"reset", "counts", "cfg"}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

func TestPendingDrainLastWriteWinsBeforeDrain(t *testing.T) {
	var q pendingQueue
	var quiet QuietWindow
	var seen [4]uint16
	act := &pendingActions{
		handleRaw: func(addr *net.UDPAddr, data []byte) {},
		reset:     func() {},
		setCounts: func(c [4]uint16) { seen = c },
		applyCfg:  func(js []byte, isSave bool) {},
	}

	q.queueCounts([4]uint16{1, 1, 1, 1})
	q.queueCounts([4]uint16{9, 9, 9, 9})

	q.drain(time.Second, &quiet, *act)

	if seen != [4]uint16{9, 9, 9, 9} {
		t.Fatalf("setCounts saw %v, want last write [9,9,9,9]", seen)
	}
}

func TestPendingDrainNoWorkInvokesNothing(t *testing.T) {
	var q pendingQueue
	var quiet QuietWindow
	act, calls := newRecordingActions()

	q.drain(time.Second, &quiet, *act)

	if len(*calls) != 0 {
		t.Fatalf("calls = %v, want none", *calls)
	}
}
