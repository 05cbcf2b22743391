package controlplane

import (
	"net"
	"sync"
	"time"
)

type rawPacket struct {
	addr *net.UDPAddr
	data []byte
}

type pendingCfg struct {
	json   []byte
	isSave bool
}

// pendingQueue is the coalescing "pending work" queue from spec.md
// §4.8: every op that does real work (as opposed to just replying)
// lands here instead of running inline on the receive path, and a
// second write of the same kind before the first drains simply
// replaces it — last write wins. Grounded on
// original_source/src/RGBudp.cpp's pendHasRaw/pendDoReset/
// pendHasCounts/pendHasCfg statics.
type pendingQueue struct {
	mu sync.Mutex

	raw     *rawPacket
	doReset bool
	counts  *[4]uint16
	cfg     *pendingCfg
}

func (q *pendingQueue) queueRaw(addr *net.UDPAddr, data []byte) {
	cp := append([]byte(nil), data...)
	q.mu.Lock()
	q.raw = &rawPacket{addr: addr, data: cp}
	q.mu.Unlock()
}

func (q *pendingQueue) queueReset() {
	q.mu.Lock()
	q.doReset = true
	q.mu.Unlock()
}

func (q *pendingQueue) queueCounts(c [4]uint16) {
	q.mu.Lock()
	q.counts = &c
	q.mu.Unlock()
}

func (q *pendingQueue) queueCfg(js []byte, isSave bool) {
	q.mu.Lock()
	q.cfg = &pendingCfg{json: js, isSave: isSave}
	q.mu.Unlock()
}

// pendingActions are the side effects drain invokes; kept as plain
// closures rather than an interface so Server's wiring stays in one
// place (udp.go).
type pendingActions struct {
	handleRaw func(addr *net.UDPAddr, data []byte)
	reset     func()
	setCounts func(c [4]uint16)
	applyCfg  func(js []byte, isSave bool)
}

// drain processes queued work in the same strict priority order as
// original_source/src/RGBudp.cpp's processPending: a deferred raw
// packet first (and alone, if present), then reset, then setCounts,
// then the coalesced config apply. Reset always runs when queued;
// setCounts and the config apply are each skipped (left queued) once
// the time spent in this call reaches budget, so a slow step doesn't
// starve the next frame.
func (q *pendingQueue) drain(budget time.Duration, quiet *QuietWindow, act pendingActions) {
	start := time.Now()

	if !quiet.Active() {
		q.mu.Lock()
		raw := q.raw
		q.raw = nil
		q.mu.Unlock()
		if raw != nil {
			act.handleRaw(raw.addr, raw.data)
			return
		}
	}

	q.mu.Lock()
	doReset := q.doReset
	q.doReset = false
	q.mu.Unlock()
	if doReset {
		act.reset()
		if time.Since(start) >= budget {
			return
		}
	}

	q.mu.Lock()
	counts := q.counts
	q.counts = nil
	q.mu.Unlock()
	if counts != nil {
		act.setCounts(*counts)
		if time.Since(start) >= budget {
			return
		}
	}

	q.mu.Lock()
	cfg := q.cfg
	q.cfg = nil
	q.mu.Unlock()
	if cfg != nil {
		act.applyCfg(cfg.json, cfg.isSave)
	}
}
