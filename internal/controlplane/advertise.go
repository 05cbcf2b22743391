package controlplane

import (
	"sync"
	"time"
)

const (
	advertFastInterval = 3 * time.Second
	advertSlowInterval = 15 * time.Second
	advertFastBursts   = 3
)

// advertiser drives the presence-broadcast cadence from spec.md §4.8:
// a handful of fast announcements right after an address change (boot
// included), settling into a slow steady cadence afterward, with an
// immediate re-announcement and fresh fast burst whenever the host's
// address changes. Grounded on
// original_source/src/RGBudp.cpp's loop() advertisement block
// (lastAdvertMs/fastBurstsLeft/lastIp).
type advertiser struct {
	mu         sync.Mutex
	lastIP     string
	lastSent   time.Time
	fastBursts int
}

func newAdvertiser() *advertiser {
	return &advertiser{fastBursts: advertFastBursts}
}

// maybe invokes send() if it's time to announce: immediately on an
// address change, and otherwise once the fast/slow interval has
// elapsed since the last announcement.
func (a *advertiser) maybe(now time.Time, currentIP string, send func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if currentIP != a.lastIP {
		a.lastIP = currentIP
		a.fastBursts = advertFastBursts
		a.lastSent = now
		send()
		return
	}

	// The address-change announcement above is the first of the
	// advertFastBursts fast ones but is not counted off fastBursts, so
	// the fast interval holds only while more than one remains.
	interval := advertSlowInterval
	if a.fastBursts > 1 {
		interval = advertFastInterval
	}
	if now.Sub(a.lastSent) < interval {
		return
	}
	a.lastSent = now
	if a.fastBursts > 0 {
		a.fastBursts--
	}
	send()
}
