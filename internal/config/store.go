package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/Darkone83/XBOX-RGB/internal/model"
)

// ErrBadJSON is returned by ApplyPreview/ApplySave when the inbound
// body fails to parse, surfaced by the control plane as the BadJson
// error kind (spec.md §7).
var ErrBadJSON = errors.New("bad json")

// Store is the single authoritative holder of the configuration
// record: one writer (the control plane, through ApplyPreview/
// ApplySave/Reset), many readers (the render loop, the control plane's
// own `get`). Grounded on
// ambient-light-agent/internal/storage/storage.go's Store (RWMutex +
// saveLocked + Snapshot-via-marshal).
type Store struct {
	mu        sync.RWMutex
	path      string
	cfg       model.Config
	inPreview bool
}

// NewStore constructs a Store seeded with defaults overlaid by any
// value persisted at path (spec.md §3 Lifecycle).
func NewStore(path string) *Store {
	s := &Store{path: path, cfg: model.Default()}
	s.Load()
	return s
}

// Load reads the NVS-emulation file and overlays it onto the current
// record; if absent, installs defaults. Unknown fields are ignored and
// missing fields leave the current (default) value, matching spec.md
// §4.7's parse policy.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.cfg = model.Default()
			return
		}
		log.Printf("rgbctrl: config load failed, using defaults: %v", err)
		s.cfg = model.Default()
		return
	}

	var patch model.RawConfigPatch
	if err := json.Unmarshal(b, &patch); err != nil {
		log.Printf("rgbctrl: persisted config is corrupt, using defaults: %v", err)
		s.cfg = model.Default()
		return
	}
	cfg := model.Default()
	cfg.Apply(&patch)
	s.cfg = cfg
}

// Snapshot returns a copy of the live record, safe to read without
// holding the Store's lock.
func (s *Store) Snapshot() model.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// InPreview reports whether the live record diverges from the
// persisted one (true between a preview apply and the next save/reset).
func (s *Store) InPreview() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inPreview
}

// ApplyPreview parse-validates-clamps json into a temporary record; on
// success it replaces the live CFG and marks inPreview, without
// persisting. Returns ErrBadJSON on parse failure.
func (s *Store) ApplyPreview(raw []byte) error {
	cfg, err := s.parsePatch(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.inPreview = true
	s.mu.Unlock()
	return nil
}

// ApplySave does the same as ApplyPreview, then persists and clears
// inPreview. If the NVS write fails, the in-memory apply still stands
// and the error is only logged: this matches the documented weakness
// in spec.md §7/§9 (Open Question #4 in DESIGN.md) rather than
// inventing a stricter contract the firmware never had.
func (s *Store) ApplySave(raw []byte) error {
	cfg, err := s.parsePatch(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.inPreview = false
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		log.Printf("rgbctrl: save: nvs write failed (config remains applied in memory): %v", err)
	}
	return nil
}

// SetCounts applies a setCounts op: each of the 4 channel counts is
// clamped independently and applied immediately (not queued as a
// preview), matching the original firmware's RGBCtrl::setCounts.
func (s *Store) SetCounts(counts [4]uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Count = counts
	s.cfg.Clamp()
}

// Reset erases the persisted key and installs defaults.
func (s *Store) Reset() error {
	s.mu.Lock()
	s.cfg = model.Default()
	s.inPreview = false
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("rgbctrl: reset: failed to erase persisted config: %v", err)
		return err
	}
	return nil
}

// Save persists the current live record as-is (used by cmd/rgbcored
// on shutdown).
func (s *Store) Save() error {
	return s.persist()
}

// View returns the full record including derived display fields, as
// returned by `get` and embedded in the HTML page (spec.md §4.7 toJson).
func (s *Store) View() model.ConfigView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.ConfigView{
		Config:       s.cfg,
		InPreview:    s.inPreview,
		BuildVersion: BuildVersion,
		Copyright:    Copyright,
	}
}

func (s *Store) parsePatch(raw []byte) (model.Config, error) {
	var patch model.RawConfigPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return model.Config{}, ErrBadJSON
	}
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()
	cfg.Apply(&patch)
	return cfg, nil
}

// persist serializes the persistent subset (excludes inPreview,
// buildVersion, copyright) and writes it atomically: write to a temp
// file in the same directory, then rename over the target, so a
// concurrent Load never observes a partially written document
// (spec.md §5: "NVS key... writes are atomic at the key level").
func (s *Store) persist() error {
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
