// Package config implements collab.ConfigProvider over a YAML file on
// disk (spec.md §4.11), the same shape gazed-vu loads its engine config
// from by way of gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kestrelwm/kestrel/internal/seat"
)

// OutputConfig describes one placeholder output to create at startup
// (spec.md §4.8: "placeholder static configuration accepted").
type OutputConfig struct {
	Name           string `yaml:"name"`
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	RefreshMilliHz int    `yaml:"refresh_mhz"`
	Scale          int    `yaml:"scale"`
	Layout         string `yaml:"layout"` // "master_stack" (default) or "floating"
	MasterFraction float64 `yaml:"master_fraction"`
}

// SeatConfig describes one seat to create at startup.
type SeatConfig struct {
	Name       string `yaml:"name"`
	XkbRules   string `yaml:"xkb_rules"`
	XkbModel   string `yaml:"xkb_model"`
	XkbLayout  string `yaml:"xkb_layout"`
	XkbVariant string `yaml:"xkb_variant"`
	XkbOptions string `yaml:"xkb_options"`
}

// File is kestrel.yaml's top-level shape.
type File struct {
	Outputs []OutputConfig `yaml:"outputs"`
	Seats   []SeatConfig   `yaml:"seats"`

	KeyRepeatRate  int           `yaml:"key_repeat_rate"`
	KeyRepeatDelay time.Duration `yaml:"key_repeat_delay"`

	PointerAccelSpeed   float64 `yaml:"pointer_accel_speed"`
	PointerAccelAdaptive bool   `yaml:"pointer_accel_adaptive"`
	NaturalScroll       bool    `yaml:"natural_scroll"`
}

// Default mirrors the values internal/seat's own zero-value constructors
// already pick, so a missing kestrel.yaml still produces a usable seat.
func Default() File {
	return File{
		Outputs: []OutputConfig{{Name: "WL-1", Width: 1920, Height: 1080, RefreshMilliHz: 60000, Scale: 1, Layout: "master_stack", MasterFraction: 0.6}},
		Seats:   []SeatConfig{{Name: "seat0", XkbRules: "evdev", XkbModel: "pc105", XkbLayout: "us"}},
		KeyRepeatRate:  25,
		KeyRepeatDelay: 600 * time.Millisecond,
	}
}

// FileProvider implements collab.ConfigProvider, re-reading path on
// Reload (wired to SIGHUP by cmd/kestrel) instead of a filesystem
// watcher, per spec.md §4.11's resolved dependency scope.
type FileProvider struct {
	path string

	mu   sync.RWMutex
	file File

	subMu sync.Mutex
	subs  map[int]func()
	nextSub int
}

// Load reads path, falling back to Default() if it doesn't exist yet —
// a fresh install shouldn't fail to start for lack of a config file.
func Load(path string) (*FileProvider, error) {
	fp := &FileProvider{path: path, file: Default(), subs: make(map[int]func())}
	if err := fp.reload(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return fp, nil
}

func (fp *FileProvider) reload() error {
	data, err := os.ReadFile(fp.path)
	if err != nil {
		return err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("config: parse %s: %w", fp.path, err)
	}
	merged := Default()
	if len(f.Outputs) > 0 {
		merged.Outputs = f.Outputs
	}
	if len(f.Seats) > 0 {
		merged.Seats = f.Seats
	}
	if f.KeyRepeatRate > 0 {
		merged.KeyRepeatRate = f.KeyRepeatRate
	}
	if f.KeyRepeatDelay > 0 {
		merged.KeyRepeatDelay = f.KeyRepeatDelay
	}
	merged.PointerAccelSpeed = f.PointerAccelSpeed
	merged.PointerAccelAdaptive = f.PointerAccelAdaptive
	merged.NaturalScroll = f.NaturalScroll

	fp.mu.Lock()
	fp.file = merged
	fp.mu.Unlock()
	return nil
}

// Reload re-reads the config file from disk and notifies subscribers,
// called by cmd/kestrel's SIGHUP handler.
func (fp *FileProvider) Reload() error {
	if err := fp.reload(); err != nil {
		return err
	}
	fp.subMu.Lock()
	subs := make([]func(), 0, len(fp.subs))
	for _, s := range fp.subs {
		subs = append(subs, s)
	}
	fp.subMu.Unlock()
	for _, s := range subs {
		s()
	}
	return nil
}

func (fp *FileProvider) Outputs() []OutputConfig {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.file.Outputs
}

func (fp *FileProvider) Seats() []SeatConfig {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.file.Seats
}

func (fp *FileProvider) KeyRepeat() (int, time.Duration) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.file.KeyRepeatRate, fp.file.KeyRepeatDelay
}

func (fp *FileProvider) PointerAccel() (float64, seat.AccelProfile) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	profile := seat.AccelFlat
	if fp.file.PointerAccelAdaptive {
		profile = seat.AccelAdaptive
	}
	return fp.file.PointerAccelSpeed, profile
}

func (fp *FileProvider) NaturalScroll() bool {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.file.NaturalScroll
}

func (fp *FileProvider) XkbNames() (rules, model, layout, variant, options string) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	if len(fp.file.Seats) == 0 {
		return "evdev", "pc105", "us", "", ""
	}
	s := fp.file.Seats[0]
	return s.XkbRules, s.XkbModel, s.XkbLayout, s.XkbVariant, s.XkbOptions
}

// Subscribe implements collab.ConfigProvider.
func (fp *FileProvider) Subscribe(onChange func()) (unsubscribe func()) {
	fp.subMu.Lock()
	id := fp.nextSub
	fp.nextSub++
	fp.subs[id] = onChange
	fp.subMu.Unlock()
	return func() {
		fp.subMu.Lock()
		delete(fp.subs, id)
		fp.subMu.Unlock()
	}
}
