package signal

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Type distinguishes what a measured channel holds.
type Type string

const (
	TypeTemperature Type = "temperature"
	TypeIntensity   Type = "intensity"
	TypeRaw         Type = "raw"
)

// Key identifies one measured signal.
type Key struct {
	Run     string `yaml:"run"`
	Point   int    `yaml:"point"`
	Channel int    `yaml:"channel"`
	Type    Type   `yaml:"type"`
}

// String renders the key as run/point/channel/type.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%d/%s", k.Run, k.Point, k.Channel, k.Type)
}

// Window is an optional half-open time range [Begin, End).
type Window struct {
	Begin float64 `yaml:"begin"`
	End   float64 `yaml:"end"`
}

// Source resolves keys to signals. A nil window returns the full signal.
type Source interface {
	Signal(ctx context.Context, key Key, window *Window) (*Signal, error)
}

// MemorySource is an in-memory Source, safe for concurrent use.
type MemorySource struct {
	mu      sync.RWMutex
	signals map[Key]*Signal
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{signals: make(map[Key]*Signal)}
}

// Put stores a copy of s under key after validating it.
func (m *MemorySource) Put(key Key, s *Signal) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	m.mu.Lock()
	m.signals[key] = s.Clone()
	m.mu.Unlock()

	return nil
}

// Keys returns all stored keys in deterministic order.
func (m *MemorySource) Keys() []Key {
	m.mu.RLock()
	keys := make([]Key, 0, len(m.signals))
	for k := range m.signals {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	return keys
}

// Signal implements Source.
func (m *MemorySource) Signal(ctx context.Context, key Key, window *Window) (*Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	s, ok := m.signals[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if window == nil {
		return s.Clone(), nil
	}

	return s.Window(window.Begin, window.End)
}

// entry is one record of a YAML signal file.
type entry struct {
	Key    Key    `yaml:"key"`
	Signal Signal `yaml:"signal"`
}

// file is the YAML signal-file layout.
type file struct {
	Signals []entry `yaml:"signals"`
}

// LoadYAML reads a signal file into a new MemorySource.
func LoadYAML(path string) (*MemorySource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("signal: read %s: %w", path, err)
	}
	var f file
	if err = yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("signal: decode %s: %w", path, err)
	}
	src := NewMemorySource()
	for i := range f.Signals {
		if err = src.Put(f.Signals[i].Key, &f.Signals[i].Signal); err != nil {
			return nil, fmt.Errorf("signal: %s: %w", path, err)
		}
	}

	return src, nil
}

// WriteYAML writes the given signals in the format LoadYAML reads.
func WriteYAML(path string, keys []Key, signals []*Signal) error {
	if len(keys) != len(signals) {
		return fmt.Errorf("signal: %d keys for %d signals", len(keys), len(signals))
	}
	f := file{Signals: make([]entry, len(keys))}
	for i := range keys {
		f.Signals[i] = entry{Key: keys[i], Signal: *signals[i]}
	}
	raw, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("signal: encode: %w", err)
	}

	return os.WriteFile(path, raw, 0o644)
}
