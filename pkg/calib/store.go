package calib

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Marker tags persisted data as a valid calibration.
const Marker = 1947

// Store persists a calibration profile.
//
// Load returns false when the store was never initialized or its marker does
// not match; the caller decides whether to calibrate or keep the default.
type Store interface {
	Load() (Profile, bool, error)
	Save(p Profile) error
	Clear() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*PrefsStore)(nil)
)

// MemoryStore keeps the profile in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	profile Profile
	valid   bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.valid, nil
}

func (s *MemoryStore) Save(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	s.valid = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = Profile{}
	s.valid = false
	return nil
}

// FileStore keeps the profile in a YAML document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// fileDocument is the on-disk layout of FileStore.
type fileDocument struct {
	InitFlag int            `yaml:"init_flag"`
	Min      ReferencePoint `yaml:"min"`
	Max      ReferencePoint `yaml:"max"`
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Profile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Profile{}, false, nil
		}
		return Profile{}, false, fmt.Errorf("failed to read calibration file: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Profile{}, false, fmt.Errorf("failed to parse calibration file: %w", err)
	}
	if doc.InitFlag != Marker {
		return Profile{}, false, nil
	}

	return Profile{Min: doc.Min, Max: doc.Max}, true, nil
}

func (s *FileStore) Save(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(fileDocument{InitFlag: Marker, Min: p.Min, Max: p.Max})
	if err != nil {
		return fmt.Errorf("failed to marshal calibration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create calibration directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write calibration file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove calibration file: %w", err)
	}
	return nil
}

// Prefs is a namespaced integer key/value store.
type Prefs interface {
	GetInt(key string, def int) (int, error)
	PutInts(values map[string]int) error
	Clear() error
}

// Preference keys used by PrefsStore.
const (
	keyInitFlag = "INIT_FLAG"
	keyXMin     = "xTouchMin"
	keyYMin     = "yTouchMin"
	keyRawXMin  = "xValueTouchMin"
	keyRawYMin  = "yValueTouchMin"
	keyRawZMin  = "zValueTouchMin"
	keyXMax     = "xTouchMax"
	keyYMax     = "yTouchMax"
	keyRawXMax  = "xValueTouchMax"
	keyRawYMax  = "yValueTouchMax"
	keyRawZMax  = "zValueTouchMax"
)

// PrefsNamespace is the preferences namespace holding calibration data.
const PrefsNamespace = "CALDATA"

// PrefsStore keeps the profile as individual integer preferences.
type PrefsStore struct {
	prefs Prefs
}

// NewPrefsStore creates a store on top of a preferences namespace.
func NewPrefsStore(prefs Prefs) *PrefsStore {
	return &PrefsStore{prefs: prefs}
}

func (s *PrefsStore) Load() (Profile, bool, error) {
	flag, err := s.prefs.GetInt(keyInitFlag, 0)
	if err != nil {
		return Profile{}, false, fmt.Errorf("failed to read calibration marker: %w", err)
	}
	if flag != Marker {
		return Profile{}, false, nil
	}

	var p Profile
	fields := []struct {
		key string
		dst *int
	}{
		{keyXMin, &p.Min.X},
		{keyYMin, &p.Min.Y},
		{keyRawXMin, &p.Min.RawX},
		{keyRawYMin, &p.Min.RawY},
		{keyRawZMin, &p.Min.RawZ},
		{keyXMax, &p.Max.X},
		{keyYMax, &p.Max.Y},
		{keyRawXMax, &p.Max.RawX},
		{keyRawYMax, &p.Max.RawY},
		{keyRawZMax, &p.Max.RawZ},
	}
	for _, f := range fields {
		v, err := s.prefs.GetInt(f.key, 0)
		if err != nil {
			return Profile{}, false, fmt.Errorf("failed to read %s: %w", f.key, err)
		}
		*f.dst = v
	}

	return p, true, nil
}

func (s *PrefsStore) Save(p Profile) error {
	err := s.prefs.PutInts(map[string]int{
		keyInitFlag: Marker,
		keyXMin:     p.Min.X,
		keyYMin:     p.Min.Y,
		keyRawXMin:  p.Min.RawX,
		keyRawYMin:  p.Min.RawY,
		keyRawZMin:  p.Min.RawZ,
		keyXMax:     p.Max.X,
		keyYMax:     p.Max.Y,
		keyRawXMax:  p.Max.RawX,
		keyRawYMax:  p.Max.RawY,
		keyRawZMax:  p.Max.RawZ,
	})
	if err != nil {
		return fmt.Errorf("failed to save calibration: %w", err)
	}
	return nil
}

func (s *PrefsStore) Clear() error {
	if err := s.prefs.Clear(); err != nil {
		return fmt.Errorf("failed to clear calibration: %w", err)
	}
	return nil
}
