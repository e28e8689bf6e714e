// Package prefs persists reader preferences as a small YAML file.
//
// The file is owned by the application; the store never reads it. The last
// opened translation is passed to catalog.ResolveDefault at startup.
package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	"github.com/FocuswithJustin/JuniperScripture/core/errors"
)

// Reading modes.
const (
	ModeScroll = "scroll"
	ModePaged  = "paged"
)

// Font size bounds, in points.
const (
	DefaultFontSize = 16
	MinFontSize     = 8
	MaxFontSize     = 48
)

// LockTimeout bounds how long Save waits for another writer.
var LockTimeout = 5 * time.Second

// Prefs is the in-memory representation of the preferences file.
type Prefs struct {
	Translation string         `yaml:"translation,omitempty"`
	LastAddress *canon.Address `yaml:"last_address,omitempty"`
	FontSize    int            `yaml:"font_size,omitempty"`
	ReadingMode string         `yaml:"reading_mode,omitempty"`
}

// Default returns the preferences used before anything has been saved.
func Default() *Prefs {
	return &Prefs{FontSize: DefaultFontSize, ReadingMode: ModeScroll}
}

// DefaultPath returns the per-user preferences file location.
func DefaultPath() (string, error) {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "juniper-scripture", "prefs.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".juniper-scripture", "prefs.yaml"), nil
}

// Validate checks field ranges. Unset fields are allowed.
func (p *Prefs) Validate() error {
	if p.FontSize != 0 && (p.FontSize < MinFontSize || p.FontSize > MaxFontSize) {
		return &errors.ValidationError{
			Field:   "font_size",
			Value:   fmt.Sprint(p.FontSize),
			Message: fmt.Sprintf("must be between %d and %d", MinFontSize, MaxFontSize),
		}
	}
	switch p.ReadingMode {
	case "", ModeScroll, ModePaged:
	default:
		return &errors.ValidationError{
			Field:   "reading_mode",
			Value:   p.ReadingMode,
			Message: "must be scroll or paged",
		}
	}
	if p.LastAddress != nil && !p.LastAddress.ValidChapter() {
		return &errors.ValidationError{
			Field:   "last_address",
			Value:   p.LastAddress.String(),
			Message: "must name a canonical book and chapter",
		}
	}
	return nil
}

// Position returns the saved reading position, or Genesis 1 when none is
// saved.
func (p *Prefs) Position() canon.Address {
	if p.LastAddress == nil {
		return canon.Address{Book: 1, Chapter: 1}
	}
	return *p.LastAddress
}

// SetPosition records addr as the last reading position.
func (p *Prefs) SetPosition(addr canon.Address) {
	a := addr
	p.LastAddress = &a
}

// Load reads path. A missing file yields Default(). Fields absent from the
// file keep their defaults.
func Load(path string) (*Prefs, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, errors.NewIO("read", path, err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, &errors.ParseError{Format: "preferences", Input: path, Message: "invalid YAML", Err: err}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes p to path. Concurrent writers are serialized through a lock
// file next to path, and the file is replaced by rename so readers never
// see a partial write.
func Save(path string, p *Prefs) error {
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("cannot marshal preferences: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIO("create", dir, err)
	}

	unlock, err := lock(path + ".lock")
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(dir, ".prefs-*.yaml")
	if err != nil {
		return errors.NewIO("create", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewIO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewIO("write", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.NewIO("rename", path, err)
	}
	return nil
}

// Update loads path, applies fn and saves the result while holding the
// lock for the whole read-modify-write.
func Update(path string, fn func(*Prefs)) (*Prefs, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.NewIO("create", filepath.Dir(path), err)
	}
	unlock, err := lock(path + ".update.lock")
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	fn(p)
	if err := Save(path, p); err != nil {
		return nil, err
	}
	return p, nil
}

func lock(lockPath string) (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	l := flock.New(lockPath)
	locked, err := l.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("cannot acquire preferences lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("preferences are locked by another writer (lock: %s)", lockPath)
	}
	return func() { _ = l.Unlock() }, nil
}
