package catalog

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/JuniperScripture/core/errors"
)

// Catalog is an immutable, ordered set of translation descriptors rooted at a
// data directory. It is safe for concurrent use.
type Catalog struct {
	dataDir     string
	descriptors []Descriptor
}

// New builds a catalog over dataDir. With no descriptors the built-in list
// is used. Descriptors are copied; ids must be unique (case-insensitive).
func New(dataDir string, descriptors ...Descriptor) (*Catalog, error) {
	if len(descriptors) == 0 {
		descriptors = Builtin()
	}

	seen := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(d.ID)
		if seen[key] {
			return nil, errors.NewValidation("id", "duplicate translation id "+d.ID)
		}
		seen[key] = true
	}

	return &Catalog{
		dataDir:     dataDir,
		descriptors: append([]Descriptor(nil), descriptors...),
	}, nil
}

// MustNew is New that panics on an invalid descriptor list.
func MustNew(dataDir string, descriptors ...Descriptor) *Catalog {
	c, err := New(dataDir, descriptors...)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// DataDir returns the directory relative sources are resolved against.
func (c *Catalog) DataDir() string {
	return c.dataDir
}

// All returns every descriptor in registry order.
func (c *Catalog) All() []Descriptor {
	return append([]Descriptor(nil), c.descriptors...)
}

// Lookup finds a descriptor by id, ignoring case.
func (c *Catalog) Lookup(id string) (Descriptor, bool) {
	for _, d := range c.descriptors {
		if strings.EqualFold(d.ID, id) {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Path resolves d's physical source.
func (c *Catalog) Path(d Descriptor) string {
	if filepath.IsAbs(d.Source) {
		return d.Source
	}
	return filepath.Join(c.dataDir, d.Source)
}

// IsAvailable reports whether d's source file is present. It never reads the
// file; a missing or unreadable path is simply unavailable.
func (c *Catalog) IsAvailable(d Descriptor) bool {
	info, err := os.Stat(c.Path(d))
	return err == nil && info.Mode().IsRegular()
}

// Available returns All filtered by IsAvailable, preserving order.
func (c *Catalog) Available() []Descriptor {
	var out []Descriptor
	for _, d := range c.descriptors {
		if c.IsAvailable(d) {
			out = append(out, d)
		}
	}
	return out
}

// ResolveDefault picks the translation to open at startup. persistedID is
// the id stored in user preferences (possibly empty). A known and available
// id is returned as is; anything else falls back to the first registry entry.
func (c *Catalog) ResolveDefault(persistedID string) Descriptor {
	if persistedID != "" {
		if d, ok := c.Lookup(persistedID); ok && c.IsAvailable(d) {
			return d
		}
	}
	return c.descriptors[0]
}

// Fingerprint returns the hex BLAKE3 digest of d's source.
func (c *Catalog) Fingerprint(d Descriptor) (string, error) {
	return FingerprintFile(c.Path(d))
}

// FingerprintFile returns the hex BLAKE3 digest of the file at path.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.NewIO("open", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.NewIO("read", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify compares d's source against its recorded checksum. Descriptors
// without a checksum always verify.
func (c *Catalog) Verify(d Descriptor) error {
	if d.Checksum == "" {
		return nil
	}
	sum, err := c.Fingerprint(d)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sum, d.Checksum) {
		return &errors.ValidationError{
			Field:   "checksum",
			Value:   sum,
			Message: fmt.Sprintf("translation %s: checksum mismatch (want %s)", d.ID, d.Checksum),
		}
	}
	return nil
}
