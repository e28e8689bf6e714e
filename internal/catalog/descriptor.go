// Package catalog is the registry of known translations and the physical
// schema each one is stored under.
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/JuniperScripture/core/errors"
)

// Descriptor describes one translation and where its verses live.
//
// Every source stores the same logical columns (id, book, chapter, verse,
// text); only the table name and the name of the book column vary.
type Descriptor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	// Source is the database file, relative to the catalog data directory
	// unless absolute.
	Source     string `json:"source"`
	Table      string `json:"table"`
	BookColumn string `json:"book_column"`
	// Checksum is the hex BLAKE3 digest of Source. Empty means unchecked.
	Checksum string `json:"checksum,omitempty"`
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that d can be used to build queries.
func (d Descriptor) Validate() error {
	switch {
	case strings.TrimSpace(d.ID) == "":
		return errors.NewValidation("id", "must not be empty")
	case strings.TrimSpace(d.Source) == "":
		return errors.NewValidation("source", fmt.Sprintf("translation %s has no source", d.ID))
	case !identifier.MatchString(d.Table):
		return errors.NewValidation("table", fmt.Sprintf("translation %s: %q is not a valid identifier", d.ID, d.Table))
	case !identifier.MatchString(d.BookColumn):
		return errors.NewValidation("book_column", fmt.Sprintf("translation %s: %q is not a valid identifier", d.ID, d.BookColumn))
	}
	return nil
}

// String returns the abbreviation, falling back to the id.
func (d Descriptor) String() string {
	if d.Abbreviation != "" {
		return d.Abbreviation
	}
	return d.ID
}

// Builtin returns the compiled-in translations in registry order. The first
// entry is the fallback default.
func Builtin() []Descriptor {
	return []Descriptor{
		{
			ID:           "kjv",
			Name:         "King James Version",
			Abbreviation: "KJV",
			Source:       "kjv.SQLite3",
			Table:        "verses",
			BookColumn:   "book",
		},
		{
			ID:           "asv",
			Name:         "American Standard Version",
			Abbreviation: "ASV",
			Source:       "asv.SQLite3",
			Table:        "asv_verses",
			BookColumn:   "book_id",
		},
		{
			ID:           "web",
			Name:         "World English Bible",
			Abbreviation: "WEB",
			Source:       "web.bblx",
			Table:        "Bible",
			BookColumn:   "Book",
		},
		{
			ID:           "bbe",
			Name:         "Bible in Basic English",
			Abbreviation: "BBE",
			Source:       "bbe.SQLite3",
			Table:        "bbe",
			BookColumn:   "book_number",
		},
		{
			ID:           "ylt",
			Name:         "Young's Literal Translation",
			Abbreviation: "YLT",
			Source:       "ylt.db",
			Table:        "t_ylt",
			BookColumn:   "b",
		},
	}
}
