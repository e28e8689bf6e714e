// Package testutil builds translation databases for tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/JuniperScripture/core/sqlite"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
)

// Row is one verse to insert into a fixture translation.
type Row struct {
	Book    int
	Chapter int
	Verse   int
	Text    string
}

// SampleRows is a small KJV-like translation. Rows are deliberately not in
// canonical order, Genesis has no chapter 3, and the text carries the
// markup the normalizer handles.
func SampleRows(prefix string) []Row {
	return []Row{
		{1, 1, 3, prefix + "And God said, Let there be light: and there was light."},
		{1, 1, 1, prefix + "  In the beginning [God] created the heaven {Heb. heavens} and the earth.  "},
		{1, 1, 2, prefix + "And the earth was without form (or waste), and void¶"},
		{1, 4, 1, prefix + "And Adam knew Eve his wife."},
		{1, 2, 1, prefix + "Thus the heavens and the earth were finished."},
		{19, 3, 8, prefix + "Salvation belongeth unto the LORD. Selah¶   "},
		{40, 1, 1, prefix + "The book of the generation of Jesus Christ."},
		{66, 22, 21, prefix + "The grace of our Lord Jesus Christ be with you all. Amen."},
	}
}

// WriteTranslation creates a SQLite database at path using d's table and
// book column names and fills it with rows.
func WriteTranslation(t testing.TB, path string, d catalog.Descriptor, rows []Row) {
	t.Helper()

	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	create := fmt.Sprintf(`CREATE TABLE %q (
		id INTEGER PRIMARY KEY,
		%q INTEGER NOT NULL,
		chapter INTEGER NOT NULL,
		verse INTEGER NOT NULL,
		text TEXT
	)`, d.Table, d.BookColumn)
	if _, err := db.Exec(create); err != nil {
		t.Fatalf("failed to create %s table: %v", d.Table, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %q (%q, chapter, verse, text) VALUES (?, ?, ?, ?)`, d.Table, d.BookColumn)
	for _, r := range rows {
		if _, err := db.Exec(insert, r.Book, r.Chapter, r.Verse, r.Text); err != nil {
			t.Fatalf("failed to insert verse %d:%d:%d: %v", r.Book, r.Chapter, r.Verse, err)
		}
	}
}

// Install writes d's source into cat's data directory.
func Install(t testing.TB, cat *catalog.Catalog, d catalog.Descriptor, rows []Row) {
	t.Helper()
	WriteTranslation(t, cat.Path(d), d, rows)
}

// Descriptor returns a descriptor with its own table and book column names.
func Descriptor(id, table, bookColumn string) catalog.Descriptor {
	return catalog.Descriptor{
		ID:           id,
		Name:         "Test " + id,
		Abbreviation: id,
		Source:       filepath.Base(id) + ".SQLite3",
		Table:        table,
		BookColumn:   bookColumn,
	}
}
