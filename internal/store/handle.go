package store

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	"github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/core/sqlite"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
)

// Handle is an open, read-only connection to one translation source.
// It must be released with Close.
type Handle struct {
	desc catalog.Descriptor
	path string
	db   *sql.DB
	q    queries
}

// Open opens the translation described by d at path. A missing file yields
// a DataSourceNotFound error; a file that cannot be opened or lacks the
// descriptor's table and columns yields OpenFailed.
func Open(path string, d catalog.Descriptor) (*Handle, error) {
	if err := d.Validate(); err != nil {
		return nil, errors.NewOpenFailed(d.ID, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSourceNotFound(d.ID, path, err)
		}
		return nil, errors.NewOpenFailed(d.ID, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.NewSourceNotFound(d.ID, path, fmt.Errorf("not a regular file"))
	}

	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewOpenFailed(d.ID, path, err)
	}

	h := &Handle{desc: d, path: path, db: db, q: buildQueries(d)}
	if err := h.probe(); err != nil {
		db.Close()
		return nil, errors.NewOpenFailed(d.ID, path, err)
	}
	return h, nil
}

// probe checks that the source is a database holding the expected table.
func (h *Handle) probe() error {
	if err := h.db.Ping(); err != nil {
		return err
	}
	rows, err := h.db.Query(h.q.probe)
	if err != nil {
		return err
	}
	return rows.Close()
}

// Descriptor returns the translation this handle reads.
func (h *Handle) Descriptor() catalog.Descriptor {
	return h.desc
}

// Close releases the connection. Calling Close more than once is a no-op.
func (h *Handle) Close() error {
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}

// LoadVerses returns the verses of (book, chapter) in ascending verse order.
// A chapter the translation does not contain yields an empty slice.
func (h *Handle) LoadVerses(book, chapter int) ([]Verse, error) {
	rows, err := h.db.Query(h.q.verses, book, chapter)
	if err != nil {
		return nil, errors.NewQuery("load verses", h.desc.ID, err)
	}
	defer rows.Close()

	verses := make([]Verse, 0, 32)
	for rows.Next() {
		var v Verse
		var text sql.NullString
		if err := rows.Scan(&v.RowID, &v.Book, &v.Chapter, &v.Verse, &text); err != nil {
			return nil, errors.NewQuery("load verses", h.desc.ID, err)
		}
		v.Text = text.String
		verses = append(verses, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQuery("load verses", h.desc.ID, err)
	}
	return verses, nil
}

// Scan calls fn for every row of the translation in canonical order.
// Duplicate addresses are passed through in row id order. A non-nil error
// from fn stops the scan and is returned as is.
func (h *Handle) Scan(fn func(Verse) error) error {
	rows, err := h.db.Query(h.q.all)
	if err != nil {
		return errors.NewQuery("scan", h.desc.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Verse
		var text sql.NullString
		if err := rows.Scan(&v.RowID, &v.Book, &v.Chapter, &v.Verse, &text); err != nil {
			return errors.NewQuery("scan", h.desc.ID, err)
		}
		v.Text = text.String
		if err := fn(v); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return errors.NewQuery("scan", h.desc.ID, err)
	}
	return nil
}

// AvailableChapters returns the distinct chapters of book, ascending. Gaps
// are possible when a translation omits content.
func (h *Handle) AvailableChapters(book int) ([]int, error) {
	return h.distinctInts("available chapters", h.q.chapters, book)
}

// AvailableBooks returns the books present in the translation in ascending
// id order, named from the canonical table.
func (h *Handle) AvailableBooks() ([]canon.Book, error) {
	ids, err := h.distinctInts("available books", h.q.books)
	if err != nil {
		return nil, err
	}
	books := make([]canon.Book, len(ids))
	for i, id := range ids {
		books[i] = canon.NamedBook(id)
	}
	return books, nil
}

func (h *Handle) distinctInts(op, query string, args ...any) ([]int, error) {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, errors.NewQuery(op, h.desc.ID, err)
	}
	defer rows.Close()

	out := make([]int, 0, 16)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, errors.NewQuery(op, h.desc.ID, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQuery(op, h.desc.ID, err)
	}
	return out, nil
}
