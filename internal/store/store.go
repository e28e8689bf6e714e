// Package store is the read-only query surface over the active translation.
//
// A Store owns at most one open Handle. Opening a different translation
// closes the current handle first; readers never observe a mix of two
// translations. Querying a closed Store is a programming error and panics.
package store

import (
	"sync"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/logging"
)

// Store coordinates the open/switch/close lifecycle of the active
// translation. Queries may run concurrently with each other; lifecycle
// changes wait for in-flight queries and block new ones until done.
type Store struct {
	cat *catalog.Catalog

	mu sync.RWMutex
	h  *Handle // nil while closed
}

// New returns a closed Store resolving sources through cat.
func New(cat *catalog.Catalog) *Store {
	return &Store{cat: cat}
}

// Catalog returns the catalog the store resolves translations through.
func (s *Store) Catalog() *catalog.Catalog {
	return s.cat
}

// Open makes d the active translation. If another translation is open it is
// closed first, exactly as SwitchTranslation does.
func (s *Store) Open(d catalog.Descriptor) error {
	return s.SwitchTranslation(d)
}

// SwitchTranslation closes the active translation, if any, and opens d.
// The exclusive lock is held across both steps. When opening d fails the
// store is left closed and the DataSourceNotFound or OpenFailed error is
// returned.
func (s *Store) SwitchTranslation(d catalog.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := ""
	if s.h != nil {
		from = s.h.desc.ID
		s.closeLocked()
	}

	h, err := Open(s.cat.Path(d), d)
	if err != nil {
		logging.Error("translation_open_failed", "translation", d.ID, "error", err.Error())
		return err
	}
	s.h = h

	if from == "" {
		logging.TranslationEvent("open", d.ID)
	} else {
		logging.TranslationEvent("switch", d.ID, "from", from)
	}
	return nil
}

// Close closes the active translation. Closing a closed store is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Store) closeLocked() error {
	if s.h == nil {
		return nil
	}
	id := s.h.desc.ID
	err := s.h.Close()
	s.h = nil
	logging.TranslationEvent("close", id)
	return err
}

// IsOpen reports whether a translation is active.
func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h != nil
}

// Active returns the active translation.
func (s *Store) Active() (catalog.Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.h == nil {
		return catalog.Descriptor{}, false
	}
	return s.h.desc, true
}

// handle returns the open handle; the caller must hold s.mu.
func (s *Store) handle() *Handle {
	if s.h == nil {
		panic("store: query on closed store")
	}
	return s.h
}

// LoadVerses returns the verses of (book, chapter) in ascending verse order.
// Absent content yields an empty slice and a nil error.
func (s *Store) LoadVerses(book, chapter int) ([]Verse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.handle()
	verses, err := h.LoadVerses(book, chapter)
	if err != nil {
		logging.QueryFailure("load verses", h.desc.ID, err, "book", book, "chapter", chapter)
	}
	return verses, err
}

// AvailableChapters returns the distinct chapters of book, ascending.
func (s *Store) AvailableChapters(book int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.handle()
	chapters, err := h.AvailableChapters(book)
	if err != nil {
		logging.QueryFailure("available chapters", h.desc.ID, err, "book", book)
	}
	return chapters, err
}

// AvailableBooks returns the books present in the active translation,
// ascending by id, with canonical names.
func (s *Store) AvailableBooks() ([]canon.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.handle()
	books, err := h.AvailableBooks()
	if err != nil {
		logging.QueryFailure("available books", h.desc.ID, err)
	}
	return books, err
}

// Chapter loads (book, chapter) and returns it together with the
// translation it was read from, all under one read lock.
func (s *Store) Chapter(book, chapter int) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return chapterOf(s.handle(), book, chapter)
}

func chapterOf(h *Handle, book, chapter int) (View, error) {
	verses, err := h.LoadVerses(book, chapter)
	if err != nil {
		logging.QueryFailure("load verses", h.desc.ID, err, "book", book, "chapter", chapter)
		return View{}, err
	}
	return View{Translation: h.desc, Book: book, Chapter: chapter, Verses: verses}, nil
}

// TryChapter is Chapter for callers that share the store with another
// owner. The open check and the read happen under the same lock; ok is
// false when no translation is open.
func (s *Store) TryChapter(book, chapter int) (v View, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.h == nil {
		return View{}, false, nil
	}
	v, err = chapterOf(s.h, book, chapter)
	return v, true, err
}

// TryAvailableChapters is AvailableChapters with ok false instead of a
// panic when no translation is open.
func (s *Store) TryAvailableChapters(book int) (chapters []int, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.h == nil {
		return nil, false, nil
	}
	chapters, err = s.h.AvailableChapters(book)
	if err != nil {
		logging.QueryFailure("available chapters", s.h.desc.ID, err, "book", book)
	}
	return chapters, true, err
}

// TryAvailableBooks is AvailableBooks with ok false instead of a panic when
// no translation is open.
func (s *Store) TryAvailableBooks() (books []canon.Book, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.h == nil {
		return nil, false, nil
	}
	books, err = s.h.AvailableBooks()
	if err != nil {
		logging.QueryFailure("available books", s.h.desc.ID, err)
	}
	return books, true, err
}
