// Package annotations keeps a reader's notes, highlights and saved verses.
//
// Every annotation is keyed by canon.Address, never by a translation's row
// id, so it stays attached to the same verse across translation switches.
// The translation abbreviation is kept for display only.
package annotations

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	"github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/store"
)

// Kind distinguishes annotation types.
type Kind string

const (
	KindNote      Kind = "note"
	KindHighlight Kind = "highlight"
	KindSaved     Kind = "saved"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindNote, KindHighlight, KindSaved:
		return true
	}
	return false
}

// Annotation is one note, highlight or saved verse.
type Annotation struct {
	ID      string        `json:"id"`
	Kind    Kind          `json:"kind"`
	Address canon.Address `json:"address"`
	// Translation is the abbreviation shown next to the quote.
	Translation string    `json:"translation,omitempty"`
	Quote       string    `json:"quote,omitempty"`
	Body        string    `json:"body,omitempty"`
	Color       string    `json:"color,omitempty"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// FromVerse starts an annotation of kind on v as read from d. The quote is
// the plain text of the verse.
func FromVerse(kind Kind, v store.Verse, d catalog.Descriptor) Annotation {
	return Annotation{
		Kind:        kind,
		Address:     v.Address(),
		Translation: d.Abbreviation,
		Quote:       v.PlainText(),
	}
}

// Store is an in-memory annotation set safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items map[string]Annotation
	now   func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{items: make(map[string]Annotation), now: time.Now}
}

// Add validates a, assigns it an id and timestamps, and stores it.
func (s *Store) Add(a Annotation) (Annotation, error) {
	if !a.Kind.Valid() {
		return Annotation{}, &errors.ValidationError{Field: "kind", Value: string(a.Kind), Message: "unknown annotation kind"}
	}
	if !a.Address.Valid() {
		return Annotation{}, &errors.ValidationError{Field: "address", Value: a.Address.String(), Message: "must name a single verse"}
	}
	if a.Kind == KindNote && strings.TrimSpace(a.Body) == "" {
		return Annotation{}, errors.NewValidation("body", "a note needs a body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.NewString()
	a.Created = s.now()
	a.Updated = a.Created
	s.items[a.ID] = a
	return a, nil
}

// Get returns the annotation with id.
func (s *Store) Get(id string) (Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok {
		return Annotation{}, errors.NewNotFound("annotation", id)
	}
	return a, nil
}

// SetBody replaces the body of annotation id.
func (s *Store) SetBody(id, body string) (Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return Annotation{}, errors.NewNotFound("annotation", id)
	}
	if a.Kind == KindNote && strings.TrimSpace(body) == "" {
		return Annotation{}, errors.NewValidation("body", "a note needs a body")
	}
	a.Body = body
	a.Updated = s.now()
	s.items[id] = a
	return a, nil
}

// Remove deletes annotation id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return errors.NewNotFound("annotation", id)
	}
	delete(s.items, id)
	return nil
}

// Len returns the number of annotations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// At returns the annotations on addr, oldest first.
func (s *Store) At(addr canon.Address) []Annotation {
	return s.filter(func(a Annotation) bool { return a.Address == addr })
}

// Chapter returns the annotations in (book, chapter) in address order.
func (s *Store) Chapter(book, chapter int) []Annotation {
	return s.filter(func(a Annotation) bool {
		return a.Address.Book == book && a.Address.Chapter == chapter
	})
}

// List returns every annotation of kind in address order.
func (s *Store) List(kind Kind) []Annotation {
	return s.filter(func(a Annotation) bool { return a.Kind == kind })
}

func (s *Store) filter(keep func(Annotation) bool) []Annotation {
	s.mu.RLock()
	out := make([]Annotation, 0)
	for _, a := range s.items {
		if keep(a) {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Address.Compare(out[j].Address); c != 0 {
			return c < 0
		}
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
