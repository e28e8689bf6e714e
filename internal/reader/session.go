// Package reader publishes chapter views of the active translation and
// implements the navigation protocol on top of the store.
//
// A Session owns the sequence: switch translation, reload the current
// chapter, publish. Published views are swapped in atomically and fanned out
// to subscribers afterwards, so a subscriber never sees a view whose verses
// belong to a different translation than its descriptor.
package reader

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	"github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/logging"
	"github.com/FocuswithJustin/JuniperScripture/internal/store"
)

// ErrSuperseded is returned by Navigate when the translation changed while
// the chapter was loading. The loaded view is discarded.
var ErrSuperseded = stderrors.New("view superseded by translation switch")

// ErrNoTranslation is returned by queries while no translation is open,
// for example after a failed switch.
var ErrNoTranslation = stderrors.New("no translation open")

// ErrNoChapter is returned by NextChapter and PrevChapter at either end of
// the translation.
var ErrNoChapter = stderrors.New("no further chapter")

// Published is one view together with its scroll target.
type Published struct {
	store.View
	// Target indexes View.Verses; -1 when the chapter is empty.
	Target int `json:"target"`
	// Seq increases by one with every publication.
	Seq uint64 `json:"seq"`
}

// TargetAddress returns the address of the scroll target row, or the
// chapter address when the chapter is empty.
func (p Published) TargetAddress() canon.Address {
	if p.Target < 0 || p.Target >= len(p.Verses) {
		return p.View.Address()
	}
	return p.Verses[p.Target].Address()
}

// HasTranslation reports whether p carries a chapter of an open
// translation. A failed switch publishes a view without one; its Book and
// Chapter still name the reader's position.
func (p Published) HasTranslation() bool {
	return p.Translation.ID != ""
}

// Session drives one reader over a store.
type Session struct {
	st *store.Store

	group singleflight.Group
	mu    sync.Mutex    // serializes switch and navigate
	seq   uint64        // guarded by mu
	last  canon.Address // guarded by mu; survives failed switches

	current atomic.Pointer[Published]

	subMu  sync.Mutex
	subs   map[int]chan Published
	nextID int
	closed bool
}

// New returns a session over st. The store may already be open.
func New(st *store.Store) *Session {
	return &Session{
		st:   st,
		last: canon.Address{Book: 1, Chapter: 1},
		subs: make(map[int]chan Published),
	}
}

// Store returns the underlying store.
func (s *Session) Store() *store.Store {
	return s.st
}

// Current returns the last published view.
func (s *Session) Current() (Published, bool) {
	p := s.current.Load()
	if p == nil {
		return Published{}, false
	}
	return *p, true
}

// Start opens the translation chosen by catalog.ResolveDefault for
// persistedID and navigates to pos, falling back to Genesis 1 when pos does
// not name a chapter.
func (s *Session) Start(ctx context.Context, persistedID string, pos canon.Address) (Published, error) {
	d := s.st.Catalog().ResolveDefault(persistedID)
	if !pos.ValidChapter() {
		pos = canon.Address{Book: 1, Chapter: 1}
	}
	return s.switchTo(ctx, d, &pos)
}

// Switch makes id the active translation and reloads the current position
// in it. Concurrent switches to the same id share one store operation. The
// position survives a failed switch, so the next successful one returns to
// it.
func (s *Session) Switch(ctx context.Context, id string) (Published, error) {
	d, ok := s.st.Catalog().Lookup(id)
	if !ok {
		return Published{}, errors.NewNotFound("translation", id)
	}
	return s.switchTo(ctx, d, nil)
}

// switchTo opens d and loads pos, or the last position when pos is nil.
func (s *Session) switchTo(ctx context.Context, d catalog.Descriptor, pos *canon.Address) (Published, error) {
	ch := s.group.DoChan(d.ID, func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		at := s.last
		if pos != nil {
			at = *pos
		}
		if err := s.st.SwitchTranslation(d); err != nil {
			s.publishClosedLocked(at)
			return nil, err
		}
		return s.loadLocked(at)
	})

	select {
	case <-ctx.Done():
		return Published{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Published{}, res.Err
		}
		return res.Val.(Published), nil
	}
}

// Navigate loads the chapter of addr and publishes it. The scroll target is
// the row whose verse equals addr.Verse, or the first row when no row
// matches.
func (s *Session) Navigate(ctx context.Context, addr canon.Address) (Published, error) {
	if err := ctx.Err(); err != nil {
		return Published{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(addr)
}

func (s *Session) loadLocked(addr canon.Address) (Published, error) {
	view, ok, err := s.st.TryChapter(addr.Book, addr.Chapter)
	if !ok {
		return Published{}, ErrNoTranslation
	}
	if err != nil {
		return Published{}, err
	}

	// The store can be switched underneath the session by another owner.
	if active, ok := s.st.Active(); !ok || active.ID != view.Translation.ID {
		logging.Debug("view_discarded", "translation", view.Translation.ID, "book", addr.Book, "chapter", addr.Chapter)
		return Published{}, ErrSuperseded
	}

	target := store.IndexOf(view.Verses, addr.Verse)
	if target < 0 && len(view.Verses) > 0 {
		target = 0
	}

	s.seq++
	p := Published{View: view, Target: target, Seq: s.seq}
	s.last = p.TargetAddress()
	s.current.Store(&p)
	s.broadcast(p)
	return p, nil
}

// publishClosedLocked tells subscribers that no translation is open while
// remembering at as the reader's position.
func (s *Session) publishClosedLocked(at canon.Address) {
	s.last = at
	s.current.Store(nil)
	s.seq++
	s.broadcast(Published{
		View:   store.View{Book: at.Book, Chapter: at.Chapter},
		Target: -1,
		Seq:    s.seq,
	})
}

// Books returns the books of the active translation.
func (s *Session) Books() ([]canon.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	books, ok, err := s.st.TryAvailableBooks()
	if !ok {
		return nil, ErrNoTranslation
	}
	return books, err
}

// Chapters returns the chapters of book in the active translation.
func (s *Session) Chapters(book int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chapters, ok, err := s.st.TryAvailableChapters(book)
	if !ok {
		return nil, ErrNoTranslation
	}
	return chapters, err
}

// Chapter reads (book, chapter) without publishing it.
func (s *Session) Chapter(book, chapter int) (store.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok, err := s.st.TryChapter(book, chapter)
	if !ok {
		return store.View{}, ErrNoTranslation
	}
	return v, err
}

// NextChapter navigates to the chapter after the current one, crossing into
// the next available book when needed.
func (s *Session) NextChapter(ctx context.Context) (Published, error) {
	return s.step(ctx, 1)
}

// PrevChapter navigates to the chapter before the current one, crossing into
// the last chapter of the previous available book when needed.
func (s *Session) PrevChapter(ctx context.Context) (Published, error) {
	return s.step(ctx, -1)
}

func (s *Session) step(ctx context.Context, dir int) (Published, error) {
	if err := ctx.Err(); err != nil {
		return Published{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if cur == nil {
		return s.loadLocked(s.last)
	}

	chapters, ok, err := s.st.TryAvailableChapters(cur.Book)
	if !ok {
		return Published{}, ErrNoTranslation
	}
	if err != nil {
		return Published{}, err
	}
	if i := neighbor(chapters, cur.Chapter, dir); i >= 0 {
		return s.loadLocked(canon.Address{Book: cur.Book, Chapter: chapters[i]})
	}

	books, ok, err := s.st.TryAvailableBooks()
	if !ok {
		return Published{}, ErrNoTranslation
	}
	if err != nil {
		return Published{}, err
	}
	ids := make([]int, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	bi := neighbor(ids, cur.Book, dir)
	if bi < 0 {
		return Published{}, ErrNoChapter
	}
	chapters, ok, err = s.st.TryAvailableChapters(ids[bi])
	if !ok {
		return Published{}, ErrNoTranslation
	}
	if err != nil {
		return Published{}, err
	}
	if len(chapters) == 0 {
		return Published{}, ErrNoChapter
	}
	c := chapters[0]
	if dir < 0 {
		c = chapters[len(chapters)-1]
	}
	return s.loadLocked(canon.Address{Book: ids[bi], Chapter: c})
}

// neighbor returns the index of the first element of the ascending slice
// strictly after (dir > 0) or before (dir < 0) v, or -1.
func neighbor(sorted []int, v, dir int) int {
	if dir > 0 {
		for i, n := range sorted {
			if n > v {
				return i
			}
		}
		return -1
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] < v {
			return i
		}
	}
	return -1
}
