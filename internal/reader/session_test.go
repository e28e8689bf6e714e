package reader

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	scerrors "github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/store"
	"github.com/FocuswithJustin/JuniperScripture/internal/testutil"
)

func newSession(t *testing.T) (*Session, *catalog.Catalog) {
	t.Helper()
	cat := catalog.MustNew(t.TempDir())
	for _, d := range cat.All() {
		testutil.Install(t, cat, d, testutil.SampleRows(prefix(d.ID)))
	}
	st := store.New(cat)
	s := New(st)
	t.Cleanup(func() {
		s.Close()
		st.Close()
	})
	return s, cat
}

func prefix(id string) string {
	return strings.ToUpper(id) + ": "
}

func assertConsistent(t *testing.T, p Published) {
	t.Helper()
	for _, v := range p.Verses {
		if !strings.HasPrefix(v.Text, prefix(p.Translation.ID)) {
			t.Errorf("view of %s carries verse %q", p.Translation.ID, v.Text)
		}
	}
}

func TestStartResolvesDefault(t *testing.T) {
	tests := []struct {
		name      string
		persisted string
		pos       canon.Address
		wantID    string
		wantAddr  canon.Address
	}{
		{"fresh install", "", canon.Address{}, "kjv", canon.NewAddress(1, 1, 1)},
		{"persisted", "asv", canon.NewAddress(19, 3, 8), "asv", canon.NewAddress(19, 3, 8)},
		{"unknown id", "nonexistent", canon.Address{Book: 40, Chapter: 1}, "kjv", canon.NewAddress(40, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t)
			p, err := s.Start(context.Background(), tt.persisted, tt.pos)
			if err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			if p.Translation.ID != tt.wantID {
				t.Errorf("translation = %s, want %s", p.Translation.ID, tt.wantID)
			}
			if got := p.TargetAddress(); got != tt.wantAddr {
				t.Errorf("target = %v, want %v", got, tt.wantAddr)
			}
			assertConsistent(t, p)
		})
	}
}

func TestStartSkipsUnavailablePersisted(t *testing.T) {
	s, cat := newSession(t)
	web, _ := cat.Lookup("web")
	if err := os.Remove(cat.Path(web)); err != nil {
		t.Fatal(err)
	}
	p, err := s.Start(context.Background(), "web", canon.Address{})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if p.Translation.ID != "kjv" {
		t.Errorf("translation = %s, want kjv", p.Translation.ID)
	}
}

func TestNavigateScrollTarget(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	if _, err := s.Start(ctx, "kjv", canon.Address{}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		addr       canon.Address
		wantTarget int
		wantVerses int
	}{
		{"exact verse", canon.NewAddress(1, 1, 2), 1, 3},
		{"whole chapter", canon.Address{Book: 1, Chapter: 1}, 0, 3},
		{"missing verse falls back to first row", canon.NewAddress(1, 1, 9), 0, 3},
		{"missing chapter", canon.Address{Book: 1, Chapter: 3}, -1, 0},
		{"invalid book", canon.Address{Book: 99, Chapter: 1}, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := s.Navigate(ctx, tt.addr)
			if err != nil {
				t.Fatalf("Navigate failed: %v", err)
			}
			if p.Target != tt.wantTarget || len(p.Verses) != tt.wantVerses {
				t.Errorf("target %d of %d verses, want %d of %d", p.Target, len(p.Verses), tt.wantTarget, tt.wantVerses)
			}
			cur, ok := s.Current()
			if !ok || cur.Seq != p.Seq {
				t.Errorf("Current() = %v, %v; want the navigated view", cur.Seq, ok)
			}
		})
	}
}

func TestSwitchKeepsPosition(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	if _, err := s.Start(ctx, "kjv", canon.NewAddress(19, 3, 8)); err != nil {
		t.Fatal(err)
	}

	p, err := s.Switch(ctx, "YLT")
	if err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	if p.Translation.ID != "ylt" {
		t.Errorf("translation = %s", p.Translation.ID)
	}
	if got := p.TargetAddress(); got != canon.NewAddress(19, 3, 8) {
		t.Errorf("target = %v, want Psalms 3:8", got)
	}
	assertConsistent(t, p)
}

func TestSwitchErrors(t *testing.T) {
	s, cat := newSession(t)
	ctx := context.Background()
	if _, err := s.Start(ctx, "kjv", canon.Address{}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Switch(ctx, "nope"); !errors.Is(err, scerrors.ErrNotFound) {
		t.Errorf("Switch(unknown) = %v, want ErrNotFound", err)
	}
	if _, ok := s.Current(); !ok {
		t.Error("unknown id must not disturb the current view")
	}

	bbe, _ := cat.Lookup("bbe")
	if err := os.Remove(cat.Path(bbe)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Switch(ctx, "bbe"); !errors.Is(err, scerrors.ErrDataSourceNotFound) {
		t.Errorf("Switch(missing) = %v, want ErrDataSourceNotFound", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("failed switch should clear the current view")
	}
	if s.Store().IsOpen() {
		t.Error("failed switch should leave the store closed")
	}
}

func TestCanceledContext(t *testing.T) {
	s, _ := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Navigate(ctx, canon.Address{Book: 1, Chapter: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("Navigate = %v, want context.Canceled", err)
	}
}

func TestChapterStepping(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	if _, err := s.Start(ctx, "bbe", canon.Address{}); err != nil {
		t.Fatal(err)
	}

	want := []canon.Address{
		{Book: 1, Chapter: 2},
		{Book: 1, Chapter: 4},
		{Book: 19, Chapter: 3},
		{Book: 40, Chapter: 1},
		{Book: 66, Chapter: 22},
	}
	for _, w := range want {
		p, err := s.NextChapter(ctx)
		if err != nil {
			t.Fatalf("NextChapter failed before %v: %v", w, err)
		}
		if p.View.Address() != w {
			t.Fatalf("NextChapter = %v, want %v", p.View.Address(), w)
		}
	}
	if _, err := s.NextChapter(ctx); !errors.Is(err, ErrNoChapter) {
		t.Errorf("NextChapter at end = %v, want ErrNoChapter", err)
	}

	for i := len(want) - 2; i >= 0; i-- {
		p, err := s.PrevChapter(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if p.View.Address() != want[i] {
			t.Fatalf("PrevChapter = %v, want %v", p.View.Address(), want[i])
		}
	}
	p, err := s.PrevChapter(ctx)
	if err != nil || p.View.Address() != (canon.Address{Book: 1, Chapter: 1}) {
		t.Fatalf("PrevChapter = %v, %v; want Genesis 1", p.View.Address(), err)
	}
	if _, err := s.PrevChapter(ctx); !errors.Is(err, ErrNoChapter) {
		t.Errorf("PrevChapter at start = %v, want ErrNoChapter", err)
	}
}

func TestSubscribe(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()

	ch, cancel := s.Subscribe()
	p, err := s.Start(ctx, "kjv", canon.Address{})
	if err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-ch:
		if got.Seq != p.Seq {
			t.Errorf("received seq %d, want %d", got.Seq, p.Seq)
		}
	case <-time.After(time.Second):
		t.Fatal("no view received")
	}

	// An idle subscriber keeps only the latest view.
	for i := 0; i < 3; i++ {
		if _, err := s.NextChapter(ctx); err != nil {
			t.Fatal(err)
		}
	}
	got := <-ch
	if cur, _ := s.Current(); got.Seq != cur.Seq {
		t.Errorf("received seq %d, want latest %d", got.Seq, cur.Seq)
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	cancel()
}

func TestSubscribeAfterClose(t *testing.T) {
	s, _ := newSession(t)
	s.Close()
	ch, cancel := s.Subscribe()
	defer cancel()
	if _, ok := <-ch; ok {
		t.Error("subscription on a closed session should be closed")
	}
}

func TestConcurrentSwitchesPublishConsistentViews(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()
	if _, err := s.Start(ctx, "kjv", canon.Address{}); err != nil {
		t.Fatal(err)
	}

	ch, cancel := s.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range ch {
			assertConsistent(t, p)
		}
	}()

	ids := []string{"kjv", "asv", "web", "bbe", "ylt"}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := s.Switch(ctx, ids[i%len(ids)])
			if err != nil {
				t.Errorf("Switch failed: %v", err)
				return
			}
			assertConsistent(t, p)
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Navigate(ctx, canon.Address{Book: 1, Chapter: 1})
			if err != nil {
				t.Errorf("Navigate failed: %v", err)
				return
			}
			assertConsistent(t, p)
		}()
	}
	wg.Wait()
	cancel()
	<-done

	cur, ok := s.Current()
	if !ok {
		t.Fatal("no current view")
	}
	active, _ := s.Store().Active()
	if cur.Translation.ID != active.ID {
		t.Errorf("current view %s does not match active translation %s", cur.Translation.ID, active.ID)
	}
}

func TestQueriesWithoutTranslation(t *testing.T) {
	s, _ := newSession(t)
	ctx := context.Background()

	if _, err := s.Books(); !errors.Is(err, ErrNoTranslation) {
		t.Errorf("Books() = %v, want ErrNoTranslation", err)
	}
	if _, err := s.Chapters(1); !errors.Is(err, ErrNoTranslation) {
		t.Errorf("Chapters() = %v, want ErrNoTranslation", err)
	}
	if _, err := s.Chapter(1, 1); !errors.Is(err, ErrNoTranslation) {
		t.Errorf("Chapter() = %v, want ErrNoTranslation", err)
	}
	if _, err := s.Navigate(ctx, canon.Address{Book: 1, Chapter: 1}); !errors.Is(err, ErrNoTranslation) {
		t.Errorf("Navigate() = %v, want ErrNoTranslation", err)
	}

	if _, err := s.Start(ctx, "web", canon.Address{}); err != nil {
		t.Fatal(err)
	}
	books, err := s.Books()
	if err != nil || len(books) != 4 {
		t.Errorf("Books() = %v, %v", books, err)
	}
	chapters, err := s.Chapters(1)
	if err != nil || len(chapters) != 3 {
		t.Errorf("Chapters(1) = %v, %v", chapters, err)
	}
	before, _ := s.Current()
	view, err := s.Chapter(66, 22)
	if err != nil || len(view.Verses) != 1 {
		t.Errorf("Chapter(66, 22) = %+v, %v", view, err)
	}
	if after, _ := s.Current(); after.Seq != before.Seq {
		t.Error("Chapter must not publish")
	}
}

func TestFailedSwitchPublishesClosedAndKeepsPosition(t *testing.T) {
	s, cat := newSession(t)
	ctx := context.Background()
	if _, err := s.Start(ctx, "kjv", canon.NewAddress(19, 3, 8)); err != nil {
		t.Fatal(err)
	}
	views, cancel := s.Subscribe()
	defer cancel()

	bbe, _ := cat.Lookup("bbe")
	if err := os.Remove(cat.Path(bbe)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Switch(ctx, "bbe"); !errors.Is(err, scerrors.ErrDataSourceNotFound) {
		t.Fatalf("Switch(missing) = %v", err)
	}

	select {
	case p := <-views:
		if p.HasTranslation() || p.Book != 19 || p.Chapter != 3 || p.Target != -1 || len(p.Verses) != 0 {
			t.Errorf("published after failed switch: %+v", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("failed switch was not announced")
	}

	p, err := s.Switch(ctx, "ylt")
	if err != nil {
		t.Fatalf("Switch(ylt) failed: %v", err)
	}
	if got, want := p.TargetAddress(), canon.NewAddress(19, 3, 8); got != want {
		t.Errorf("position after recovery = %v, want %v", got, want)
	}
	if !p.HasTranslation() {
		t.Error("recovered view should carry a translation")
	}
}

func TestStoreClosedByAnotherOwner(t *testing.T) {
	s, cat := newSession(t)
	ctx := context.Background()
	if _, err := s.Start(ctx, "kjv", canon.Address{}); err != nil {
		t.Fatal(err)
	}
	s.Store().Close()

	if _, err := s.Books(); !errors.Is(err, ErrNoTranslation) {
		t.Errorf("Books() = %v, want ErrNoTranslation", err)
	}
	if _, err := s.Chapters(1); !errors.Is(err, ErrNoTranslation) {
		t.Errorf("Chapters() = %v, want ErrNoTranslation", err)
	}
	if _, err := s.Navigate(ctx, canon.Address{Book: 1, Chapter: 2}); !errors.Is(err, ErrNoTranslation) {
		t.Errorf("Navigate() = %v, want ErrNoTranslation", err)
	}
	if _, err := s.NextChapter(ctx); !errors.Is(err, ErrNoTranslation) {
		t.Errorf("NextChapter() = %v, want ErrNoTranslation", err)
	}

	// Readers racing an owner that closes and reopens the store get errors,
	// never a panic.
	kjv, _ := cat.Lookup("kjv")
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(stop)
		for i := 0; i < 50; i++ {
			s.Store().Close()
			if err := s.Store().Open(kjv); err != nil {
				t.Errorf("Open failed: %v", err)
				return
			}
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				s.Books()
				s.Chapters(1)
				s.Chapter(1, 1)
				s.Navigate(ctx, canon.Address{Book: 1, Chapter: 1})
			}
		}()
	}
	wg.Wait()
}
