package main

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	"github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/prefs"
	"github.com/FocuswithJustin/JuniperScripture/internal/reader"
	"github.com/FocuswithJustin/JuniperScripture/internal/store"
)

// env is an open reading session plus the preferences it started from.
type env struct {
	session   *reader.Session
	prefs     *prefs.Prefs
	prefsPath string
	view      reader.Published
}

func (e *env) Close() {
	e.session.Close()
	e.session.Store().Close()
}

func (g *Globals) catalog() (*catalog.Catalog, error) {
	return catalog.New(g.DataDir, catalog.Builtin()...)
}

func (g *Globals) prefsPath() (string, error) {
	if g.Prefs != "" {
		return g.Prefs, nil
	}
	return prefs.DefaultPath()
}

// openSession starts a session at pos, or at the remembered position when
// pos is nil. The --translation flag wins over the remembered translation.
func (g *Globals) openSession(ctx context.Context, pos *canon.Address) (*env, error) {
	cat, err := g.catalog()
	if err != nil {
		return nil, err
	}
	path, err := g.prefsPath()
	if err != nil {
		return nil, err
	}
	p, err := prefs.Load(path)
	if err != nil {
		return nil, err
	}

	id := p.Translation
	if g.Translation != "" {
		d, ok := cat.Lookup(g.Translation)
		if !ok {
			return nil, errors.NewNotFound("translation", g.Translation)
		}
		if !cat.IsAvailable(d) {
			return nil, errors.NewSourceNotFound(d.ID, cat.Path(d), nil)
		}
		id = d.ID
	}
	start := p.Position()
	if pos != nil {
		start = *pos
	}

	session := reader.New(store.New(cat))
	view, err := session.Start(ctx, id, start)
	if err != nil {
		session.Close()
		session.Store().Close()
		return nil, err
	}
	return &env{session: session, prefs: p, prefsPath: path, view: view}, nil
}

// remember persists the translation and position of view.
func (e *env) remember(view reader.Published) error {
	_, err := prefs.Update(e.prefsPath, func(p *prefs.Prefs) {
		p.Translation = view.Translation.ID
		p.SetPosition(view.TargetAddress())
	})
	return err
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseBook accepts a book name, abbreviation or canonical number.
func parseBook(s string) (int, error) {
	if id, ok := canon.LookupBook(s); ok {
		return id, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n, nil
	}
	if addr, err := canon.ParseReference(s); err == nil {
		return addr.Book, nil
	}
	return 0, errors.NewParse("book", s, "unknown book")
}
