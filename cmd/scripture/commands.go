package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	"github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/internal/archive"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/logging"
	"github.com/FocuswithJustin/JuniperScripture/internal/prefs"
	"github.com/FocuswithJustin/JuniperScripture/internal/reader"
	"github.com/FocuswithJustin/JuniperScripture/internal/validation"
)

// TranslationsCmd lists the catalog.
type TranslationsCmd struct{}

type translationRow struct {
	catalog.Descriptor
	Available bool `json:"available"`
	Default   bool `json:"default"`
}

func (c *TranslationsCmd) Run(g *Globals, out io.Writer) error {
	cat, err := g.catalog()
	if err != nil {
		return err
	}
	path, err := g.prefsPath()
	if err != nil {
		return err
	}
	p, err := prefs.Load(path)
	if err != nil {
		return err
	}
	def := cat.ResolveDefault(p.Translation)

	var rows []translationRow
	for _, d := range cat.All() {
		rows = append(rows, translationRow{
			Descriptor: d,
			Available:  cat.IsAvailable(d),
			Default:    d.ID == def.ID,
		})
	}
	if g.JSON {
		return printJSON(out, rows)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS")
	for _, r := range rows {
		status := "missing"
		if r.Available {
			status = "installed"
		}
		marker := " "
		if r.Default {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\n", marker, r.ID, r.Name, status)
	}
	return tw.Flush()
}

// BooksCmd lists the books present in a translation.
type BooksCmd struct{}

func (c *BooksCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	e, err := g.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	books, err := e.session.Books()
	if err != nil {
		return err
	}
	if g.JSON {
		return printJSON(out, books)
	}
	for _, b := range books {
		fmt.Fprintf(out, "%2d  %s\n", b.ID, b.Name)
	}
	return nil
}

// ChaptersCmd lists the chapters of one book.
type ChaptersCmd struct {
	Book string `arg:"" help:"Book name, abbreviation or number"`
}

func (c *ChaptersCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	book, err := parseBook(c.Book)
	if err != nil {
		return err
	}
	e, err := g.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	chapters, err := e.session.Chapters(book)
	if err != nil {
		return err
	}
	if g.JSON {
		return printJSON(out, chapters)
	}
	if len(chapters) == 0 {
		fmt.Fprintf(out, "%s: no chapters\n", canon.BookName(book))
		return nil
	}
	fmt.Fprintf(out, "%s:", canon.BookName(book))
	for _, ch := range chapters {
		fmt.Fprintf(out, " %d", ch)
	}
	fmt.Fprintln(out)
	return nil
}

// ReadCmd prints a chapter and remembers the position.
type ReadCmd struct {
	Ref    string `arg:"" optional:"" help:"Reference such as \"John 3:16\" (default: last position)"`
	Next   bool   `help:"Read the chapter after the reference" xor:"step"`
	Prev   bool   `help:"Read the chapter before the reference" xor:"step"`
	Plain  bool   `help:"Strip emphasis markers"`
	NoSave bool   `name:"no-save" help:"Do not remember the position"`
}

func (c *ReadCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	var pos *canon.Address
	if c.Ref != "" {
		addr, err := canon.ParseReference(c.Ref)
		if err != nil {
			return err
		}
		pos = &addr
	}

	e, err := g.openSession(ctx, pos)
	if err != nil {
		return err
	}
	defer e.Close()

	view := e.view
	switch {
	case c.Next:
		view, err = e.session.NextChapter(ctx)
	case c.Prev:
		view, err = e.session.PrevChapter(ctx)
	}
	if err != nil {
		return err
	}

	if !c.NoSave {
		if err := e.remember(view); err != nil {
			logging.Warn("prefs_save_failed", "path", e.prefsPath, "error", err.Error())
		}
	}

	if g.JSON {
		return printJSON(out, view)
	}
	printChapter(out, view, c.Plain, pos != nil && pos.Verse > 0 && !c.Next && !c.Prev)
	return nil
}

func printChapter(out io.Writer, view reader.Published, plain, mark bool) {
	fmt.Fprintf(out, "%s %d (%s)\n\n", canon.BookName(view.Book), view.Chapter, view.Translation.Abbreviation)
	if len(view.Verses) == 0 {
		fmt.Fprintln(out, "  (no verses)")
		return
	}
	for i, v := range view.Verses {
		text := v.DisplayText()
		if plain {
			text = v.PlainText()
		}
		marker := " "
		if mark && i == view.Target {
			marker = ">"
		}
		fmt.Fprintf(out, "%s%3d  %s\n", marker, v.Verse, text)
	}
}

// RefCmd parses a reference without touching any translation.
type RefCmd struct {
	Ref string `arg:"" help:"Reference to parse"`
}

func (c *RefCmd) Run(g *Globals, out io.Writer) error {
	addr, err := canon.ParseReference(c.Ref)
	if err != nil {
		return err
	}
	if g.JSON {
		return printJSON(out, struct {
			canon.Address
			Reference string `json:"reference"`
			OSIS      string `json:"osis"`
		}{addr, addr.String(), addr.OSIS()})
	}
	fmt.Fprintf(out, "%s\t%s\n", addr, addr.OSIS())
	return nil
}

// VerifyCmd checks installed translation sources.
type VerifyCmd struct {
	IDs []string `arg:"" optional:"" name:"id" help:"Translations to check (default: all installed)"`
}

func (c *VerifyCmd) Run(g *Globals, out io.Writer) error {
	cat, err := g.catalog()
	if err != nil {
		return err
	}

	targets := cat.Available()
	if len(c.IDs) > 0 {
		targets = nil
		for _, id := range c.IDs {
			d, ok := cat.Lookup(id)
			if !ok {
				return errors.NewNotFound("translation", id)
			}
			targets = append(targets, d)
		}
	}

	var reports []*validation.Report
	failed := 0
	for _, d := range targets {
		report, err := validation.CheckTranslation(cat.Path(d), d)
		if err != nil {
			return err
		}
		if err := cat.Verify(d); err != nil {
			report.Issues = append(report.Issues, validation.Issue{Kind: validation.IssueChecksum, Detail: err.Error()})
		}
		if !report.OK() {
			failed++
		}
		reports = append(reports, report)
	}

	if g.JSON {
		if err := printJSON(out, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			status := "ok"
			if !r.OK() {
				status = fmt.Sprintf("%d issue(s)", len(r.Issues))
			}
			fmt.Fprintf(out, "%s: %s (%d rows, %d books, %d chapters, blake3 %s)\n",
				r.Translation, status, r.Rows, r.Books, r.Chapters, r.Checksum)
			for _, issue := range r.Issues {
				fmt.Fprintf(out, "  %s\n", issue)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d translation(s) failed verification", failed, len(reports))
	}
	return nil
}

// InstallCmd unpacks a bundle into the data directory.
type InstallCmd struct {
	Bundle string `arg:"" type:"existingfile" help:"Bundle (.tar.xz, .tar.gz, .xz or a bare database)"`
	ID     string `arg:"" help:"Translation id the bundle holds"`
}

func (c *InstallCmd) Run(g *Globals, out io.Writer) error {
	cat, err := g.catalog()
	if err != nil {
		return err
	}
	d, ok := cat.Lookup(c.ID)
	if !ok {
		return errors.NewNotFound("translation", c.ID)
	}
	res, err := archive.InstallBundle(c.Bundle, cat.DataDir(), d)
	if err != nil {
		return err
	}
	if g.JSON {
		return printJSON(out, res)
	}
	fmt.Fprintf(out, "installed %s from %s bundle: %s (%d rows)\n", d.ID, res.Bundle, res.Path, res.Report.Rows)
	return nil
}

// PackCmd compresses a translation source for distribution.
type PackCmd struct {
	Source string `arg:"" type:"existingfile" help:"Translation database"`
	Output string `arg:"" help:"Bundle to write (.tar.xz, .tar.gz, .tgz or .xz)"`
}

func (c *PackCmd) Run(out io.Writer) error {
	if err := archive.Pack(c.Source, c.Output); err != nil {
		return err
	}
	fmt.Fprintf(out, "packed %s -> %s\n", c.Source, c.Output)
	return nil
}
