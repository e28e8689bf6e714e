package validation

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/store"
)

// IssueKind classifies a data-quality problem in a translation source.
type IssueKind string

const (
	IssueDuplicate    IssueKind = "duplicate_verse"
	IssueBookRange    IssueKind = "book_out_of_range"
	IssueChapterRange IssueKind = "chapter_out_of_range"
	IssueVerseRange   IssueKind = "verse_out_of_range"
	IssueEmptyText    IssueKind = "empty_text"
	IssueChecksum     IssueKind = "checksum_mismatch"
)

// Issue is one problem found in a row.
type Issue struct {
	Kind    IssueKind     `json:"kind"`
	RowID   int64         `json:"row_id"`
	Address canon.Address `json:"address"`
	Detail  string        `json:"detail,omitempty"`
}

func (i Issue) String() string {
	s := string(i.Kind)
	if i.RowID != 0 {
		s += fmt.Sprintf(" at %d:%d:%d (row %d)", i.Address.Book, i.Address.Chapter, i.Address.Verse, i.RowID)
	}
	if i.Detail != "" {
		s += ": " + i.Detail
	}
	return s
}

// Report summarizes a translation source.
type Report struct {
	Translation string  `json:"translation"`
	Path        string  `json:"path"`
	Checksum    string  `json:"checksum"`
	Rows        int     `json:"rows"`
	Books       int     `json:"books"`
	Chapters    int     `json:"chapters"`
	Issues      []Issue `json:"issues"`
}

// OK reports whether no issues were found.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// CheckTranslation opens the source at path with d's schema and reports
// rows the store would serve badly: repeated (book, chapter, verse)
// addresses, book ids outside the canon, chapter or verse numbers below 1,
// and empty text. Open failures are returned as the store reports them.
func CheckTranslation(path string, d catalog.Descriptor) (*Report, error) {
	sum, err := catalog.FingerprintFile(path)
	if err != nil {
		return nil, err
	}

	h, err := store.Open(path, d)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	r := &Report{Translation: d.ID, Path: path, Checksum: sum, Issues: []Issue{}}
	var prev canon.Address
	var prevBook, prevChapter int
	first := true

	err = h.Scan(func(v store.Verse) error {
		r.Rows++
		addr := v.Address()
		add := func(kind IssueKind, detail string) {
			r.Issues = append(r.Issues, Issue{Kind: kind, RowID: v.RowID, Address: addr, Detail: detail})
		}

		if !first && addr == prev {
			add(IssueDuplicate, "same address as the previous row")
		}
		if first || v.Book != prevBook {
			r.Books++
			r.Chapters++
		} else if v.Chapter != prevChapter {
			r.Chapters++
		}

		if !canon.IsCanonical(v.Book) {
			add(IssueBookRange, fmt.Sprintf("book %d is not in 1..%d", v.Book, len(canon.Books)))
		}
		if v.Chapter < 1 {
			add(IssueChapterRange, fmt.Sprintf("chapter %d", v.Chapter))
		}
		if v.Verse < 1 {
			add(IssueVerseRange, fmt.Sprintf("verse %d", v.Verse))
		}
		if strings.TrimSpace(v.PlainText()) == "" {
			add(IssueEmptyText, "")
		}

		prev, prevBook, prevChapter, first = addr, v.Book, v.Chapter, false
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
