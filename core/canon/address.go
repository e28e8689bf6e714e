package canon

import (
	"fmt"
	"strconv"
)

// Address identifies a verse by (book, chapter, verse). It is the only verse
// identity that is stable across translations: row ids assigned by a
// translation's storage are not. Anything persisted or carried across a
// translation switch (notes, highlights, saved verses, navigation targets)
// must be keyed by Address.
//
// Verse is 0 when the address names a whole chapter.
type Address struct {
	Book    int `json:"book" yaml:"book"`
	Chapter int `json:"chapter" yaml:"chapter"`
	Verse   int `json:"verse,omitempty" yaml:"verse,omitempty"`
}

// NewAddress returns the address of a single verse.
func NewAddress(book, chapter, verse int) Address {
	return Address{Book: book, Chapter: chapter, Verse: verse}
}

// Valid reports whether a names a canonical book and a positive chapter and
// verse.
func (a Address) Valid() bool {
	return IsCanonical(a.Book) && a.Chapter >= 1 && a.Verse >= 1
}

// ValidChapter reports whether a names a canonical book and positive chapter,
// ignoring the verse.
func (a Address) ValidChapter() bool {
	return IsCanonical(a.Book) && a.Chapter >= 1
}

// IsChapter reports whether a refers to a whole chapter.
func (a Address) IsChapter() bool {
	return a.Verse == 0
}

// ChapterOf returns a with the verse cleared.
func (a Address) ChapterOf() Address {
	return Address{Book: a.Book, Chapter: a.Chapter}
}

// Compare orders addresses canonically: by book, then chapter, then verse.
// It returns -1, 0 or +1.
func (a Address) Compare(b Address) int {
	switch {
	case a.Book != b.Book:
		return sign(a.Book - b.Book)
	case a.Chapter != b.Chapter:
		return sign(a.Chapter - b.Chapter)
	default:
		return sign(a.Verse - b.Verse)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// String formats a as a display reference, e.g. "Genesis 1:1" or "Psalms 23".
func (a Address) String() string {
	s := BookName(a.Book) + " " + strconv.Itoa(a.Chapter)
	if a.Verse > 0 {
		s += ":" + strconv.Itoa(a.Verse)
	}
	return s
}

// OSIS formats a as an OSIS reference, e.g. "Gen.1.1". Books outside the
// canonical table are written as "BookN".
func (a Address) OSIS() string {
	book := fmt.Sprintf("Book%d", a.Book)
	if b, ok := BookByID(a.Book); ok {
		book = b.OSIS
	}
	s := book + "." + strconv.Itoa(a.Chapter)
	if a.Verse > 0 {
		s += "." + strconv.Itoa(a.Verse)
	}
	return s
}
