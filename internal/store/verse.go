package store

import (
	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	"github.com/FocuswithJustin/JuniperScripture/core/textnorm"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
)

// Verse is one row of a translation. RowID is local to the translation it
// was read from and must not be persisted or compared across translations;
// use Address for that.
type Verse struct {
	RowID   int64  `json:"row_id"`
	Book    int    `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// Address returns the translation-independent identity of v.
func (v Verse) Address() canon.Address {
	return canon.Address{Book: v.Book, Chapter: v.Chapter, Verse: v.Verse}
}

// DisplayText returns the normalized display text of v.
func (v Verse) DisplayText() string {
	return textnorm.Normalize(v.Text)
}

// PlainText returns the normalized note-taking text of v.
func (v Verse) PlainText() string {
	return textnorm.Plain(v.Text)
}

// View is one chapter of one translation, read under a single lock so the
// translation, position and verses always belong together.
type View struct {
	Translation catalog.Descriptor `json:"translation"`
	Book        int                `json:"book"`
	Chapter     int                `json:"chapter"`
	Verses      []Verse            `json:"verses"`
}

// Address returns the chapter address of the view.
func (v View) Address() canon.Address {
	return canon.Address{Book: v.Book, Chapter: v.Chapter}
}

// IndexOf returns the position of verse number n in verses, or -1.
func IndexOf(verses []Verse, n int) int {
	for i, v := range verses {
		if v.Verse == n {
			return i
		}
	}
	return -1
}
