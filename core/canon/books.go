// Package canon defines the canonical 66-book order and the verse address
// used to identify a verse independently of any translation's storage.
package canon

import "strings"

// TableVersion identifies the revision of the canonical book table.
// Bump it whenever a name or abbreviation changes.
const TableVersion = 1

// UnknownBook is the name reported for book ids outside the canonical table.
const UnknownBook = "Unknown Book"

// Testament groups books into Old and New Testament.
type Testament string

const (
	OldTestament Testament = "OT"
	NewTestament Testament = "NT"
)

// Book is one entry of the canonical book table.
type Book struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	OSIS      string    `json:"osis"`
	Testament Testament `json:"testament"`
}

// Books is the canonical book table in canonical order; Books[i].ID == i+1.
var Books = [66]Book{
	{1, "Genesis", "Gen", OldTestament},
	{2, "Exodus", "Exod", OldTestament},
	{3, "Leviticus", "Lev", OldTestament},
	{4, "Numbers", "Num", OldTestament},
	{5, "Deuteronomy", "Deut", OldTestament},
	{6, "Joshua", "Josh", OldTestament},
	{7, "Judges", "Judg", OldTestament},
	{8, "Ruth", "Ruth", OldTestament},
	{9, "1 Samuel", "1Sam", OldTestament},
	{10, "2 Samuel", "2Sam", OldTestament},
	{11, "1 Kings", "1Kgs", OldTestament},
	{12, "2 Kings", "2Kgs", OldTestament},
	{13, "1 Chronicles", "1Chr", OldTestament},
	{14, "2 Chronicles", "2Chr", OldTestament},
	{15, "Ezra", "Ezra", OldTestament},
	{16, "Nehemiah", "Neh", OldTestament},
	{17, "Esther", "Esth", OldTestament},
	{18, "Job", "Job", OldTestament},
	{19, "Psalms", "Ps", OldTestament},
	{20, "Proverbs", "Prov", OldTestament},
	{21, "Ecclesiastes", "Eccl", OldTestament},
	{22, "Song of Solomon", "Song", OldTestament},
	{23, "Isaiah", "Isa", OldTestament},
	{24, "Jeremiah", "Jer", OldTestament},
	{25, "Lamentations", "Lam", OldTestament},
	{26, "Ezekiel", "Ezek", OldTestament},
	{27, "Daniel", "Dan", OldTestament},
	{28, "Hosea", "Hos", OldTestament},
	{29, "Joel", "Joel", OldTestament},
	{30, "Amos", "Amos", OldTestament},
	{31, "Obadiah", "Obad", OldTestament},
	{32, "Jonah", "Jonah", OldTestament},
	{33, "Micah", "Mic", OldTestament},
	{34, "Nahum", "Nah", OldTestament},
	{35, "Habakkuk", "Hab", OldTestament},
	{36, "Zephaniah", "Zeph", OldTestament},
	{37, "Haggai", "Hag", OldTestament},
	{38, "Zechariah", "Zech", OldTestament},
	{39, "Malachi", "Mal", OldTestament},
	{40, "Matthew", "Matt", NewTestament},
	{41, "Mark", "Mark", NewTestament},
	{42, "Luke", "Luke", NewTestament},
	{43, "John", "John", NewTestament},
	{44, "Acts", "Acts", NewTestament},
	{45, "Romans", "Rom", NewTestament},
	{46, "1 Corinthians", "1Cor", NewTestament},
	{47, "2 Corinthians", "2Cor", NewTestament},
	{48, "Galatians", "Gal", NewTestament},
	{49, "Ephesians", "Eph", NewTestament},
	{50, "Philippians", "Phil", NewTestament},
	{51, "Colossians", "Col", NewTestament},
	{52, "1 Thessalonians", "1Thess", NewTestament},
	{53, "2 Thessalonians", "2Thess", NewTestament},
	{54, "1 Timothy", "1Tim", NewTestament},
	{55, "2 Timothy", "2Tim", NewTestament},
	{56, "Titus", "Titus", NewTestament},
	{57, "Philemon", "Phlm", NewTestament},
	{58, "Hebrews", "Heb", NewTestament},
	{59, "James", "Jas", NewTestament},
	{60, "1 Peter", "1Pet", NewTestament},
	{61, "2 Peter", "2Pet", NewTestament},
	{62, "1 John", "1John", NewTestament},
	{63, "2 John", "2John", NewTestament},
	{64, "3 John", "3John", NewTestament},
	{65, "Jude", "Jude", NewTestament},
	{66, "Revelation", "Rev", NewTestament},
}

// Common alternate spellings accepted by LookupBook.
var bookAliases = map[string]int{
	"psalm":        19,
	"songofsongs":  22,
	"canticles":    22,
	"qoheleth":     21,
	"revelations":  66,
	"apocalypse":   66,
	"phm":          57,
	"jn":           43,
	"mt":           40,
	"mk":           41,
	"lk":           42,
}

var bookIndex = func() map[string]int {
	m := make(map[string]int, len(Books)*2+len(bookAliases))
	for _, b := range Books {
		m[bookKey(b.Name)] = b.ID
		m[bookKey(b.OSIS)] = b.ID
	}
	for k, v := range bookAliases {
		m[k] = v
	}
	return m
}()

func bookKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// IsCanonical reports whether id is in the canonical 1..66 range.
func IsCanonical(id int) bool {
	return id >= 1 && id <= len(Books)
}

// BookByID returns the canonical entry for id.
func BookByID(id int) (Book, bool) {
	if !IsCanonical(id) {
		return Book{}, false
	}
	return Books[id-1], true
}

// BookName returns the canonical English name for id, or UnknownBook.
func BookName(id int) string {
	if b, ok := BookByID(id); ok {
		return b.Name
	}
	return UnknownBook
}

// NamedBook returns a Book for id, substituting UnknownBook for ids without a
// canonical entry. Used when a translation stores books outside 1..66.
func NamedBook(id int) Book {
	if b, ok := BookByID(id); ok {
		return b
	}
	return Book{ID: id, Name: UnknownBook}
}

// LookupBook resolves a full name, OSIS id or common alias (case and
// whitespace insensitive) to a book id.
func LookupBook(name string) (int, bool) {
	id, ok := bookIndex[bookKey(name)]
	return id, ok
}
