package canon

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/JuniperScripture/core/errors"
)

// refGrammar accepts OSIS and display references:
// "Gen.1.1", "1John.3.16", "Genesis 1:1", "1 John 3:16", "Song of Solomon 2".
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Prefix  string       `@Int?`
	Words   []string     `@Word+`
	Chapter *chapterPart `( "."? @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter int  `@Int`
	Verse   *int `( ( ":" | "." ) @Int )?`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Word", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[.:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// ParseReference parses a verse or chapter reference into an Address.
// A reference without a chapter resolves to chapter 1; without a verse the
// Address has Verse 0.
func ParseReference(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, errors.NewParse("reference", s, "empty reference")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		pe := errors.NewParse("reference", s, "invalid format")
		pe.Err = err
		return Address{}, pe
	}

	name := strings.Join(parsed.Words, " ")
	if parsed.Prefix != "" {
		name = parsed.Prefix + " " + name
	}
	book, ok := LookupBook(name)
	if !ok {
		return Address{}, errors.NewParse("reference", s, "unknown book "+name)
	}

	addr := Address{Book: book, Chapter: 1}
	if parsed.Chapter != nil {
		addr.Chapter = parsed.Chapter.Chapter
		if parsed.Chapter.Verse != nil {
			addr.Verse = *parsed.Chapter.Verse
		}
	}
	if addr.Chapter < 1 {
		return Address{}, errors.NewParse("reference", s, "chapter must be positive")
	}
	if parsed.Chapter != nil && parsed.Chapter.Verse != nil && addr.Verse < 1 {
		return Address{}, errors.NewParse("reference", s, "verse must be positive")
	}
	return addr, nil
}
