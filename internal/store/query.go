package store

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
)

// queries holds the read statements for one translation schema. All
// translations share the same shapes; only the table and book column differ.
type queries struct {
	verses   string
	chapters string
	books    string
	probe    string
	all      string
}

// buildQueries renders the statement set for d. d must have passed
// Validate, so its identifiers are safe to quote.
func buildQueries(d catalog.Descriptor) queries {
	table := quoteIdent(d.Table)
	book := quoteIdent(d.BookColumn)
	return queries{
		verses: fmt.Sprintf(
			"SELECT id, %[2]s, chapter, verse, text FROM %[1]s WHERE %[2]s = ? AND chapter = ? ORDER BY verse ASC",
			table, book),
		chapters: fmt.Sprintf(
			"SELECT DISTINCT chapter FROM %[1]s WHERE %[2]s = ? ORDER BY chapter ASC",
			table, book),
		books: fmt.Sprintf(
			"SELECT DISTINCT %[2]s FROM %[1]s ORDER BY %[2]s ASC",
			table, book),
		probe: fmt.Sprintf(
			"SELECT id, %[2]s, chapter, verse, text FROM %[1]s LIMIT 1",
			table, book),
		all: fmt.Sprintf(
			"SELECT id, %[2]s, chapter, verse, text FROM %[1]s ORDER BY %[2]s, chapter, verse, id",
			table, book),
	}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
