package display

import (
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultWidth = 80

var titleCaser = cases.Title(language.English)

// Wrap word-wraps text to DefaultWidth for plain-text clients.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}

// TitleCase normalizes a category or difficulty label for display
// (e.g. "ancient history" -> "Ancient History").
func TitleCase(s string) string {
	return titleCaser.String(s)
}
