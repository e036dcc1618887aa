package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	floyderrors "thoreinstein.com/floyd/pkg/errors"
)

// MaxTitleLength is the longest accepted title, in characters.
const MaxTitleLength = 256

// Draft is a generated pull request title and body awaiting user action.
type Draft struct {
	Title string
	Body  string
}

// NewDraft trims title and body and validates the title length.
// The body may be empty.
func NewDraft(title, body string) (*Draft, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, floyderrors.NewParseError("title is empty")
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return nil, floyderrors.NewParseError(fmt.Sprintf("title is %d characters, limit is %d", n, MaxTitleLength))
	}
	return &Draft{Title: title, Body: strings.TrimSpace(body)}, nil
}
