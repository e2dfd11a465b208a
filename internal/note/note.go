package note

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxChars is the maximum note length, counted in runes.
const MaxChars = 500

// Note is a single sticky note.
type Note struct {
	// ID is an opaque identifier, unique within the collection.
	// New notes get a ULID; notes written by older clients may carry any string.
	ID string `json:"id"`

	// Content is the note text as submitted (not trimmed).
	Content string `json:"content"`

	// CreatedAt never changes after creation.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt starts equal to CreatedAt and moves forward on every edit.
	UpdatedAt time.Time `json:"updatedAt"`

	Color Color `json:"color"`
}

// Edited reports whether the note was changed after it was created.
func (n Note) Edited() bool {
	return !n.UpdatedAt.Equal(n.CreatedAt)
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// IsBlank reports whether text is empty after trimming whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Problem describes why a text cannot become note content.
type Problem int

const (
	ProblemNone Problem = iota
	ProblemEmpty
	ProblemTooLarge
)

// Validate checks text against the content rules: non-blank after trimming
// and at most MaxChars runes.
func Validate(text string) Problem {
	if IsBlank(text) {
		return ProblemEmpty
	}
	if CountChars(text) > MaxChars {
		return ProblemTooLarge
	}
	return ProblemNone
}
