package board

import (
	"context"

	"github.com/hpungsan/stickies/internal/note"
)

// Updater commits edited content. *store.Store implements it.
type Updater interface {
	Update(ctx context.Context, id, content string) bool
}

// Session is the single edit session of a board: at most one note is being
// edited at a time, with its unsaved text held as a draft.
// The zero value has no active session.
type Session struct {
	noteID string
	draft  string
	active bool
}

// Start opens a session on n with its current content as the draft,
// abandoning any session on another note.
func (s *Session) Start(n note.Note) {
	s.noteID = n.ID
	s.draft = n.Content
	s.active = true
}

// SetDraft replaces the draft. It does nothing without an active session.
func (s *Session) SetDraft(text string) {
	if s.active {
		s.draft = text
	}
}

// Active returns the note being edited and its draft.
func (s *Session) Active() (id, draft string, ok bool) {
	return s.noteID, s.draft, s.active
}

// Editing reports whether the session is on note id.
func (s *Session) Editing(id string) bool {
	return s.active && s.noteID == id
}

// Save commits the draft through u and closes the session. A draft that is
// blank or too long is not committed and the session stays open so the
// text can be fixed. Save reports whether the draft was committed.
func (s *Session) Save(ctx context.Context, u Updater) bool {
	if !s.active || note.Validate(s.draft) != note.ProblemNone {
		return false
	}
	ok := u.Update(ctx, s.noteID, s.draft)
	s.Cancel()
	return ok
}

// Cancel discards the draft and closes the session.
func (s *Session) Cancel() {
	*s = Session{}
}
