package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/stickies/internal/board"
	"github.com/hpungsan/stickies/internal/config"
	"github.com/hpungsan/stickies/internal/errors"
	"github.com/hpungsan/stickies/internal/note"
)

// maxFormBytes caps request bodies. A note is at most 500 runes, so 4 bytes
// each plus form encoding fits comfortably.
const maxFormBytes = 64 << 10

// Handlers contains HTTP route handlers for the board.
type Handlers struct {
	board    *board.Board
	cfg      *config.Config
	renderer *Renderer
	logger   *zap.Logger
}

// cardJSON is the JSON view of a card.
type cardJSON struct {
	ID      string     `json:"id"`
	Content string     `json:"content"`
	Color   note.Color `json:"color"`
	Created string     `json:"created"`
	Edited  string     `json:"edited,omitempty"`
	Chars   int        `json:"chars"`
	Editing bool       `json:"editing,omitempty"`
}

func toCardJSON(c board.Card) cardJSON {
	return cardJSON{
		ID:      c.ID,
		Content: c.Content,
		Color:   c.Color,
		Created: c.Created,
		Edited:  c.Edited,
		Chars:   c.Chars,
		Editing: c.Editing,
	}
}

// HandleBoard handles GET /notes.
func (h *Handlers) HandleBoard(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		cards := h.board.Cards()
		items := make([]cardJSON, len(cards))
		for i, c := range cards {
			items[i] = toCardJSON(c)
		}
		renderJSON(w, http.StatusOK, map[string]any{"count": len(items), "notes": items})
		return
	}
	h.renderer.renderPage(w, r, "board", h.boardData())
}

// HandleAdd handles POST /notes.
func (h *Handlers) HandleAdd(w http.ResponseWriter, r *http.Request) {
	content, err := h.formContent(w, r)
	if err != nil {
		h.renderer.renderError(w, r, h.messages(), err)
		return
	}

	n, ok := h.board.Add(r.Context(), content)
	if !ok {
		h.renderer.renderError(w, r, h.messages(), errors.NewInternal(fmt.Errorf("note was not added")))
		return
	}

	if wantsJSON(r) {
		c, _ := h.board.Card(n.ID)
		renderJSON(w, http.StatusCreated, toCardJSON(c))
		return
	}
	h.respondBoard(w, r)
}

// HandleEdit handles POST /notes/{id}/edit: opens the edit session.
func (h *Handlers) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.board.StartEdit(id) {
		h.renderer.renderError(w, r, h.messages(), errors.NewNotFound(id))
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"editing": true, "id": id})
		return
	}
	h.respondBoard(w, r)
}

// HandleSave handles POST /notes/{id}/save. An invalid draft leaves the
// session open.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	content, err := h.formContent(w, r)
	if err != nil {
		if editing, _, ok := h.board.Editing(); ok && editing == id && !errors.Is(err, errors.ErrInvalidRequest) {
			h.board.SetDraft(r.PostFormValue("content"))
		}
		h.renderer.renderError(w, r, h.messages(), err)
		return
	}

	if editing, _, ok := h.board.Editing(); !ok || editing != id {
		if !h.board.StartEdit(id) {
			h.renderer.renderError(w, r, h.messages(), errors.NewNotFound(id))
			return
		}
	}
	h.board.SetDraft(content)
	if !h.board.SaveEdit(r.Context()) {
		// The note was deleted between StartEdit and Save.
		h.board.CancelEdit()
		h.renderer.renderError(w, r, h.messages(), errors.NewNotFound(id))
		return
	}

	if wantsJSON(r) {
		c, _ := h.board.Card(id)
		renderJSON(w, http.StatusOK, toCardJSON(c))
		return
	}
	h.respondBoard(w, r)
}

// HandleCancel handles POST /notes/{id}/cancel.
func (h *Handlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if editing, _, ok := h.board.Editing(); ok && editing == id {
		h.board.CancelEdit()
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"editing": false, "id": id})
		return
	}
	h.respondBoard(w, r)
}

// HandleDelete handles POST /notes/{id}/delete and DELETE /notes/{id}.
// Deleting an unknown id is a no-op.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted := h.board.Delete(r.Context(), id)
	if wantsJSON(r) || r.Method == http.MethodDelete && !isHTMX(r) {
		renderJSON(w, http.StatusOK, map[string]any{"deleted": deleted, "id": id})
		return
	}
	h.respondBoard(w, r)
}

// HandleSwipe handles POST /notes/{id}/swipe with the released drag
// distance dx. The response is sent after the feedback delay, once the
// action has been applied.
func (h *Handlers) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	dx, err := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("dx")), 64)
	if err != nil {
		h.renderer.renderError(w, r, h.messages(), errors.NewInvalidRequest("dx must be a number"))
		return
	}

	action, err := h.board.Swipe(r.Context(), id, dx)
	if err != nil {
		h.renderer.renderError(w, r, h.messages(), err)
		return
	}
	h.logger.Debug("swipe",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("id", id),
		zap.Float64("dx", dx),
		zap.Stringer("action", action))

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"action": action.String(), "id": id})
		return
	}
	h.respondBoard(w, r)
}

// formContent reads and validates the "content" field.
func (h *Handlers) formContent(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return "", errors.NewInvalidRequest("invalid form body")
	}
	content := r.PostFormValue("content")
	switch note.Validate(content) {
	case note.ProblemEmpty:
		return "", errors.NewEmptyContent()
	case note.ProblemTooLarge:
		return "", errors.NewNoteTooLarge(note.MaxChars, note.CountChars(content))
	}
	return content, nil
}

// respondBoard answers a mutation: htmx gets the re-rendered board block,
// plain form posts are redirected back to the board.
func (h *Handlers) respondBoard(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		h.renderer.renderBlock(w, http.StatusOK, "board", "board", h.boardData())
		return
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

func (h *Handlers) messages() board.Messages {
	return h.board.Locale().Messages()
}

func (h *Handlers) boardData() BoardPageData {
	m := h.messages()
	return BoardPageData{
		PageData: PageData{
			Title:   m.Title,
			Version: h.renderer.version,
			Lang:    string(h.board.Locale()),
			M:       m,
		},
		Cards:     h.board.Cards(),
		Count:     h.board.Len(),
		MaxChars:  note.MaxChars,
		Threshold: h.cfg.SwipeThresholdPx,
		DelayMs:   int(h.board.Delay().Milliseconds()),
	}
}
