package tui

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hpungsan/stickies/internal/board"
	"github.com/hpungsan/stickies/internal/note"
)

// headerLines is the height of the header above the card grid.
const headerLines = 4

type mode int

const (
	modeBrowse mode = iota
	modeCompose
	modeEdit
)

// settleMsg fires when the feedback delay of a released swipe ends.
type settleMsg struct {
	id string
}

type drag struct {
	id     string
	startX int
}

// Model is the bubbletea model of the terminal board.
type Model struct {
	ctx    context.Context
	board  *board.Board
	styles Styles
	msgs   board.Messages
	now    func() time.Time

	cards    []board.Card
	selected int
	mode     mode
	composer textarea.Model
	editor   textarea.Model
	drag     *drag
	status   string

	width  int
	height int
}

// New creates the board model. Drag distances are fed to the board's
// gesture tracker in cells.
func New(ctx context.Context, b *board.Board) Model {
	msgs := b.Locale().Messages()

	composer := newTextarea()
	composer.Placeholder = msgs.Placeholder
	editor := newTextarea()

	m := Model{
		ctx:      ctx,
		board:    b,
		styles:   DefaultStyles(),
		msgs:     msgs,
		now:      time.Now,
		composer: composer,
		editor:   editor,
	}
	m.refresh()
	return m
}

func newTextarea() textarea.Model {
	ta := textarea.New()
	ta.CharLimit = note.MaxChars
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(4)
	return ta
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := min(max(20, msg.Width-4), 80)
		m.composer.SetWidth(w)
		m.editor.SetWidth(w)
		return m, nil

	case settleMsg:
		return m.settle(msg.id)

	case tea.MouseMsg:
		if m.mode != modeBrowse {
			return m, nil
		}
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeCompose:
			return m.handleComposeKey(msg)
		case modeEdit:
			return m.handleEditKey(msg)
		default:
			return m.handleBrowseKey(msg)
		}
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	cols := columns(m.width)
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n":
		m.mode = modeCompose
		return m, m.composer.Focus()
	case "e", "enter":
		if id, ok := m.selectedID(); ok {
			return m.startEdit(id)
		}
	case "d", "x", "delete":
		if id, ok := m.selectedID(); ok {
			m.board.Delete(m.ctx, id)
			m.refresh()
		}
	case "left", "h":
		m.moveSelection(-1)
	case "right", "l":
		m.moveSelection(1)
	case "up", "k":
		m.moveSelection(-cols)
	case "down", "j":
		m.moveSelection(cols)
	}
	return m, nil
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.composer.Reset()
		m.composer.Blur()
		m.mode = modeBrowse
		m.status = ""
		return m, nil
	case "ctrl+s":
		text := m.composer.Value()
		if p := note.Validate(text); p != note.ProblemNone {
			m.status = problemText(p, text)
			return m, nil
		}
		m.board.Add(m.ctx, text)
		m.composer.Reset()
		m.composer.Blur()
		m.mode = modeBrowse
		m.status = ""
		m.selected = 0
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.board.CancelEdit()
		m.editor.Blur()
		m.mode = modeBrowse
		m.status = ""
		m.refresh()
		return m, nil
	case "ctrl+s":
		text := m.editor.Value()
		m.board.SetDraft(text)
		if !m.board.SaveEdit(m.ctx) {
			if p := note.Validate(text); p != note.ProblemNone {
				m.status = problemText(p, text)
				return m, nil
			}
			// The note is gone; nothing left to edit.
			m.board.CancelEdit()
		}
		m.editor.Blur()
		m.mode = modeBrowse
		m.status = ""
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.board.SetDraft(m.editor.Value())
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		idx, ok := m.cardAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		id := m.cards[idx].ID
		m.selected = idx
		if err := m.board.Tracker().Begin(id); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.drag = &drag{id: id, startX: msg.X}
		m.syncGesture(id)

	case tea.MouseActionMotion:
		if m.drag == nil {
			return m, nil
		}
		m.board.Tracker().Move(m.drag.id, float64(msg.X-m.drag.startX))
		m.syncGesture(m.drag.id)

	case tea.MouseActionRelease:
		if m.drag == nil {
			return m, nil
		}
		id := m.drag.id
		m.drag = nil
		action := m.board.Tracker().Release(id)
		m.syncGesture(id)
		if action == board.ActionNone {
			return m, nil
		}
		return m, tea.Tick(m.board.Delay(), func(time.Time) tea.Msg {
			return settleMsg{id: id}
		})
	}
	return m, nil
}

func (m Model) settle(id string) (tea.Model, tea.Cmd) {
	action := m.board.Tracker().Settle(id)
	if action == board.ActionEdit && m.mode == modeBrowse {
		return m.startEdit(id)
	}
	if action == board.ActionDelete {
		m.board.Apply(m.ctx, id, action)
	}
	m.refresh()
	return m, nil
}

func (m Model) startEdit(id string) (tea.Model, tea.Cmd) {
	if !m.board.StartEdit(id) {
		m.refresh()
		return m, nil
	}
	_, draft, _ := m.board.Editing()
	m.editor.SetValue(draft)
	m.mode = modeEdit
	m.status = ""
	m.refresh()
	return m, m.editor.Focus()
}

// refresh rebuilds the card views. Rotations are rolled again, so it runs
// only when the notes change, not on every frame.
func (m *Model) refresh() {
	m.cards = m.board.Cards()
	if m.selected >= len(m.cards) {
		m.selected = len(m.cards) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// syncGesture copies the tracker state of id into its card.
func (m *Model) syncGesture(id string) {
	phase, offset := m.board.Tracker().State(id)
	for i := range m.cards {
		if m.cards[i].ID == id {
			m.cards[i].Phase, m.cards[i].Offset = phase, offset
			return
		}
	}
}

func (m *Model) moveSelection(delta int) {
	if len(m.cards) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.cards)-1)
}

func (m Model) selectedID() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.cards) {
		return "", false
	}
	return m.cards[m.selected].ID, true
}

// cardAt maps a screen cell onto the index of the card drawn there.
func (m Model) cardAt(x, y int) (int, bool) {
	if y < headerLines || x < 0 {
		return 0, false
	}
	w, h := cellSize()
	cols := columns(m.width)
	col, row := x/w, (y-headerLines)/h
	if col >= cols {
		return 0, false
	}
	idx := row*cols + col
	if idx >= len(m.cards) {
		return 0, false
	}
	return idx, true
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.msgs.Title))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(m.msgs.Subtitle + " · " + m.board.Locale().LongDate(m.now())))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Heading.Render(m.msgs.HeadingFor(len(m.cards))))
	b.WriteString("\n")

	if len(m.cards) == 0 {
		b.WriteString(m.styles.Muted.Render(m.msgs.Empty + " " + m.msgs.EmptyHint))
		b.WriteString("\n")
	} else {
		sel := m.selected
		if m.mode != modeBrowse {
			sel = -1
		}
		b.WriteString(RenderCards(m.cards, m.msgs, m.width, sel))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeCompose:
		b.WriteString("\n" + m.styles.Heading.Render(m.msgs.AddNote) + "\n")
		b.WriteString(m.composer.View() + "\n")
		b.WriteString(m.counter(m.composer.Value()))
		b.WriteString(m.styles.Help.Render("  ctrl+s " + strings.ToLower(m.msgs.Save) + " · esc " + strings.ToLower(m.msgs.Cancel)))
		b.WriteString("\n")
	case modeEdit:
		b.WriteString("\n" + m.styles.Heading.Render(m.msgs.Edit) + "\n")
		b.WriteString(m.editor.View() + "\n")
		b.WriteString(m.counter(m.editor.Value()))
		b.WriteString(m.styles.Help.Render("  ctrl+s " + strings.ToLower(m.msgs.Save) + " · esc " + strings.ToLower(m.msgs.Cancel)))
		b.WriteString("\n")
	default:
		b.WriteString("\n" + m.styles.Help.Render(m.msgs.SwipeHint+" · n new · e edit · d delete · ←↑↓→ move · q quit"))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(m.styles.Error.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

// counter renders "n/500", highlighted once the limit is passed.
func (m Model) counter(text string) string {
	n := note.CountChars(text)
	s := fmt.Sprintf("%d/%d", n, note.MaxChars)
	if n > note.MaxChars {
		return m.styles.Over.Render(s)
	}
	return m.styles.Counter.Render(s)
}

func problemText(p note.Problem, text string) string {
	switch p {
	case note.ProblemEmpty:
		return "note content must not be empty"
	case note.ProblemTooLarge:
		return fmt.Sprintf("note exceeds maximum size: %d chars (max %d)", note.CountChars(text), note.MaxChars)
	}
	return ""
}

// Run starts the terminal board and blocks until the user quits or ctx ends.
func Run(ctx context.Context, b *board.Board, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := tea.NewProgram(New(ctx, b),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	logger.Debug("terminal board started", zap.Int("notes", b.Len()))
	_, err := p.Run()
	if err != nil && stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	logger.Debug("terminal board stopped", zap.Error(err))
	if err != nil {
		return fmt.Errorf("run terminal board: %w", err)
	}
	return nil
}
