// Package tui is the terminal board: sticky-note cards rendered with
// lipgloss, a textarea composer and mouse-drag swipe gestures.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hpungsan/stickies/internal/board"
	"github.com/hpungsan/stickies/internal/note"
)

var (
	Ink     = lipgloss.Color("#3b3b3b")
	Muted   = lipgloss.Color("#8a8a8a")
	Accent  = lipgloss.Color("#facc15")
	EditHue = lipgloss.Color("#3b82f6")
	Danger  = lipgloss.Color("#ef4444")
)

// paper maps each note color onto its card background.
var paper = map[note.Color]lipgloss.Color{
	note.Yellow: lipgloss.Color("#fef08a"),
	note.Pink:   lipgloss.Color("#fbcfe8"),
	note.Blue:   lipgloss.Color("#bfdbfe"),
	note.Green:  lipgloss.Color("#bbf7d0"),
	note.Purple: lipgloss.Color("#e9d5ff"),
}

// Card geometry, in cells, excluding border.
const (
	cardWidth  = 26
	cardHeight = 7
)

// Styles holds the board styles.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Heading  lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Counter  lipgloss.Style
	Over     lipgloss.Style
}

// DefaultStyles returns the board styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Subtitle: lipgloss.NewStyle().Italic(true).Foreground(Muted),
		Heading:  lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(Muted),
		Error:    lipgloss.NewStyle().Foreground(Danger).Bold(true),
		Help:     lipgloss.NewStyle().Foreground(Muted),
		Counter:  lipgloss.NewStyle().Foreground(Muted),
		Over:     lipgloss.NewStyle().Foreground(Danger).Bold(true),
	}
}

// cardStyle is the frame of one card. The rotation has no terminal
// equivalent, so its sign shifts the card by one cell inside its slot.
func cardStyle(c board.Card, selected bool) lipgloss.Style {
	bg, ok := paper[c.Color]
	if !ok {
		bg = paper[note.Yellow]
	}
	border := lipgloss.NormalBorder()
	edge := lipgloss.TerminalColor(Muted)
	if selected {
		border = lipgloss.ThickBorder()
		edge = Ink
	}
	switch c.Phase {
	case board.PhaseArmedLeft:
		edge = EditHue
	case board.PhaseArmedRight:
		edge = Danger
	case board.PhasePending:
		border = lipgloss.DoubleBorder()
	}
	if c.Editing {
		border = lipgloss.DoubleBorder()
		edge = EditHue
	}

	left, right := 0, 1
	if c.Rotation > 0 {
		left, right = 1, 0
	}
	return lipgloss.NewStyle().
		Width(cardWidth).
		Height(cardHeight).
		Padding(0, 1).
		Background(bg).
		Foreground(Ink).
		Border(border).
		BorderForeground(edge).
		MarginLeft(left).
		MarginRight(right)
}

// RenderCard renders one card: the content, clipped to the card, above the
// created and edited stamps.
func RenderCard(c board.Card, m board.Messages, selected bool) string {
	inner := cardWidth - 2
	meta := []string{m.Created + ": " + c.Created}
	if c.Edited != "" {
		meta = append(meta, m.Edited+": "+c.Edited)
	}

	wrapped := strings.Split(lipgloss.NewStyle().Width(inner).Render(c.Content), "\n")
	room := cardHeight - len(meta) - 1
	if len(wrapped) > room {
		wrapped = wrapped[:room]
		last := []rune(strings.TrimRight(wrapped[room-1], " "))
		if len(last) >= inner {
			last = last[:inner-1]
		}
		wrapped[room-1] = string(last) + "…"
	}
	for len(wrapped) < room+1 {
		wrapped = append(wrapped, "")
	}
	for i, line := range meta {
		meta[i] = clip(line, inner)
	}
	body := strings.Join(append(wrapped, meta...), "\n")
	return cardStyle(c, selected).Render(body)
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// cellSize is the size of one grid slot, including border and margin.
func cellSize() (w, h int) {
	probe := RenderCard(board.Card{}, board.English.Messages(), false)
	return lipgloss.Width(probe), lipgloss.Height(probe)
}

// columns returns how many cards fit side by side in width.
func columns(width int) int {
	w, _ := cellSize()
	if width <= 0 {
		width = 80
	}
	return max(1, width/w)
}

// RenderCards lays cards out in a grid that fits width. selected is the
// index of the highlighted card, or -1.
func RenderCards(cards []board.Card, m board.Messages, width, selected int) string {
	if len(cards) == 0 {
		return ""
	}
	cols := columns(width)
	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		row := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			row = append(row, RenderCard(cards[i], m, i == selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
