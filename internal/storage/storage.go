// Package storage round-trips the notes collection through a persistence slot.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/stickies/internal/note"
	"github.com/hpungsan/stickies/internal/slot"
)

// DefaultKey is the slot key the collection is stored under.
const DefaultKey = "notes"

// TimeLayout is the serialized timestamp form: UTC, millisecond precision.
// It matches what browsers produce for Date.prototype.toISOString.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// record is the serialized shape of a note.
type record struct {
	ID        string     `json:"id"`
	Content   *string    `json:"content"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
	Color     note.Color `json:"color"`
}

// Adapter loads and saves the whole collection under one slot key.
type Adapter struct {
	slot   slot.Slot
	key    string
	logger *zap.Logger
}

// New creates an Adapter. An empty key selects DefaultKey; a nil logger is replaced by a no-op logger.
func New(s slot.Slot, key string, logger *zap.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{slot: s, key: key, logger: logger}
}

// Key returns the slot key.
func (a *Adapter) Key() string {
	return a.key
}

// Load reads the collection. An absent slot yields an empty collection.
// A slot that cannot be read or decoded is logged and also yields an empty
// collection; Load never fails.
func (a *Adapter) Load(ctx context.Context) []note.Note {
	raw, ok, err := a.slot.Get(ctx, a.key)
	if err != nil {
		a.logger.Warn("failed to read notes slot, starting empty",
			zap.String("key", a.key), zap.Error(err))
		return []note.Note{}
	}
	if !ok {
		return []note.Note{}
	}

	notes, err := Decode([]byte(raw))
	if err != nil {
		a.logger.Warn("discarding unreadable notes slot, starting empty",
			zap.String("key", a.key), zap.Int("bytes", len(raw)), zap.Error(err))
		return []note.Note{}
	}

	a.logger.Debug("notes loaded", zap.String("key", a.key), zap.Int("count", len(notes)))
	return notes
}

// Save serializes the full collection and overwrites the slot.
func (a *Adapter) Save(ctx context.Context, notes []note.Note) error {
	data, err := Encode(notes)
	if err != nil {
		return err
	}
	if err := a.slot.Set(ctx, a.key, string(data)); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

// Encode serializes notes as a JSON array. A nil collection encodes as [].
func Encode(notes []note.Note) ([]byte, error) {
	records := make([]record, len(notes))
	for i, n := range notes {
		content := n.Content
		records[i] = record{
			ID:        n.ID,
			Content:   &content,
			CreatedAt: FormatTime(n.CreatedAt),
			UpdatedAt: FormatTime(n.UpdatedAt),
			Color:     n.Color,
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode notes: %w", err)
	}
	return data, nil
}

// Decode parses a serialized collection and checks the collection invariants:
// unique non-empty IDs, content within bounds, parseable timestamps with
// updatedAt not before createdAt, and palette colors. JSON null decodes to an
// empty collection.
func Decode(data []byte) ([]note.Note, error) {
	var records []record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode notes: trailing data after array")
	}

	notes := make([]note.Note, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		n, err := r.toNote()
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("note %d: duplicate id %q", i, n.ID)
		}
		seen[n.ID] = true
		notes = append(notes, n)
	}
	return notes, nil
}

func (r record) toNote() (note.Note, error) {
	if r.ID == "" {
		return note.Note{}, fmt.Errorf("missing id")
	}
	if r.Content == nil {
		return note.Note{}, fmt.Errorf("missing content")
	}
	if note.CountChars(*r.Content) > note.MaxChars {
		return note.Note{}, fmt.Errorf("content exceeds %d chars", note.MaxChars)
	}
	if !r.Color.Valid() {
		return note.Note{}, fmt.Errorf("missing color")
	}
	created, err := ParseTime(r.CreatedAt)
	if err != nil {
		return note.Note{}, fmt.Errorf("createdAt: %w", err)
	}
	updated, err := ParseTime(r.UpdatedAt)
	if err != nil {
		return note.Note{}, fmt.Errorf("updatedAt: %w", err)
	}
	if updated.Before(created) {
		return note.Note{}, fmt.Errorf("updatedAt before createdAt")
	}
	return note.Note{
		ID:        r.ID,
		Content:   *r.Content,
		CreatedAt: created,
		UpdatedAt: updated,
		Color:     r.Color,
	}, nil
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts any RFC 3339 timestamp, with or without fractional
// seconds, and returns it in UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
