// Package store owns the in-memory notes collection and persists it after
// every mutation.
package store

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/stickies/internal/note"
	"github.com/hpungsan/stickies/internal/storage"
)

// Store is the authoritative notes collection, newest first.
//
// Operations never fail: invalid input, unknown IDs and persistence errors
// are silent no-ops from the caller's point of view. Persistence errors are
// logged.
type Store struct {
	mu      sync.Mutex
	notes   []note.Note
	adapter *storage.Adapter
	now     func() time.Time
	rand    *rand.Rand
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRand sets the random source used to pick note colors.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rand = r }
}

// WithLogger sets the logger for persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open loads the collection from adapter and returns a Store over it.
// The load never writes; the first write happens on the first mutation.
func Open(ctx context.Context, adapter *storage.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		now:     time.Now,
		rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.notes = adapter.Load(ctx)
	return s
}

// Add prepends a note with the given content. It returns false and leaves
// the collection untouched when the content is blank or too long.
func (s *Store) Add(ctx context.Context, content string) (note.Note, bool) {
	if note.Validate(content) != note.ProblemNone {
		return note.Note{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	id, err := note.NewID(now)
	if err != nil {
		s.logger.Error("failed to generate note id", zap.Error(err))
		return note.Note{}, false
	}
	n := note.Note{
		ID:        id,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
		Color:     note.RandomColor(s.rand),
	}
	s.notes = slices.Insert(s.notes, 0, n)
	s.persist(ctx, "add")
	return n, true
}

// Update replaces the content of note id and moves its UpdatedAt to now.
// It returns false when id is unknown or the content is blank or too long.
func (s *Store) Update(ctx context.Context, id, content string) bool {
	if note.Validate(content) != note.ProblemNone {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false
	}
	now := s.timestamp()
	// A clock that went backwards must not break updatedAt >= createdAt.
	if now.Before(s.notes[i].CreatedAt) {
		now = s.notes[i].CreatedAt
	}
	s.notes[i].Content = content
	s.notes[i].UpdatedAt = now
	s.persist(ctx, "update")
	return true
}

// Delete removes note id. It returns false when id is unknown.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	s.persist(ctx, "delete")
	return true
}

// Import prepends the notes whose IDs are not already present, keeping
// their order, and persists once. Invalid notes are skipped. It returns the
// number of notes added.
func (s *Store) Import(ctx context.Context, notes []note.Note) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.notes)+len(notes))
	for _, n := range s.notes {
		seen[n.ID] = true
	}

	var added []note.Note
	for _, n := range notes {
		if n.ID == "" || seen[n.ID] || !importable(n) {
			continue
		}
		seen[n.ID] = true
		n.CreatedAt = n.CreatedAt.UTC().Truncate(time.Millisecond)
		n.UpdatedAt = n.UpdatedAt.UTC().Truncate(time.Millisecond)
		added = append(added, n)
	}
	if len(added) == 0 {
		return 0
	}

	s.notes = append(added, s.notes...)
	s.persist(ctx, "import")
	return len(added)
}

// Notes returns a copy of the collection in display order.
func (s *Store) Notes() []note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notes)
}

// Get returns the note with the given id.
func (s *Store) Get(id string) (note.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return note.Note{}, false
	}
	return s.notes[i], true
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.notes, func(n note.Note) bool { return n.ID == id })
}

// timestamp returns now in UTC at the precision the slot format keeps, so the
// in-memory collection equals what a reload produces.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// persist writes the full collection. Must be called with mu held.
func (s *Store) persist(ctx context.Context, op string) {
	if err := s.adapter.Save(ctx, s.notes); err != nil {
		s.logger.Error("failed to persist notes",
			zap.String("op", op),
			zap.String("key", s.adapter.Key()),
			zap.Int("count", len(s.notes)),
			zap.Error(err))
	}
}

func importable(n note.Note) bool {
	return n.Content != "" &&
		note.CountChars(n.Content) <= note.MaxChars &&
		n.Color.Valid() &&
		!n.CreatedAt.IsZero() &&
		!n.UpdatedAt.Before(n.CreatedAt)
}
