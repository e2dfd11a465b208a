// Package board is the presentation layer shared by the terminal and web
// boards: card view models, relative dates, swipe gestures and the single
// edit session, all driving one note store.
package board

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/stickies/internal/errors"
	"github.com/hpungsan/stickies/internal/note"
	"github.com/hpungsan/stickies/internal/store"
)

// Defaults for the swipe gesture.
const (
	DefaultThreshold = 100
	DefaultDelay     = 300 * time.Millisecond
)

// Card is the render-ready view of one note.
type Card struct {
	ID       string
	Content  string
	Color    note.Color
	Rotation float64 // degrees, fresh on every render
	Created  string  // "Today 09:30"
	Edited   string  // empty unless the note was edited
	Chars    int

	Editing bool
	Draft   string

	Phase  Phase
	Offset float64
}

// Board couples a note store with the edit session and gesture tracker.
// It is safe for concurrent use.
type Board struct {
	mu      sync.Mutex
	store   *store.Store
	session Session
	tracker *Tracker
	delay   time.Duration
	locale  Locale
	rand    *rand.Rand
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Board.
type Option func(*boardOptions)

type boardOptions struct {
	threshold float64
	delay     time.Duration
	locale    Locale
	rand      *rand.Rand
	now       func() time.Time
	logger    *zap.Logger
}

// WithThreshold sets the drag distance that arms a swipe.
func WithThreshold(d float64) Option {
	return func(o *boardOptions) { o.threshold = d }
}

// WithDelay sets the feedback delay between a released swipe and its action.
func WithDelay(d time.Duration) Option {
	return func(o *boardOptions) { o.delay = d }
}

// WithLocale sets the label language.
func WithLocale(l Locale) Option {
	return func(o *boardOptions) { o.locale = l }
}

// WithRand sets the source of card rotation.
func WithRand(r *rand.Rand) Option {
	return func(o *boardOptions) { o.rand = r }
}

// WithClock sets the "now" used for relative dates.
func WithClock(now func() time.Time) Option {
	return func(o *boardOptions) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *boardOptions) { o.logger = l }
}

// New creates a Board over st.
func New(st *store.Store, opts ...Option) *Board {
	o := boardOptions{
		threshold: DefaultThreshold,
		delay:     DefaultDelay,
		locale:    English,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rand == nil {
		o.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Board{
		store:   st,
		tracker: NewTracker(o.threshold),
		delay:   o.delay,
		locale:  o.locale,
		rand:    o.rand,
		now:     o.now,
		logger:  o.logger,
	}
}

// Locale returns the label language.
func (b *Board) Locale() Locale { return b.locale }

// Delay returns the swipe feedback delay.
func (b *Board) Delay() time.Duration { return b.delay }

// Tracker returns the gesture tracker, for front-ends that feed drag
// events incrementally.
func (b *Board) Tracker() *Tracker { return b.tracker }

// Len returns the number of notes.
func (b *Board) Len() int { return b.store.Len() }

// Cards builds the view of every note in display order.
func (b *Board) Cards() []Card {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	notes := b.store.Notes()
	cards := make([]Card, len(notes))
	for i, n := range notes {
		cards[i] = b.card(n, now)
	}
	return cards
}

// Card builds the view of note id.
func (b *Board) Card(id string) (Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.store.Get(id)
	if !ok {
		return Card{}, false
	}
	return b.card(n, b.now()), true
}

// card must be called with mu held.
func (b *Board) card(n note.Note, now time.Time) Card {
	c := Card{
		ID:       n.ID,
		Content:  n.Content,
		Color:    n.Color,
		Rotation: Jitter(b.rand),
		Created:  Stamp(n.CreatedAt, now, b.locale),
		Chars:    note.CountChars(n.Content),
	}
	if n.Edited() {
		c.Edited = Stamp(n.UpdatedAt, now, b.locale)
	}
	if b.session.Editing(n.ID) {
		_, c.Draft, c.Editing = b.session.Active()
	}
	c.Phase, c.Offset = b.tracker.State(n.ID)
	return c
}

// Add creates a note.
func (b *Board) Add(ctx context.Context, content string) (note.Note, bool) {
	return b.store.Add(ctx, content)
}

// Delete removes note id and closes an edit session on it.
func (b *Board) Delete(ctx context.Context, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session.Editing(id) {
		b.session.Cancel()
	}
	return b.store.Delete(ctx, id)
}

// StartEdit opens the edit session on note id, abandoning any other.
func (b *Board) StartEdit(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.store.Get(id)
	if !ok {
		return false
	}
	b.session.Start(n)
	return true
}

// SetDraft replaces the draft of the open session.
func (b *Board) SetDraft(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.SetDraft(text)
}

// Editing returns the note being edited and its draft.
func (b *Board) Editing() (id, draft string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.Active()
}

// SaveEdit commits the draft. See Session.Save.
func (b *Board) SaveEdit(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.Save(ctx, b.store)
}

// CancelEdit discards the draft.
func (b *Board) CancelEdit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.Cancel()
}

// Apply performs a settled gesture action on note id.
func (b *Board) Apply(ctx context.Context, id string, action Action) bool {
	switch action {
	case ActionEdit:
		return b.StartEdit(id)
	case ActionDelete:
		return b.Delete(ctx, id)
	default:
		return false
	}
}

// Swipe runs a complete drag of dx on note id: the gesture is released at
// dx, and an armed gesture is applied after the feedback delay. A swipe on a
// note that already carries a gesture (a drag in progress or a swipe waiting
// out its delay) fails with GESTURE_IN_PROGRESS. If ctx ends during the delay
// the gesture is dropped without acting.
func (b *Board) Swipe(ctx context.Context, id string, dx float64) (Action, error) {
	if _, ok := b.store.Get(id); !ok {
		return ActionNone, errors.NewNotFound(id)
	}
	action, err := b.tracker.Fling(id, dx)
	if err != nil {
		return ActionNone, err
	}
	if action == ActionNone {
		return ActionNone, nil
	}

	timer := time.NewTimer(b.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		b.tracker.Abort(id)
		return ActionNone, errors.NewCancelled("swipe")
	case <-timer.C:
	}

	action = b.tracker.Settle(id)
	if !b.Apply(ctx, id, action) {
		b.logger.Debug("swipe action had no effect",
			zap.String("id", id), zap.Stringer("action", action))
	}
	return action, nil
}
