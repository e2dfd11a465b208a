package board

import (
	"math"
	"sync"

	"github.com/hpungsan/stickies/internal/errors"
)

// Phase is the state of a drag gesture on one card.
type Phase int

const (
	PhaseNeutral    Phase = iota
	PhaseArmedLeft        // dragged left past the threshold: release edits
	PhaseArmedRight       // dragged right past the threshold: release deletes
	PhasePending          // released while armed, waiting for the feedback delay
)

func (p Phase) String() string {
	switch p {
	case PhaseArmedLeft:
		return "armed-left"
	case PhaseArmedRight:
		return "armed-right"
	case PhasePending:
		return "pending"
	default:
		return "neutral"
	}
}

// Action is what a completed gesture does to its note.
type Action int

const (
	ActionNone Action = iota
	ActionEdit
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Gesture maps a continuous horizontal drag onto a discrete action.
//
//	neutral -Move(|dx|>=threshold)-> armed-left/armed-right -Release-> pending -Settle-> neutral
//	armed   -Move(|dx|<threshold)--> neutral
//	neutral -Release---------------> neutral (no action)
//
// Gesture is not safe for concurrent use; Tracker serializes access.
type Gesture struct {
	threshold float64
	phase     Phase
	offset    float64
	action    Action
}

// NewGesture creates a neutral gesture that arms at the given distance.
func NewGesture(threshold float64) *Gesture {
	return &Gesture{threshold: math.Abs(threshold)}
}

// Phase returns the current phase.
func (g *Gesture) Phase() Phase { return g.phase }

// Offset returns the last drag offset, for rendering the card displaced.
func (g *Gesture) Offset() float64 { return g.offset }

// Move updates the drag offset; negative is left. Moves are ignored once
// the gesture is pending.
func (g *Gesture) Move(dx float64) Phase {
	if g.phase == PhasePending {
		return g.phase
	}
	g.offset = dx
	switch {
	case dx <= -g.threshold:
		g.phase = PhaseArmedLeft
	case dx >= g.threshold:
		g.phase = PhaseArmedRight
	default:
		g.phase = PhaseNeutral
	}
	return g.phase
}

// Release ends the drag. An armed gesture becomes pending and its action is
// returned; otherwise the gesture reverts to neutral and ActionNone is returned.
func (g *Gesture) Release() Action {
	switch g.phase {
	case PhaseArmedLeft:
		g.action = ActionEdit
	case PhaseArmedRight:
		g.action = ActionDelete
	case PhasePending:
		return g.action
	default:
		g.reset()
		return ActionNone
	}
	g.phase = PhasePending
	g.offset = 0
	return g.action
}

// Settle completes a pending gesture after the feedback delay and returns
// its action. A gesture that is not pending settles to ActionNone.
func (g *Gesture) Settle() Action {
	if g.phase != PhasePending {
		return ActionNone
	}
	action := g.action
	g.reset()
	return action
}

func (g *Gesture) reset() {
	g.phase = PhaseNeutral
	g.offset = 0
	g.action = ActionNone
}

// Tracker holds at most one gesture per note.
type Tracker struct {
	mu        sync.Mutex
	threshold float64
	gestures  map[string]*Gesture
}

// NewTracker creates a Tracker whose gestures arm at threshold.
func NewTracker(threshold float64) *Tracker {
	return &Tracker{threshold: threshold, gestures: make(map[string]*Gesture)}
}

// Begin starts a gesture on note id. A drag that was never released is
// replaced; a released gesture still waiting to settle blocks a new one.
func (t *Tracker) Begin(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if g, ok := t.gestures[id]; ok && g.phase == PhasePending {
		return errors.NewGestureInProgress(id)
	}
	t.gestures[id] = NewGesture(t.threshold)
	return nil
}

// Fling runs a whole drag of dx on note id in one step: begin, move and
// release. Unlike Begin it refuses any gesture already on the note, dragging
// or pending, so two flings can never share one gesture.
func (t *Tracker) Fling(id string, dx float64) (Action, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.gestures[id]; ok {
		return ActionNone, errors.NewGestureInProgress(id)
	}
	g := NewGesture(t.threshold)
	g.Move(dx)
	action := g.Release()
	if action != ActionNone {
		t.gestures[id] = g
	}
	return action, nil
}

// Move feeds a drag offset to the gesture on id.
func (t *Tracker) Move(id string, dx float64) Phase {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.gestures[id]
	if !ok {
		return PhaseNeutral
	}
	return g.Move(dx)
}

// Release ends the drag on id. Gestures that release to ActionNone are
// dropped; pending ones stay until Settle.
func (t *Tracker) Release(id string) Action {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.gestures[id]
	if !ok {
		return ActionNone
	}
	action := g.Release()
	if action == ActionNone {
		delete(t.gestures, id)
	}
	return action
}

// Settle completes and drops the gesture on id.
func (t *Tracker) Settle(id string) Action {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.gestures[id]
	if !ok {
		return ActionNone
	}
	delete(t.gestures, id)
	return g.Settle()
}

// Abort drops the gesture on id without acting.
func (t *Tracker) Abort(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.gestures, id)
}

// State returns the phase and offset of the gesture on id.
func (t *Tracker) State(id string) (Phase, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.gestures[id]
	if !ok {
		return PhaseNeutral, 0
	}
	return g.phase, g.offset
}
