package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/hpungsan/stickies/internal/note"
	"github.com/hpungsan/stickies/internal/slot"
	"github.com/hpungsan/stickies/internal/storage"
)

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func openStore(mem *slot.Memory, c *clock) *Store {
	return Open(context.Background(), storage.New(mem, "", nil),
		WithClock(c.Now), WithRand(rand.New(rand.NewPCG(1, 2))))
}

// reload reads the collection back from the slot.
func reload(mem *slot.Memory) []note.Note {
	return storage.New(mem, "", nil).Load(context.Background())
}

type brokenSlot struct{}

func (brokenSlot) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (brokenSlot) Set(context.Context, string, string) error { return errors.New("quota exceeded") }

func TestOpen_DoesNotWrite(t *testing.T) {
	mem := slot.NewMemory()
	require.NoError(t, mem.Set(context.Background(), storage.DefaultKey, "not json"))
	writes := mem.Writes()

	s := openStore(mem, newClock())
	assert.Zero(t, s.Len())
	assert.Equal(t, writes, mem.Writes(), "loading must not save")

	raw, _, _ := mem.Get(context.Background(), storage.DefaultKey)
	assert.Equal(t, "not json", raw, "corrupt value stays until the next mutation")
}

func TestOpen_LoadsExisting(t *testing.T) {
	mem := slot.NewMemory()
	c := newClock()
	first := openStore(mem, c)
	_, ok := first.Add(context.Background(), "one")
	require.True(t, ok)

	second := openStore(mem, c)
	if diff := cmp.Diff(first.Notes(), second.Notes()); diff != "" {
		t.Errorf("reopened store mismatch (-first +second):\n%s", diff)
	}
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	c := newClock()
	s := openStore(mem, c)

	a, ok := s.Add(ctx, "first")
	require.True(t, ok)
	c.Advance(time.Second)
	b, ok := s.Add(ctx, "second")
	require.True(t, ok)

	notes := s.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, b.ID, notes[0].ID, "newest first")
	assert.Equal(t, a.ID, notes[1].ID)
	assert.Less(t, a.ID, b.ID, "ids sort by creation")
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	assert.False(t, a.Edited())
	assert.True(t, a.Color.Valid())
	assert.Equal(t, 2, mem.Writes())
}

func TestAdd_KeepsContentUntrimmed(t *testing.T) {
	s := openStore(slot.NewMemory(), newClock())
	n, ok := s.Add(context.Background(), "  padded\n")
	require.True(t, ok)
	assert.Equal(t, "  padded\n", n.Content)
}

func TestAdd_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "spaces", content: "   "},
		{name: "whitespace mix", content: "\t\n \r\n"},
		{name: "too long", content: strings.Repeat("a", note.MaxChars+1)},
		{name: "too long multibyte", content: strings.Repeat("ş", note.MaxChars+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := slot.NewMemory()
			s := openStore(mem, newClock())

			_, ok := s.Add(context.Background(), tt.content)
			assert.False(t, ok)
			assert.Zero(t, s.Len())
			assert.Zero(t, mem.Writes(), "no-op must not persist")
		})
	}
}

func TestAdd_AcceptsExactlyMaxChars(t *testing.T) {
	s := openStore(slot.NewMemory(), newClock())
	_, ok := s.Add(context.Background(), strings.Repeat("ğ", note.MaxChars))
	assert.True(t, ok)
}

func TestAdd_TruncatesToMillisecond(t *testing.T) {
	c := newClock()
	c.Advance(123456789 * time.Nanosecond)
	s := openStore(slot.NewMemory(), c)

	n, _ := s.Add(context.Background(), "x")
	assert.Equal(t, 123*time.Millisecond, time.Duration(n.CreatedAt.Nanosecond()))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	c := newClock()
	s := openStore(mem, c)

	other, _ := s.Add(ctx, "other")
	n, _ := s.Add(ctx, "draft")
	c.Advance(time.Minute)

	require.True(t, s.Update(ctx, n.ID, "final"))

	got, ok := s.Get(n.ID)
	require.True(t, ok)
	assert.Equal(t, "final", got.Content)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.Equal(t, c.Now(), got.UpdatedAt)
	assert.True(t, got.Edited())
	assert.Equal(t, n.Color, got.Color)

	untouched, _ := s.Get(other.ID)
	assert.Equal(t, other, untouched)
	assert.Equal(t, []string{n.ID, other.ID}, ids(s.Notes()), "order is unchanged")
}

func TestUpdate_NoOps(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	s := openStore(mem, newClock())
	n, _ := s.Add(ctx, "keep")
	writes := mem.Writes()

	assert.False(t, s.Update(ctx, "missing", "x"))
	assert.False(t, s.Update(ctx, n.ID, "  "))
	assert.False(t, s.Update(ctx, n.ID, strings.Repeat("a", note.MaxChars+1)))

	got, _ := s.Get(n.ID)
	assert.Equal(t, n, got)
	assert.Equal(t, writes, mem.Writes())
}

func TestUpdate_ClockSkewNeverPrecedesCreation(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	s := openStore(slot.NewMemory(), c)
	n, _ := s.Add(ctx, "x")

	c.Advance(-time.Hour)
	require.True(t, s.Update(ctx, n.ID, "y"))

	got, _ := s.Get(n.ID)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	s := openStore(mem, newClock())
	a, _ := s.Add(ctx, "a")
	b, _ := s.Add(ctx, "b")
	c, _ := s.Add(ctx, "c")

	require.True(t, s.Delete(ctx, b.ID))
	assert.Equal(t, []string{c.ID, a.ID}, ids(s.Notes()))

	writes := mem.Writes()
	assert.False(t, s.Delete(ctx, b.ID), "second delete is a no-op")
	assert.False(t, s.Delete(ctx, ""))
	assert.Equal(t, writes, mem.Writes())
}

func TestNotes_ReturnsCopy(t *testing.T) {
	s := openStore(slot.NewMemory(), newClock())
	s.Add(context.Background(), "original")

	notes := s.Notes()
	notes[0].Content = "mutated"

	got := s.Notes()
	assert.Equal(t, "original", got[0].Content)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	c := newClock()
	s := openStore(mem, c)
	existing, _ := s.Add(ctx, "existing")
	writes := mem.Writes()

	t0 := c.Now().Add(-48 * time.Hour)
	incoming := []note.Note{
		{ID: "x1", Content: "one", CreatedAt: t0, UpdatedAt: t0, Color: note.Blue},
		existing,
		{ID: "x2", Content: "two", CreatedAt: t0, UpdatedAt: t0.Add(time.Hour), Color: note.Green},
		{ID: "x1", Content: "dup in file", CreatedAt: t0, UpdatedAt: t0, Color: note.Blue},
		{ID: "bad", Content: "", CreatedAt: t0, UpdatedAt: t0, Color: note.Blue},
	}

	added := s.Import(ctx, incoming)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"x1", "x2", existing.ID}, ids(s.Notes()))
	assert.Equal(t, writes+1, mem.Writes(), "import persists once")

	assert.Zero(t, s.Import(ctx, incoming), "re-import adds nothing")
	assert.Equal(t, writes+1, mem.Writes())
}

func TestPersistFailure_IsLoggedNotSurfaced(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := Open(context.Background(), storage.New(brokenSlot{}, "", nil),
		WithClock(newClock().Now), WithLogger(zap.New(core)))

	n, ok := s.Add(context.Background(), "still here")
	require.True(t, ok, "the mutation succeeds in memory")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Delete(context.Background(), n.ID))

	entries := logs.FilterMessage("failed to persist notes").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "add", entries[0].ContextMap()["op"])
	assert.Equal(t, "delete", entries[1].ContextMap()["op"])
}

// TestScenario_BuyMilk walks the add, edit, delete lifecycle and checks that a
// reload reproduces the exact state after every step.
func TestScenario_BuyMilk(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	c := newClock()
	s := openStore(mem, c)

	t0 := c.Now()
	n, ok := s.Add(ctx, "Buy milk")
	require.True(t, ok)
	assert.Equal(t, t0, n.CreatedAt)
	assert.Equal(t, t0, n.UpdatedAt)
	assertReload(t, s, mem)

	c.Advance(90 * time.Minute)
	t1 := c.Now()
	require.True(t, s.Update(ctx, n.ID, "Buy bread"))
	got, _ := s.Get(n.ID)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, "Buy bread", got.Content)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, t1, got.UpdatedAt)
	assertReload(t, s, mem)

	require.True(t, s.Delete(ctx, n.ID))
	assert.Zero(t, s.Len())
	assertReload(t, s, mem)
}

func assertReload(t *testing.T, s *Store, mem *slot.Memory) {
	t.Helper()
	if diff := cmp.Diff(s.Notes(), reload(mem)); diff != "" {
		t.Errorf("reload mismatch (-memory +reloaded):\n%s", diff)
	}
}

func ids(notes []note.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func validContent() *rapid.Generator[string] {
	return rapid.StringN(1, note.MaxChars, -1).Filter(func(s string) bool {
		return !note.IsBlank(s)
	})
}

func TestAdd_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := openStore(slot.NewMemory(), newClock())
		for range rapid.IntRange(0, 5).Draw(t, "prefill") {
			s.Add(context.Background(), "seed")
		}
		before := s.Len()

		content := validContent().Draw(t, "c")
		n, ok := s.Add(context.Background(), content)
		if !ok {
			t.Fatalf("Add(%q) rejected valid content", content)
		}
		if s.Len() != before+1 {
			t.Fatalf("Len = %d, want %d", s.Len(), before+1)
		}
		if got := s.Notes()[0]; got.ID != n.ID {
			t.Fatalf("new note at position 0 = %q, want %q", got.ID, n.ID)
		}
	})
}

func TestAdd_BlankProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := openStore(slot.NewMemory(), newClock())
		blank := rapid.StringOf(rapid.SampledFrom([]rune{' ', '\t', '\n', '\r', '\v', '\f', ' ', '　'})).Draw(t, "blank")
		if _, ok := s.Add(context.Background(), blank); ok {
			t.Fatalf("Add(%q) accepted blank content", blank)
		}
		if s.Len() != 0 {
			t.Fatalf("Len = %d after blank add", s.Len())
		}
	})
}

// TestStore_StateMachine runs random operation sequences against a plain
// slice model and checks the persisted state after each step.
func TestStore_StateMachine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		mem := slot.NewMemory()
		c := newClock()
		s := openStore(mem, c)
		var model []note.Note

		pickID := func(t *rapid.T) string {
			if len(model) == 0 || rapid.Bool().Draw(t, "unknown") {
				return rapid.StringMatching(`[a-z]{1,4}`).Draw(t, "missing id")
			}
			return rapid.SampledFrom(model).Draw(t, "target").ID
		}

		t.Repeat(map[string]func(*rapid.T){
			"add": func(t *rapid.T) {
				content := validContent().Draw(t, "content")
				c.Advance(time.Duration(rapid.IntRange(0, 5000).Draw(t, "tick")) * time.Millisecond)
				n, ok := s.Add(ctx, content)
				if !ok {
					t.Fatalf("Add rejected %q", content)
				}
				model = append([]note.Note{n}, model...)
			},
			"update": func(t *rapid.T) {
				id := pickID(t)
				content := validContent().Draw(t, "content")
				c.Advance(time.Duration(rapid.IntRange(0, 5000).Draw(t, "tick")) * time.Millisecond)
				ok := s.Update(ctx, id, content)
				i := indexOf(model, id)
				if ok != (i >= 0) {
					t.Fatalf("Update(%q) = %v, model index %d", id, ok, i)
				}
				if ok {
					model[i].Content = content
					model[i].UpdatedAt = c.Now()
				}
			},
			"delete": func(t *rapid.T) {
				id := pickID(t)
				ok := s.Delete(ctx, id)
				i := indexOf(model, id)
				if ok != (i >= 0) {
					t.Fatalf("Delete(%q) = %v, model index %d", id, ok, i)
				}
				if ok {
					model = append(model[:i], model[i+1:]...)
				}
			},
			"": func(t *rapid.T) {
				if diff := cmp.Diff(model, s.Notes(), cmpEmpty); diff != "" {
					t.Fatalf("store diverged from model (-model +store):\n%s", diff)
				}
				if diff := cmp.Diff(s.Notes(), reload(mem), cmpEmpty); diff != "" {
					t.Fatalf("reload diverged (-store +reload):\n%s", diff)
				}
			},
		})
	})
}

// cmpEmpty treats nil and empty collections as equal.
var cmpEmpty = cmp.FilterValues(func(a, b []note.Note) bool {
	return len(a) == 0 && len(b) == 0
}, cmp.Ignore())

func indexOf(notes []note.Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func TestStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	s := Open(ctx, storage.New(mem, "", nil))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(ctx, strings.Repeat("n", i+1))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
	assert.Len(t, reload(mem), 20)
}
