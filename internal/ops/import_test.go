package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/stickies/internal/config"
	"github.com/hpungsan/stickies/internal/errors"
)

func writeImportFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write import file: %v", err)
	}
	return path
}

const browserExport = `[
	{"id":"1760779800000","content":"Süt al","createdAt":"2025-10-18T09:30:00.000Z","updatedAt":"2025-10-18T09:30:00.000Z","color":"bg-green-200"},
	{"id":"1760700000000","content":"Faturayı öde","createdAt":"2025-10-17T11:20:00.000Z","updatedAt":"2025-10-18T08:00:00.000Z","color":"bg-pink-200"}
]`

func TestImport_HappyPath(t *testing.T) {
	s := newTestStore(t, "already here")
	path := writeImportFile(t, browserExport)

	output, err := Import(context.Background(), s, unsafeConfig(), ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if output.Imported != 2 || output.Skipped != 0 {
		t.Errorf("output = %+v, want 2 imported, 0 skipped", output)
	}

	notes := s.Notes()
	if len(notes) != 3 {
		t.Fatalf("Len = %d, want 3", len(notes))
	}
	if notes[0].ID != "1760779800000" || notes[1].ID != "1760700000000" {
		t.Errorf("imported notes must be prepended in file order, got %s, %s", notes[0].ID, notes[1].ID)
	}
	if notes[2].Content != "already here" {
		t.Errorf("existing note moved: %+v", notes[2])
	}
	if !notes[1].Edited() {
		t.Error("updatedAt from the file should be kept")
	}
}

func TestImport_SkipsKnownIDs(t *testing.T) {
	s := newTestStore(t)
	path := writeImportFile(t, browserExport)

	if _, err := Import(context.Background(), s, unsafeConfig(), ImportInput{Path: path}); err != nil {
		t.Fatalf("first Import failed: %v", err)
	}
	output, err := Import(context.Background(), s, unsafeConfig(), ImportInput{Path: path})
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if output.Imported != 0 || output.Skipped != 2 {
		t.Errorf("output = %+v, want 0 imported, 2 skipped", output)
	}
	if got := len(s.Notes()); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}

func TestImport_RoundTrip(t *testing.T) {
	src := newTestStore(t, "one", "two", "three")
	path := filepath.Join(t.TempDir(), "roundtrip.json")
	if _, err := Export(context.Background(), src, unsafeConfig(), ExportInput{Path: path}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := newTestStore(t)
	output, err := Import(context.Background(), dst, unsafeConfig(), ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if output.Imported != 3 {
		t.Fatalf("Imported = %d, want 3", output.Imported)
	}

	want, got := src.Notes(), dst.Notes()
	for i := range want {
		if want[i].ID != got[i].ID || want[i].Content != got[i].Content ||
			!want[i].CreatedAt.Equal(got[i].CreatedAt) || want[i].Color != got[i].Color {
			t.Errorf("note %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestImport_MalformedFileImportsNothing(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "hello"},
		{"jsonl export", "{\"id\":\"a\"}\n{\"id\":\"b\"}\n"},
		{"bad color", `[{"id":"a","content":"x","createdAt":"2025-10-18T09:30:00.000Z","updatedAt":"2025-10-18T09:30:00.000Z","color":"teal"}]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t)
			_, err := Import(context.Background(), s, unsafeConfig(), ImportInput{Path: writeImportFile(t, tc.body)})
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
			if len(s.Notes()) != 0 {
				t.Error("nothing may be imported from a malformed file")
			}
		})
	}
}

func TestImport_TooLarge(t *testing.T) {
	path := writeImportFile(t, "["+strings.Repeat(" ", MaxImportBytes)+"]")

	_, err := Import(context.Background(), newTestStore(t), unsafeConfig(), ImportInput{Path: path})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestImport_FileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := Import(context.Background(), newTestStore(t), unsafeConfig(), ImportInput{Path: path})
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got: %v", err)
	}
}

func TestImport_PathRequired(t *testing.T) {
	_, err := Import(context.Background(), newTestStore(t), config.DefaultConfig(), ImportInput{})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}

func TestImport_OutsideAllowedDirs(t *testing.T) {
	t.Setenv("STICKIES_HOME", t.TempDir())
	path := writeImportFile(t, "[]")

	_, err := Import(context.Background(), newTestStore(t), config.DefaultConfig(), ImportInput{Path: path})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
}
