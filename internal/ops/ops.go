// Package ops implements the file-based operations over the notes
// collection: export to and import from JSON files.
package ops

import (
	"context"
	"path/filepath"

	"github.com/hpungsan/stickies/internal/config"
	"github.com/hpungsan/stickies/internal/note"
)

// MaxImportBytes bounds the size of an import file.
const MaxImportBytes = 8 << 20

// FileExt is the required extension of export and import files.
const FileExt = ".json"

// Collection is the part of the note store the file operations need.
type Collection interface {
	Notes() []note.Note
	Import(ctx context.Context, notes []note.Note) int
}

// ExportsDir returns the default directory for export files: <base>/exports.
func ExportsDir() (string, error) {
	base, err := config.BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "exports"), nil
}
