package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/stickies/internal/config"
	"github.com/hpungsan/stickies/internal/errors"
	"github.com/hpungsan/stickies/internal/storage"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: <base>/exports/notes-<timestamp>.json
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes the collection to a JSON file in the slot format, so the file
// can be imported again or pasted into the browser board's storage.
func Export(ctx context.Context, notes Collection, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	path := input.Path
	if path == "" {
		dir, err := ExportsDir()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		path = filepath.Join(dir, "notes-"+now.Format("2006-01-02T150405")+FileExt)
	}
	if err := ValidatePath(path, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	snapshot := notes.Notes()
	data, err := storage.Encode(snapshot)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("export")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("create export directory: %w", err))
	}
	if err := writeExport(path, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       path,
		Count:      len(snapshot),
		ExportedAt: now.Unix(),
	}, nil
}

// writeExport writes data to a temp file next to path and renames it into
// place, so an existing export survives a failed write.
func writeExport(path string, data []byte) error {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return errors.NewInternal(fmt.Errorf("generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(suffix) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("create export file: %w", err))
	}
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink planted after validation.
	if isSymlink(path) {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		// Windows refuses to rename over an existing file; keep the old one.
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("finalize export: %w", err))
	}

	success = true
	return nil
}
