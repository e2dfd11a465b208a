package ops

import (
	"context"
	"fmt"
	"io"

	"github.com/hpungsan/stickies/internal/config"
	"github.com/hpungsan/stickies/internal/errors"
	"github.com/hpungsan/stickies/internal/storage"
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // already present or not importable
}

// Import reads a JSON file in the slot format and adds the notes whose IDs
// are not in the collection yet. The file is validated as a whole: a file
// that fails to decode imports nothing.
func Import(ctx context.Context, notes Collection, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.StickiesError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("open import file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("read import file: %w", err))
	}
	if len(data) > MaxImportBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("import file exceeds %d bytes", MaxImportBytes))
	}

	incoming, err := storage.Decode(data)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid import file: %v", err))
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("import")
	}

	added := notes.Import(ctx, incoming)
	return &ImportOutput{
		Imported: added,
		Skipped:  len(incoming) - added,
	}, nil
}
