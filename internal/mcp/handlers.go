package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/stickies/internal/config"
	"github.com/hpungsan/stickies/internal/errors"
	"github.com/hpungsan/stickies/internal/note"
	"github.com/hpungsan/stickies/internal/ops"
	"github.com/hpungsan/stickies/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store  *store.Store
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{store: st, cfg: cfg, logger: logger}
}

// AddRequest represents the arguments for note_add.
type AddRequest struct {
	Content string `json:"content"`
}

// UpdateRequest represents the arguments for note_update.
type UpdateRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// DeleteRequest represents the arguments for note_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for note_list.
type ListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ExportRequest represents the arguments for note_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for note_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// ListOutput is the result of note_list.
type ListOutput struct {
	Count int         `json:"count"`
	Total int         `json:"total"`
	Notes []note.Note `json:"notes"`
}

// HandleAdd handles the note_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if err := validateContent(input.Content); err != nil {
		return errorResult(err), nil
	}

	n, ok := h.store.Add(ctx, input.Content)
	if !ok {
		return errorResult(errors.NewInternal(stderrors.New("note was not added"))), nil
	}
	return successResult(n)
}

// HandleUpdate handles the note_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}
	if err := validateContent(input.Content); err != nil {
		return errorResult(err), nil
	}

	updated := h.store.Update(ctx, input.ID, input.Content)
	out := map[string]any{"updated": updated, "id": input.ID}
	if n, ok := h.store.Get(input.ID); ok && updated {
		out["note"] = n
	}
	return successResult(out)
}

// HandleDelete handles the note_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	deleted := h.store.Delete(ctx, input.ID)
	return successResult(map[string]any{"deleted": deleted, "id": input.ID})
}

// HandleList handles the note_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Limit < 0 {
		return errorResult(errors.NewInvalidRequest("limit must not be negative")), nil
	}

	notes := h.store.Notes()
	if notes == nil {
		notes = []note.Note{}
	}
	total := len(notes)
	if input.Limit > 0 && input.Limit < total {
		notes = notes[:input.Limit]
	}
	return successResult(ListOutput{Count: len(notes), Total: total, Notes: notes})
}

// HandleExport handles the note_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.store, h.cfg, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the note_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.store, h.cfg, ops.ImportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	h.logger.Info("notes imported",
		zap.String("path", input.Path),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return successResult(result)
}

func validateContent(content string) error {
	switch note.Validate(content) {
	case note.ProblemEmpty:
		return errors.NewEmptyContent()
	case note.ProblemTooLarge:
		return errors.NewNoteTooLarge(note.MaxChars, note.CountChars(content))
	}
	return nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var sErr *errors.StickiesError
	if stderrors.As(err, &sErr) {
		msg := sErr.Message
		if wrapped := err.Error(); wrapped != sErr.Error() {
			// Keep the wrapper's context ("items[2]: ...") in front of the message.
			msg = strings.TrimSuffix(wrapped, sErr.Error()) + sErr.Message
		}
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": msg,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		if sErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
