package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/stickies/internal/note"
)

var addToolDef = mcp.NewTool("note_add",
	mcp.WithDescription("Add a sticky note to the top of the board. A color is picked at random."),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description(fmt.Sprintf("Note text: not blank, at most %d characters", note.MaxChars)),
	),
)

var updateToolDef = mcp.NewTool("note_update",
	mcp.WithDescription("Replace the text of a note. Color and creation time are kept. Unknown ids are a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description(fmt.Sprintf("New text: not blank, at most %d characters", note.MaxChars)),
	),
)

var deleteToolDef = mcp.NewTool("note_delete",
	mcp.WithDescription("Delete a note. Unknown ids are a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
)

var listToolDef = mcp.NewTool("note_list",
	mcp.WithDescription("List notes, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum notes to return (default all)")),
)

var exportToolDef = mcp.NewTool("note_export",
	mcp.WithDescription("Write every note to a JSON file in the board's storage format."),
	mcp.WithString("path", mcp.Description("Target .json file (default: a timestamped file in the exports directory)")),
)

var importToolDef = mcp.NewTool("note_import",
	mcp.WithDescription("Add the notes of a JSON export whose ids are not on the board yet."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .json file")),
)
