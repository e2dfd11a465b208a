package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/stickies/internal/board"
	"github.com/hpungsan/stickies/internal/config"
	"github.com/hpungsan/stickies/internal/errors"
	"github.com/hpungsan/stickies/internal/note"
	"github.com/hpungsan/stickies/internal/ops"
	"github.com/hpungsan/stickies/internal/store"
	"github.com/hpungsan/stickies/internal/tui"
	"github.com/hpungsan/stickies/internal/web"
)

// maxStdinBytes bounds note text read from stdin. Anything longer is far
// past the character limit anyway.
const maxStdinBytes = 64 << 10

// appEnv carries what the commands operate on.
type appEnv struct {
	store  *store.Store
	cfg    *config.Config
	logger *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "stickies",
		Usage:   "Sticky notes for your terminal and browser",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(env),
			editCmd(env),
			deleteCmd(env),
			listCmd(env),
			boardCmd(env),
			serveCmd(env),
			exportCmd(env),
			importCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a note (text from arguments or stdin)",
		ArgsUsage: "[text...]",
		Action: func(c *cli.Context) error {
			text, err := inputText(c, 0)
			if err != nil {
				return outputError(err)
			}
			if err := validateContent(text); err != nil {
				return outputError(err)
			}

			n, ok := env.store.Add(c.Context, text)
			if !ok {
				return outputError(errors.NewInternal(stderrors.New("note was not added")))
			}
			return outputJSON(c, n)
		},
	}
}

// editCmd creates the edit command.
func editCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Replace the text of a note (text from arguments or stdin)",
		ArgsUsage: "<id> [text...]",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return outputError(errors.NewInvalidRequest("id is required"))
			}
			text, err := inputText(c, 1)
			if err != nil {
				return outputError(err)
			}
			if err := validateContent(text); err != nil {
				return outputError(err)
			}

			updated := env.store.Update(c.Context, id, text)
			out := map[string]any{"updated": updated, "id": id}
			if n, ok := env.store.Get(id); ok && updated {
				out["note"] = n
			}
			return outputJSON(c, out)
		},
	}
}

// deleteCmd creates the delete command. Unknown ids are a no-op.
func deleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a note",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if id == "" {
				return outputError(errors.NewInvalidRequest("id is required"))
			}
			deleted := env.store.Delete(c.Context, id)
			return outputJSON(c, map[string]any{"deleted": deleted, "id": id})
		},
	}
}

// listCmd creates the list command.
func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List notes, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum notes to show (0 = all)"},
			&cli.BoolFlag{Name: "cards", Usage: "Render notes as sticky-note cards instead of JSON"},
			&cli.IntFlag{Name: "width", Value: 90, Usage: "Terminal width for --cards"},
		},
		Action: func(c *cli.Context) error {
			limit := c.Int("limit")
			if limit < 0 {
				return outputError(errors.NewInvalidRequest("limit must not be negative"))
			}

			if c.Bool("cards") {
				b := newBoard(env, env.cfg.SwipeThresholdCells)
				cards := b.Cards()
				if limit > 0 && limit < len(cards) {
					cards = cards[:limit]
				}
				msgs := b.Locale().Messages()
				out := msgs.HeadingFor(b.Len()) + "\n"
				if len(cards) == 0 {
					out += msgs.Empty + "\n"
				} else {
					out += tui.RenderCards(cards, msgs, c.Int("width"), -1) + "\n"
				}
				_, err := io.WriteString(c.App.Writer, out)
				return err
			}

			notes := env.store.Notes()
			if notes == nil {
				notes = []note.Note{}
			}
			total := len(notes)
			if limit > 0 && limit < total {
				notes = notes[:limit]
			}
			return outputJSON(c, map[string]any{"count": len(notes), "total": total, "notes": notes})
		},
	}
}

// boardCmd creates the board command.
func boardCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Open the interactive terminal board",
		Action: func(c *cli.Context) error {
			b := newBoard(env, env.cfg.SwipeThresholdCells)
			if err := tui.Run(c.Context, b, env.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the board in the browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (default from config, 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default from config, 7420)"},
		},
		Action: func(c *cli.Context) error {
			cfg := *env.cfg
			if c.IsSet("bind") {
				cfg.WebBind = c.String("bind")
			}
			if c.IsSet("port") {
				cfg.WebPort = c.Int("port")
			}
			if cfg.WebPort < 0 || cfg.WebPort > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port out of range: %d", cfg.WebPort)))
			}

			b := newBoard(env, cfg.SwipeThresholdPx)
			srv := web.NewServer(b, &cfg, env.logger, Version)
			if err := web.Run(c.Context, srv, env.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export notes to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <base>/exports/notes-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, env.store, env.cfg, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import notes from a JSON export; notes already on the board are skipped",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, env.store, env.cfg, ops.ImportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			env.logger.Info("notes imported",
				zap.String("path", c.String("path")),
				zap.Int("imported", output.Imported),
				zap.Int("skipped", output.Skipped))
			return outputJSON(c, output)
		},
	}
}

// Helper functions

func newBoard(env *appEnv, threshold int) *board.Board {
	return board.New(env.store,
		board.WithThreshold(float64(threshold)),
		board.WithDelay(env.cfg.SwipeDelay()),
		board.WithLocale(board.ParseLocale(env.cfg.Locale)),
		board.WithLogger(env.logger),
	)
}

func validateContent(text string) error {
	switch note.Validate(text) {
	case note.ProblemEmpty:
		return errors.NewEmptyContent()
	case note.ProblemTooLarge:
		return errors.NewNoteTooLarge(note.MaxChars, note.CountChars(text))
	}
	return nil
}

// inputText returns the arguments after the first skip joined by spaces,
// or, when there are none, the text piped on stdin without its trailing
// newline.
func inputText(c *cli.Context, skip int) (string, error) {
	if args := c.Args().Slice(); len(args) > skip {
		return strings.Join(args[skip:], " "), nil
	}

	r := c.App.Reader
	if f, ok := r.(*os.File); ok && !stdinHasData(f) {
		return "", errors.NewInvalidRequest("note text is required (as arguments or piped via stdin)")
	}
	data, err := io.ReadAll(io.LimitReader(r, maxStdinBytes))
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("read stdin: %w", err))
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// outputJSON writes v to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var sErr *errors.StickiesError
	if stderrors.As(err, &sErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if f is piped (not a terminal).
func stdinHasData(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
