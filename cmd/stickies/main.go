package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/stickies/internal/config"
	"github.com/hpungsan/stickies/internal/logging"
	"github.com/hpungsan/stickies/internal/mcp"
	"github.com/hpungsan/stickies/internal/slot"
	"github.com/hpungsan/stickies/internal/storage"
	"github.com/hpungsan/stickies/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "edit": true, "delete": true, "list": true,
	"board": true, "serve": true,
	"export": true, "import": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if f is a terminal (not piped).
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ _   _    _    _
  / __| |_(_)__| |__(_)___ ___
  \__ \  _| / _| / /| / -_|_-<
  |___/\__|_\__|_\_\|_\___/__/

  Sticky notes for your terminal and browser

  Usage: stickies <command> [options]
         stickies --help

  MCP server mode requires piped input.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal(os.Stdin) {
		printBanner()
		return
	}

	// Handle --help/--version before opening storage
	if isHelpOrVersion() {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode() && len(os.Args) >= 2 && isTerminal(os.Stdin) {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'stickies --help' for usage.\n")
		os.Exit(1)
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fail("%v", err)
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		fail("failed to create %s: %v", baseDir, err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fail("could not determine working directory: %v", err)
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fail("failed to load config: %v", err)
	}

	logOpts := logging.Options{Level: cfg.LogLevel}
	if len(os.Args) >= 2 && os.Args[1] == "board" {
		logOpts.File = filepath.Join(baseDir, "stickies.log")
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		fail("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	backend, closeSlot, err := slot.Open(baseDir, cfg)
	if err != nil {
		fail("%v", err)
	}
	defer func() {
		if err := closeSlot(); err != nil {
			logger.Warn("failed to close storage", zap.Error(err))
		}
	}()

	ctx := context.Background()
	st := store.Open(ctx, storage.New(backend, cfg.SlotKey, logger), store.WithLogger(logger))
	env := &appEnv{store: st, cfg: cfg, logger: logger}

	// CLI mode: known subcommand
	if isCLIMode() {
		if err := newCLIApp(env).RunContext(ctx, os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			_ = logger.Sync()
			_ = closeSlot()
			os.Exit(1)
		}
		return
	}

	// MCP server mode (default)
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}
	if err := mcp.Run(st, cfg, logger, Version); err != nil {
		logger.Error("mcp server failed", zap.Error(err))
		_ = closeSlot()
		os.Exit(1)
	}
}
