package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/nikbrunner/marks/internal/config"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/repository"
	"github.com/nikbrunner/marks/internal/storage"
)

var version = "dev"

// app bundles what every subcommand needs.
type app struct {
	cfg   *config.Config
	log   logger.Logger
	store storage.Storage
	repo  *repository.Repository
}

func main() {
	args := os.Args[1:]
	cmd := "browse"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "help", "--help", "-h":
		printHelp()
		return
	case "version", "--version":
		fmt.Println(version)
		return
	}

	ctx := context.Background()
	a, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	commands := map[string]func(context.Context, []string) error{
		"browse":   a.runBrowse,
		"list":     a.runList,
		"open":     a.runOpen,
		"add":      a.runAdd,
		"edit":     a.runEdit,
		"rm":       a.runRemove,
		"move":     a.runMove,
		"file":     a.runFile,
		"folder":   a.runFolder,
		"import":   a.runImport,
		"export":   a.runExport,
		"quickadd": a.runQuickAdd,
		"cull":     a.runCull,
		"serve":    a.runServe,
	}

	run, ok := commands[cmd]
	if !ok {
		// Anything else is a search query, like `marks github`
		run, args = a.runOpen, append([]string{cmd}, args...)
	}

	if err := run(ctx, args); err != nil {
		a.log.Debug("command failed", logger.String("command", cmd), logger.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		a.close()
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(config.DefaultConfigFilePath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.PrettyLog())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	repo := repository.New(store, repository.WithLogger(log))
	if err := repo.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}

	return &app{cfg: cfg, log: log, store: store, repo: repo}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close storage", logger.Error(err))
	}
	_ = a.log.Sync()
}

func printHelp() {
	help := `marks - bookmark manager

Usage:
  marks                          Browse bookmarks interactively
  marks <query>                  Quick search → select → open
  marks list [-folder F] [query] Print bookmarks matching a substring
  marks open <query>             Same as marks <query>
  marks add -title T -url U [-desc D] [-tags a,b] [-folder F]
  marks edit <id> [-title T] [-url U] [-desc D] [-tags a,b] [-folder F]
  marks rm <id>...               Delete bookmarks
  marks move <id> <target-id>    Move a bookmark to the target's position
  marks file <id> [folder]       File a bookmark into a folder (none = unfiled)
  marks folder list|add|rename|rm
  marks import <file>            Import bookmarks from Netscape HTML
  marks export [path]            Export bookmarks to Netscape HTML
  marks quickadd -url U [-title T] [-selection S] [-link]
  marks cull [-delete]           Check every URL and report dead links
  marks serve                    Run the HTTP API
  marks help                     Show this help

Browser Keybindings:
  j/k         Move down/up
  J/K         Reorder bookmark down/up
  tab         Cycle folder filter
  /           Filter by text
  f           Move bookmark to next folder
  y           Copy URL to clipboard
  dd          Delete bookmark
  Enter       Open bookmark
  q           Quit

Configuration:
  ~/.config/marks/config.json (override with MARKS_CONFIG)
`
	fmt.Print(help)
}

// openURL opens a URL in the default browser.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("don't know how to open URLs on %s", runtime.GOOS)
	}
	return cmd.Start()
}
