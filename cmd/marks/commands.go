package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nikbrunner/marks/internal/culler"
	"github.com/nikbrunner/marks/internal/exporter"
	"github.com/nikbrunner/marks/internal/httpserver"
	"github.com/nikbrunner/marks/internal/httpserver/deps"
	"github.com/nikbrunner/marks/internal/importer"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/picker"
	"github.com/nikbrunner/marks/internal/quickadd"
	"github.com/nikbrunner/marks/internal/repository"
	"github.com/nikbrunner/marks/internal/search"
)

var errUsage = errors.New("invalid usage, see `marks help`")

// runBrowse runs the interactive browser and opens the chosen bookmark.
func (a *app) runBrowse(ctx context.Context, _ []string) error {
	p := tea.NewProgram(picker.NewBrowser(ctx, a.repo), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run browser: %w", err)
	}

	b, ok := final.(picker.Browser).SelectedBookmark()
	if !ok {
		return nil
	}
	return openURL(b.URL)
}

// runList prints bookmarks matching a case-insensitive substring.
func (a *app) runList(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	folderArg := fs.String("folder", search.AllFolders, `folder name or id ("" for unfiled)`)
	_ = fs.Parse(args)

	folder := *folderArg
	if folder != search.AllFolders && folder != search.NoFolder {
		f, err := a.resolveFolder(folder)
		if err != nil {
			return err
		}
		folder = f.ID
	}

	res := search.Filter(a.repo.Bookmarks(), strings.Join(fs.Args(), " "), folder)
	switch res.Outcome() {
	case search.OutcomeEmptyCollection:
		fmt.Println("No bookmarks yet. Add one with `marks add`.")
		return nil
	case search.OutcomeNoMatches:
		fmt.Println("No matches.")
		return nil
	}

	names := folderNames(a.repo.Folders())
	for _, b := range res.Bookmarks {
		fmt.Printf("%s  %s\n", b.ID, b.Title)
		fmt.Printf("    %s\n", b.URL)
		meta := humanize.Time(model.Time(b.CreatedAt))
		if name, ok := names[b.Folder]; ok {
			meta = name + " · " + meta
		}
		if len(b.Tags) > 0 {
			meta += " · #" + strings.Join(b.Tags, " #")
		}
		fmt.Printf("    %s\n", meta)
	}
	fmt.Printf("%d of %d bookmarks\n", len(res.Bookmarks), res.Total)
	return nil
}

// runOpen performs a fuzzy search and opens the selected bookmark.
func (a *app) runOpen(_ context.Context, args []string) error {
	query := strings.Join(args, " ")
	if query == "" {
		return errUsage
	}

	results := search.FuzzySearchBookmarks(a.repo.Bookmarks(), query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return nil
	}

	var selected model.Bookmark
	if len(results) == 1 {
		selected = results[0].Bookmark
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		final, err := tea.NewProgram(picker.New(results, query)).Run()
		if err != nil {
			return fmt.Errorf("run picker: %w", err)
		}

		p := final.(picker.Picker)
		b, ok := p.SelectedBookmark()
		if p.Cancelled() || !ok {
			return nil
		}
		selected = b
	}

	return openURL(selected.URL)
}

func (a *app) runAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "bookmark title")
	url := fs.String("url", "", "bookmark URL")
	desc := fs.String("desc", "", "description")
	tags := fs.String("tags", "", "comma separated tags")
	folder := fs.String("folder", "", "folder name or id")
	_ = fs.Parse(args)

	params := model.NewBookmarkParams{
		Title:       *title,
		URL:         *url,
		Description: *desc,
		Tags:        model.ParseTags(*tags),
	}
	if *folder != "" {
		f, err := a.resolveFolder(*folder)
		if err != nil {
			return err
		}
		params.Folder = f.ID
	}

	out, err := a.repo.Dispatch(ctx, repository.AddBookmark{Params: params})
	if err != nil {
		return err
	}
	b := out.(model.Bookmark)
	fmt.Printf("Added %s (%s)\n", b.Title, b.ID)
	return nil
}

func (a *app) runEdit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	b, err := a.resolveBookmark(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	title := fs.String("title", "", "new title")
	url := fs.String("url", "", "new URL")
	desc := fs.String("desc", "", "new description")
	tags := fs.String("tags", "", "comma separated tags")
	folder := fs.String("folder", "", `folder name or id ("" for unfiled)`)
	_ = fs.Parse(args[1:])

	var patch model.BookmarkPatch
	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "url":
			patch.URL = url
		case "desc":
			patch.Description = desc
		case "tags":
			t := model.ParseTags(*tags)
			patch.Tags = &t
		case "folder":
			id := ""
			if *folder != "" {
				target, err := a.resolveFolder(*folder)
				if err != nil {
					visitErr = err
					return
				}
				id = target.ID
			}
			patch.Folder = &id
		}
	})
	if visitErr != nil {
		return visitErr
	}
	if patch.Empty() {
		fmt.Println("Nothing to change.")
		return nil
	}

	if _, err := a.repo.Dispatch(ctx, repository.UpdateBookmark{ID: b.ID, Patch: patch}); err != nil {
		return err
	}
	fmt.Printf("Updated %s\n", b.ID)
	return nil
}

func (a *app) runRemove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	out, err := a.repo.Dispatch(ctx, repository.DeleteBookmarks{IDs: args})
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d bookmarks\n", out.(int))
	return nil
}

func (a *app) runMove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}

	_, err := a.repo.Dispatch(ctx, repository.Reorder{MovedID: args[0], TargetID: args[1]})
	return err
}

func (a *app) runFile(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}

	folderID := ""
	if len(args) == 2 {
		f, err := a.resolveFolder(args[1])
		if err != nil {
			return err
		}
		folderID = f.ID
	}

	_, err := a.repo.Dispatch(ctx, repository.SetBookmarkFolder{ID: args[0], FolderID: folderID})
	return err
}

func (a *app) runFolder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		counts := a.repo.FolderCounts()
		for _, f := range a.repo.Folders() {
			fmt.Printf("%s  %s (%d)\n", f.ID, f.Name, counts[f.ID])
		}
		return nil
	case "add":
		if len(args) != 2 {
			return errUsage
		}
		out, err := a.repo.Dispatch(ctx, repository.AddFolder{Name: args[1]})
		if err != nil {
			return err
		}
		fmt.Printf("Added folder %s (%s)\n", out.(model.Folder).Name, out.(model.Folder).ID)
		return nil
	case "rename":
		if len(args) != 3 {
			return errUsage
		}
		f, err := a.resolveFolder(args[1])
		if err != nil {
			return err
		}
		_, err = a.repo.Dispatch(ctx, repository.RenameFolder{ID: f.ID, Name: args[2]})
		return err
	case "rm":
		if len(args) != 2 {
			return errUsage
		}
		f, err := a.resolveFolder(args[1])
		if err != nil {
			return err
		}
		if _, err := a.repo.Dispatch(ctx, repository.DeleteFolder{ID: f.ID}); err != nil {
			return err
		}
		fmt.Printf("Deleted folder %s, its bookmarks are now unfiled\n", f.Name)
		return nil
	default:
		return errUsage
	}
}

// runImport merges a Netscape bookmark file into the collection.
func (a *app) runImport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	decoded, err := importer.ParseHTMLBookmarks(file)
	if err != nil {
		return fmt.Errorf("parse HTML: %w", err)
	}

	res, err := a.repo.Import(ctx, decoded, repository.ImportOptions{KeepDates: a.cfg.ImportKeepDates})
	if err != nil {
		return err
	}

	fmt.Println(res.Message())
	if res.FoldersCreated > 0 || res.FoldersMerged > 0 {
		fmt.Printf("Folders: %d created, %d merged\n", res.FoldersCreated, res.FoldersMerged)
	}
	if res.Malformed > 0 {
		fmt.Printf("Ignored %d malformed entries\n", res.Malformed)
	}
	return nil
}

// runExport writes the collection to a Netscape bookmark file.
func (a *app) runExport(_ context.Context, args []string) error {
	outputPath := exporter.DefaultExportPath(a.cfg.ExportDir, time.Now())
	if len(args) > 0 {
		outputPath = args[0]
	}

	snap := a.repo.Snapshot()
	html := exporter.ExportHTML(snap.Bookmarks, snap.Folders)
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	fmt.Printf("Exported %d bookmarks, %d folders to %s\n",
		len(snap.Bookmarks), len(snap.Folders), outputPath)
	return nil
}

func (a *app) runQuickAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quickadd", flag.ExitOnError)
	url := fs.String("url", "", "page or link URL")
	title := fs.String("title", "", "page title")
	selection := fs.String("selection", "", "selected link text")
	link := fs.Bool("link", false, "treat -url as a clicked link")
	_ = fs.Parse(args)

	req := quickadd.Request{PageURL: *url, TabTitle: *title}
	if *link {
		req = quickadd.Request{LinkURL: *url, SelectionText: *selection}
	}

	h := quickadd.New(a.repo,
		quickadd.WithFolder(a.cfg.QuickAddFolder),
		quickadd.WithLogger(a.log),
		quickadd.WithNotifier(printNotifier{}))
	_, err := h.Handle(ctx, req)
	return err
}

// printNotifier shows quick-add notifications on stdout.
type printNotifier struct{}

func (printNotifier) Notify(_ context.Context, n quickadd.Notification) {
	fmt.Printf("%s: %s\n", n.Title, n.Message)
}

// runCull checks every URL and reports (or deletes) dead links.
func (a *app) runCull(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cull", flag.ExitOnError)
	del := fs.Bool("delete", false, "delete bookmarks whose URL is gone")
	concurrency := fs.Int("concurrency", culler.DefaultConcurrency, "parallel requests")
	timeout := fs.Duration("timeout", culler.DefaultTimeout, "per request timeout")
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	bookmarks := a.repo.Bookmarks()
	started := time.Now()
	results := culler.CheckURLs(ctx, bookmarks, culler.Options{
		Concurrency:    *concurrency,
		Timeout:        *timeout,
		ExcludeDomains: a.cfg.CullExcludeDomains,
		OnProgress: func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\rChecking %d/%d", completed, total)
		},
	})
	fmt.Fprintln(os.Stderr)

	for _, r := range results {
		switch r.Status {
		case culler.Dead:
			fmt.Printf("DEAD  %d  %s  %s\n", r.StatusCode, r.Bookmark.Title, r.Bookmark.URL)
		case culler.Unreachable:
			fmt.Printf("DOWN  %s  %s  %s\n", r.Error, r.Bookmark.Title, r.Bookmark.URL)
		}
	}

	sum := culler.Summarize(results)
	fmt.Printf("%s checked in %s: %d healthy, %d dead, %d unreachable\n",
		humanize.Comma(int64(len(results))), time.Since(started).Round(time.Second),
		sum.Healthy, sum.Dead, sum.Unreachable)

	if !*del || sum.Dead == 0 {
		return nil
	}
	out, err := a.repo.Dispatch(ctx, repository.DeleteBookmarks{IDs: culler.DeadIDs(results)})
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d dead bookmarks\n", out.(int))
	return nil
}

// runServe runs the HTTP API until SIGINT or SIGTERM.
func (a *app) runServe(ctx context.Context, _ []string) error {
	d := deps.Deps{
		Logger:        a.log,
		StartTime:     time.Now(),
		Version:       version,
		Repo:          a.repo,
		QuickAdd:      quickadd.New(a.repo, quickadd.WithFolder(a.cfg.QuickAddFolder), quickadd.WithLogger(a.log)),
		ImportOptions: repository.ImportOptions{KeepDates: a.cfg.ImportKeepDates},
	}
	srv := httpserver.New(a.cfg, a.log, d)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// resolveBookmark finds a bookmark by id or exact URL.
func (a *app) resolveBookmark(arg string) (model.Bookmark, error) {
	if b, ok := a.repo.Bookmark(arg); ok {
		return b, nil
	}
	for _, b := range a.repo.Bookmarks() {
		if b.URL == arg {
			return b, nil
		}
	}
	return model.Bookmark{}, fmt.Errorf("bookmark %s: %w", arg, model.ErrNotFound)
}

// resolveFolder finds a folder by id, then by name.
func (a *app) resolveFolder(arg string) (model.Folder, error) {
	if f, ok := a.repo.Folder(arg); ok {
		return f, nil
	}
	if f, ok := a.repo.FolderByName(arg); ok {
		return f, nil
	}
	return model.Folder{}, fmt.Errorf("folder %s: %w", arg, model.ErrNotFound)
}

func folderNames(folders []model.Folder) map[string]string {
	names := make(map[string]string, len(folders))
	for _, f := range folders {
		names[f.ID] = f.Name
	}
	return names
}
