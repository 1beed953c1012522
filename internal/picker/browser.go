package picker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/repository"
	"github.com/nikbrunner/marks/internal/search"
)

// Source is the state the browser renders and the sink for its commands.
// *repository.Repository satisfies it.
type Source interface {
	Bookmarks() []model.Bookmark
	Folders() []model.Folder
	Dispatch(ctx context.Context, cmd repository.Command) (any, error)
}

// dispatchedMsg reports a finished command.
type dispatchedMsg struct {
	status string
	err    error
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) BrowserOption {
	return func(b *Browser) { b.copy = write }
}

// WithNow sets the clock used for relative dates.
func WithNow(now func() time.Time) BrowserOption {
	return func(b *Browser) { b.now = now }
}

// Browser lists, filters and edits the collection.
//
// Keys: / filter, Tab/Shift+Tab cycle folder, j/k move, J/K reorder,
// f file into next folder, y copy URL, dd delete, Enter open, q quit.
type Browser struct {
	ctx  context.Context
	src  Source
	copy func(string) error
	now  func() time.Time

	filter    textinput.Model
	filtering bool
	folderSel int // index into selectors()

	bookmarks []model.Bookmark
	folders   []model.Folder
	result    search.Result

	cursor        int
	pendingDelete bool
	status        string
	statusErr     bool

	selected *model.Bookmark
	quitting bool
	width    int
	height   int
}

// NewBrowser creates a Browser over src.
func NewBrowser(ctx context.Context, src Source, opts ...BrowserOption) Browser {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search title, url, description, tags"

	b := Browser{
		ctx:    ctx,
		src:    src,
		copy:   clipboard.WriteAll,
		now:    time.Now,
		filter: ti,
		width:  80,
		height: 24,
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.refresh()
	return b
}

// selectors lists the folder filters Tab cycles through.
func (b Browser) selectors() []string {
	out := make([]string, 0, len(b.folders)+2)
	out = append(out, search.AllFolders, search.NoFolder)
	for _, f := range b.folders {
		out = append(out, f.ID)
	}
	return out
}

func (b Browser) folderFilter() string {
	return b.selectors()[b.folderSel]
}

func (b Browser) folderLabel(sel string) string {
	switch sel {
	case search.AllFolders:
		return "All"
	case search.NoFolder:
		return "Unfiled"
	}
	for _, f := range b.folders {
		if f.ID == sel {
			return f.Name
		}
	}
	return "?"
}

// refresh re-reads the source and re-applies the filter.
func (b *Browser) refresh() {
	b.bookmarks = b.src.Bookmarks()
	b.folders = b.src.Folders()
	if b.folderSel >= len(b.folders)+2 {
		b.folderSel = 0
	}
	b.result = search.Filter(b.bookmarks, b.filter.Value(), b.folderFilter())
	b.clampCursor()
}

func (b *Browser) clampCursor() {
	if b.cursor >= len(b.result.Bookmarks) {
		b.cursor = len(b.result.Bookmarks) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

func (b Browser) current() (model.Bookmark, bool) {
	if b.cursor < len(b.result.Bookmarks) {
		return b.result.Bookmarks[b.cursor], true
	}
	return model.Bookmark{}, false
}

func (b *Browser) setStatus(msg string, isErr bool) {
	b.status = msg
	b.statusErr = isErr
}

func (b Browser) dispatch(cmd repository.Command, status string) tea.Cmd {
	src, ctx := b.src, b.ctx
	return func() tea.Msg {
		_, err := src.Dispatch(ctx, cmd)
		return dispatchedMsg{status: status, err: err}
	}
}

// Init implements tea.Model.
func (b Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		return b, nil

	case dispatchedMsg:
		if msg.err != nil {
			b.setStatus("Error: "+msg.err.Error(), true)
		} else {
			b.setStatus(msg.status, false)
		}
		b.refresh()
		return b, nil

	case tea.KeyMsg:
		if b.filtering {
			return b.updateFilter(msg)
		}
		return b.updateNormal(msg)
	}

	return b, nil
}

func (b Browser) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		b.quitting = true
		return b, tea.Quit
	case "esc":
		b.filtering = false
		b.filter.Blur()
		b.filter.SetValue("")
		b.refresh()
		return b, nil
	case "enter":
		b.filtering = false
		b.filter.Blur()
		return b, nil
	}

	var cmd tea.Cmd
	b.filter, cmd = b.filter.Update(msg)
	b.cursor = 0
	b.refresh()
	return b, cmd
}

func (b Browser) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "d" {
		b.pendingDelete = false
	}

	switch key {
	case "ctrl+c", "esc", "q":
		b.quitting = true
		return b, tea.Quit

	case "enter":
		if bm, ok := b.current(); ok {
			b.selected = &bm
			return b, tea.Quit
		}
		return b, nil

	case "down", "j":
		if b.cursor < len(b.result.Bookmarks)-1 {
			b.cursor++
		}
		return b, nil

	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
		return b, nil

	case "/":
		b.filtering = true
		return b, b.filter.Focus()

	case "tab":
		b.folderSel = (b.folderSel + 1) % len(b.selectors())
		b.cursor = 0
		b.refresh()
		return b, nil

	case "shift+tab":
		n := len(b.selectors())
		b.folderSel = (b.folderSel - 1 + n) % n
		b.cursor = 0
		b.refresh()
		return b, nil

	case "y":
		bm, ok := b.current()
		if !ok {
			return b, nil
		}
		if err := b.copy(bm.URL); err != nil {
			b.setStatus("Error: copy failed: "+err.Error(), true)
		} else {
			b.setStatus("Copied "+bm.URL, false)
		}
		return b, nil

	case "d":
		bm, ok := b.current()
		if !ok {
			return b, nil
		}
		if !b.pendingDelete {
			b.pendingDelete = true
			b.setStatus(fmt.Sprintf("Press d again to delete %q", bm.Title), false)
			return b, nil
		}
		b.pendingDelete = false
		return b, b.dispatch(repository.DeleteBookmark{ID: bm.ID}, "Deleted "+bm.Title)

	case "J", "K":
		bm, ok := b.current()
		if !ok {
			return b, nil
		}
		target := b.cursor + 1
		if key == "K" {
			target = b.cursor - 1
		}
		if target < 0 || target >= len(b.result.Bookmarks) {
			return b, nil
		}
		b.cursor = target
		return b, b.dispatch(repository.Reorder{MovedID: bm.ID, TargetID: b.result.Bookmarks[target].ID}, "")

	case "f":
		bm, ok := b.current()
		if !ok {
			return b, nil
		}
		next := b.nextFolder(bm.Folder)
		return b, b.dispatch(repository.SetBookmarkFolder{ID: bm.ID, FolderID: next},
			fmt.Sprintf("Moved %q to %s", bm.Title, b.folderLabel(next)))
	}

	return b, nil
}

// nextFolder returns the folder after current, wrapping to unfiled.
func (b Browser) nextFolder(current string) string {
	ids := make([]string, 0, len(b.folders)+1)
	ids = append(ids, search.NoFolder)
	for _, f := range b.folders {
		ids = append(ids, f.ID)
	}
	for i, id := range ids {
		if id == current {
			return ids[(i+1)%len(ids)]
		}
	}
	return search.NoFolder
}

// View implements tea.Model.
func (b Browser) View() string {
	if b.quitting {
		return ""
	}

	var s strings.Builder

	header := fmt.Sprintf("marks  [%s]  %d/%d", b.folderLabel(b.folderFilter()), len(b.result.Bookmarks), b.result.Total)
	s.WriteString(headerStyle.Render(header))
	s.WriteString("\n")

	if b.filtering || b.filter.Value() != "" {
		s.WriteString(b.filter.View())
		s.WriteString("\n")
	}
	s.WriteString("\n")

	switch b.result.Outcome() {
	case search.OutcomeEmptyCollection:
		s.WriteString(normalStyle.Render("No bookmarks yet. Add one with `marks add` or import a file."))
		s.WriteString("\n")
	case search.OutcomeNoMatches:
		s.WriteString(normalStyle.Render("No matches."))
		s.WriteString("\n")
	default:
		b.renderList(&s)
	}

	s.WriteString("\n")
	if b.status != "" {
		if b.statusErr {
			s.WriteString(errorStyle.Render(b.status))
		} else {
			s.WriteString(statusStyle.Render(b.status))
		}
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("/ filter  tab folder  j/k move  J/K reorder  f file  y copy  dd delete  enter open  q quit"))

	return s.String()
}

func (b Browser) renderList(s *strings.Builder) {
	names := make(map[string]string, len(b.folders))
	for _, f := range b.folders {
		names[f.ID] = f.Name
	}

	// Two lines per entry, leave room for header and footer
	visible := max(1, (b.height-8)/2)
	start := 0
	if b.cursor >= visible {
		start = b.cursor - visible + 1
	}
	end := min(len(b.result.Bookmarks), start+visible)

	now := b.now()
	for i := start; i < end; i++ {
		bm := b.result.Bookmarks[i]

		cursor := "  "
		style := normalStyle
		if i == b.cursor {
			cursor = "> "
			style = selectedStyle
		}

		line := cursor + style.Render(bm.Title)
		if name, ok := names[bm.Folder]; ok {
			line += " " + folderStyle.Render("["+name+"]")
		}
		s.WriteString(line)
		s.WriteString("\n")

		meta := bm.URL + "  " + humanize.RelTime(model.Time(bm.CreatedAt), now, "ago", "from now")
		s.WriteString("   " + urlStyle.Render(meta))
		s.WriteString("\n")
	}
}

// SelectedBookmark returns the bookmark chosen with Enter.
func (b Browser) SelectedBookmark() (model.Bookmark, bool) {
	if b.selected == nil {
		return model.Bookmark{}, false
	}
	return *b.selected, true
}
