// Package quickadd handles the one-click "Add to Bookmarks" action the browser
// extension sends for the current page or a clicked link.
package quickadd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/repository"
)

const (
	defaultTitle      = "New Bookmark"
	notificationTitle = "Bookmark Manager"
	addedTitle        = "Bookmark Added"
	duplicateMessage  = "This page is already bookmarked"
)

// Request describes a context menu click. LinkURL is set when a link was
// clicked; otherwise the page fields are used.
type Request struct {
	LinkURL       string `json:"linkUrl"`
	SelectionText string `json:"selectionText"`
	PageURL       string `json:"pageUrl"`
	TabURL        string `json:"tabUrl"`
	TabTitle      string `json:"tabTitle"`
}

// resolve picks the URL and title to save.
func (r Request) resolve() (url, title string) {
	if link := strings.TrimSpace(r.LinkURL); link != "" {
		title = strings.TrimSpace(r.SelectionText)
		if title == "" {
			title = link
		}
		return link, title
	}

	url = strings.TrimSpace(r.PageURL)
	if url == "" {
		url = strings.TrimSpace(r.TabURL)
	}
	title = strings.TrimSpace(r.TabTitle)
	if title == "" {
		title = defaultTitle
	}
	return url, title
}

// Status is the outcome of a quick-add.
type Status string

const (
	StatusIgnored   Status = "ignored"
	StatusDuplicate Status = "duplicate"
	StatusAdded     Status = "added"
)

// Response reports what Handle did.
type Response struct {
	Status   Status          `json:"status"`
	Bookmark *model.Bookmark `json:"bookmark,omitempty"`
}

// Notification is a short user-facing message.
type Notification struct {
	Title   string
	Message string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) Notify(_ context.Context, note Notification) {
	n.Log.Info(note.Message, logger.String("title", note.Title))
}

// Handler saves quick-add requests into a Repository.
type Handler struct {
	repo     *repository.Repository
	folder   string
	notifier Notifier
	log      logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithFolder files new bookmarks under the folder with this name, creating
// it when missing. Empty means unfiled.
func WithFolder(name string) Option {
	return func(h *Handler) { h.folder = strings.TrimSpace(name) }
}

// WithNotifier replaces the default log notifier.
func WithNotifier(n Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// New creates a Handler.
func New(repo *repository.Repository, opts ...Option) *Handler {
	h := &Handler{
		repo: repo,
		log:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.notifier == nil {
		h.notifier = LogNotifier{Log: h.log}
	}
	return h
}

// Handle adds the clicked page or link unless its URL is already saved.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	url, title := req.resolve()
	if url == "" {
		h.log.Debug("quick-add without url ignored")
		return Response{Status: StatusIgnored}, nil
	}

	if h.repo.HasBookmarkURL(url) {
		return h.duplicate(ctx, url), nil
	}

	folderID, err := h.folderID(ctx)
	if err != nil {
		return Response{}, err
	}

	b, err := h.repo.AddBookmark(ctx, model.NewBookmarkParams{
		Title:  title,
		URL:    url,
		Folder: folderID,
	})
	if errors.Is(err, model.ErrDuplicateURL) {
		return h.duplicate(ctx, url), nil
	}
	if err != nil {
		return Response{}, fmt.Errorf("quick-add: %w", err)
	}

	h.notifier.Notify(ctx, Notification{
		Title:   addedTitle,
		Message: fmt.Sprintf("%q has been added to your bookmarks", b.Title),
	})
	return Response{Status: StatusAdded, Bookmark: &b}, nil
}

func (h *Handler) duplicate(ctx context.Context, url string) Response {
	h.log.Debug("quick-add duplicate", logger.String("url", url))
	h.notifier.Notify(ctx, Notification{Title: notificationTitle, Message: duplicateMessage})
	return Response{Status: StatusDuplicate}
}

func (h *Handler) folderID(ctx context.Context) (string, error) {
	if h.folder == "" {
		return "", nil
	}
	if f, ok := h.repo.FolderByName(h.folder); ok {
		return f.ID, nil
	}
	f, err := h.repo.AddFolder(ctx, h.folder)
	if err != nil {
		return "", fmt.Errorf("quick-add folder: %w", err)
	}
	return f.ID, nil
}
