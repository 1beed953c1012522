package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/storage"
)

// Store keys. Each holds a JSON array of records.
const (
	KeyBookmarks = "bookmarks"
	KeyFolders   = "folders"
)

// ErrPersist wraps any failure to read from or write to the Store.
var ErrPersist = errors.New("operation failed")

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(r *Repository) { r.log = log }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

// Repository owns the bookmark and folder collections of one session.
//
// Every mutation holds the write lock until the Store has accepted the new
// state, so callers from the CLI, the terminal browser and the HTTP server
// are serialized. Accessors hand out copies.
type Repository struct {
	mu    sync.RWMutex
	store storage.Storage
	log   logger.Logger
	now   func() time.Time
	newID func() string

	coll  model.Collection
	saved model.Collection // last state the Store accepted
	stale bool             // a write failed; re-read the Store before the next mutation
}

// New creates a Repository backed by store. Call Load before use.
func New(store storage.Storage, opts ...Option) *Repository {
	r := &Repository{
		store: store,
		log:   logger.NewNop(),
		now:   time.Now,
		newID: model.GenerateID,
		coll:  *model.NewCollection(),
		saved: *model.NewCollection(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the in-memory state with what the Store holds.
// An absent key is an empty collection.
func (r *Repository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *Repository) load(ctx context.Context) error {
	values, err := r.store.Get(ctx, KeyBookmarks, KeyFolders)
	if err != nil {
		return fmt.Errorf("%w: load: %w", ErrPersist, err)
	}

	coll := model.NewCollection()
	if data := values[KeyBookmarks]; len(data) > 0 {
		if err := json.Unmarshal(data, &coll.Bookmarks); err != nil {
			return fmt.Errorf("decode bookmarks: %w", err)
		}
	}
	if data := values[KeyFolders]; len(data) > 0 {
		if err := json.Unmarshal(data, &coll.Folders); err != nil {
			return fmt.Errorf("decode folders: %w", err)
		}
	}

	// Stored "null" decodes to nil; keep the never-nil guarantees
	if coll.Bookmarks == nil {
		coll.Bookmarks = []model.Bookmark{}
	}
	if coll.Folders == nil {
		coll.Folders = []model.Folder{}
	}
	for i := range coll.Bookmarks {
		if coll.Bookmarks[i].Tags == nil {
			coll.Bookmarks[i].Tags = []string{}
		}
	}

	r.coll = *coll
	r.saved = *coll.Clone()
	r.stale = false
	r.log.Debug("collection loaded",
		logger.Int("bookmarks", len(coll.Bookmarks)),
		logger.Int("folders", len(coll.Folders)))
	return nil
}

// sync re-reads the Store when a previous write failed.
func (r *Repository) sync(ctx context.Context) error {
	if !r.stale {
		return nil
	}
	r.log.Warn("re-syncing collection from store")
	return r.load(ctx)
}

// persist writes the given keys in a single Store call.
func (r *Repository) persist(ctx context.Context, keys ...string) error {
	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		var (
			data []byte
			err  error
		)
		switch key {
		case KeyBookmarks:
			data, err = json.Marshal(r.coll.Bookmarks)
		case KeyFolders:
			data, err = json.Marshal(r.coll.Folders)
		default:
			err = fmt.Errorf("unknown key %q", key)
		}
		if err != nil {
			r.coll = *r.saved.Clone()
			return fmt.Errorf("%w: encode %s: %w", ErrPersist, key, err)
		}
		values[key] = data
	}

	if err := r.store.Set(ctx, values); err != nil {
		// Readers only ever see what the Store accepted
		r.coll = *r.saved.Clone()
		r.stale = true
		r.log.Error("persist failed", logger.String("keys", strings.Join(keys, ",")), logger.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	r.saved = *r.coll.Clone()
	return nil
}

// Bookmarks returns a copy of all bookmarks in stored order.
func (r *Repository) Bookmarks() []model.Bookmark {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Bookmark, len(r.coll.Bookmarks))
	for i, b := range r.coll.Bookmarks {
		out[i] = b.Clone()
	}
	return out
}

// Folders returns a copy of all folders in stored order.
func (r *Repository) Folders() []model.Folder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.coll.Folders)
}

// Snapshot returns a deep copy of both collections.
func (r *Repository) Snapshot() model.Collection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.coll.Clone()
}

// Bookmark looks up a bookmark by id.
func (r *Repository) Bookmark(id string) (model.Bookmark, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b := r.coll.GetBookmarkByID(id); b != nil {
		return b.Clone(), true
	}
	return model.Bookmark{}, false
}

// Folder looks up a folder by id.
func (r *Repository) Folder(id string) (model.Folder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if f := r.coll.GetFolderByID(id); f != nil {
		return *f, true
	}
	return model.Folder{}, false
}

// FolderByName looks up the first folder with exactly this name.
func (r *Repository) FolderByName(name string) (model.Folder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if f := r.coll.GetFolderByName(name); f != nil {
		return *f, true
	}
	return model.Folder{}, false
}

// HasBookmarkURL reports whether url is already bookmarked.
func (r *Repository) HasBookmarkURL(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coll.HasBookmarkURL(url)
}

// FolderCounts returns the number of bookmarks per folder id.
func (r *Repository) FolderCounts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coll.FolderCounts()
}

func (r *Repository) nowMillis() int64 {
	return model.Millis(r.now())
}

func (r *Repository) checkFolder(folderID string) error {
	if folderID != "" && r.coll.FolderIndex(folderID) < 0 {
		return fmt.Errorf("folder %s: %w", folderID, model.ErrNotFound)
	}
	return nil
}

// AddBookmark validates params and appends a new bookmark.
func (r *Repository) AddBookmark(ctx context.Context, params model.NewBookmarkParams) (model.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sync(ctx); err != nil {
		return model.Bookmark{}, err
	}

	params, err := params.Normalize()
	if err != nil {
		return model.Bookmark{}, err
	}
	if r.coll.HasBookmarkURL(params.URL) {
		return model.Bookmark{}, model.ErrDuplicateURL
	}
	if err := r.checkFolder(params.Folder); err != nil {
		return model.Bookmark{}, err
	}

	b := model.NewBookmark(r.newID(), params, r.now())
	r.coll.Bookmarks = append(r.coll.Bookmarks, b)

	if err := r.persist(ctx, KeyBookmarks); err != nil {
		return model.Bookmark{}, err
	}

	r.log.Debug("bookmark added", logger.String("id", b.ID), logger.String("url", b.URL))
	return b.Clone(), nil
}

// UpdateBookmark merges patch into the bookmark with id.
// Id, creation time and position are kept; UpdatedAt is refreshed.
func (r *Repository) UpdateBookmark(ctx context.Context, id string, patch model.BookmarkPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sync(ctx); err != nil {
		return err
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	i := r.coll.BookmarkIndex(id)
	if i < 0 {
		return fmt.Errorf("bookmark %s: %w", id, model.ErrNotFound)
	}
	if patch.Folder != nil {
		if err := r.checkFolder(*patch.Folder); err != nil {
			return err
		}
	}

	updated := r.coll.Bookmarks[i].Clone()
	patch.Apply(&updated)
	if r.coll.URLTakenByOther(updated.URL, id) {
		return model.ErrDuplicateURL
	}
	updated.UpdatedAt = max(r.nowMillis(), updated.CreatedAt)
	r.coll.Bookmarks[i] = updated

	return r.persist(ctx, KeyBookmarks)
}

// DeleteBookmark removes the bookmark with id. Unknown ids are ignored.
func (r *Repository) DeleteBookmark(ctx context.Context, id string) error {
	_, err := r.DeleteBookmarks(ctx, []string{id})
	return err
}

// DeleteBookmarks removes every bookmark whose id is listed and returns how
// many were removed. Nothing is written when no id matches.
func (r *Repository) DeleteBookmarks(ctx context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sync(ctx); err != nil {
		return 0, err
	}

	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}

	before := len(r.coll.Bookmarks)
	r.coll.Bookmarks = slices.DeleteFunc(r.coll.Bookmarks, func(b model.Bookmark) bool {
		return remove[b.ID]
	})
	removed := before - len(r.coll.Bookmarks)
	if removed == 0 {
		return 0, nil
	}

	if err := r.persist(ctx, KeyBookmarks); err != nil {
		return removed, err
	}
	return removed, nil
}

// Reorder moves a bookmark to the position the target held before the move.
// Unknown ids or moving onto itself change nothing.
func (r *Repository) Reorder(ctx context.Context, movedID, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sync(ctx); err != nil {
		return err
	}
	if movedID == targetID {
		return nil
	}

	from := r.coll.BookmarkIndex(movedID)
	to := r.coll.BookmarkIndex(targetID)
	if from < 0 || to < 0 {
		return nil
	}

	moved := r.coll.Bookmarks[from]
	r.coll.Bookmarks = slices.Delete(r.coll.Bookmarks, from, from+1)
	r.coll.Bookmarks = slices.Insert(r.coll.Bookmarks, to, moved)

	return r.persist(ctx, KeyBookmarks)
}

// SetBookmarkFolder files a bookmark under folderID, or unfiles it with "".
func (r *Repository) SetBookmarkFolder(ctx context.Context, id, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sync(ctx); err != nil {
		return err
	}

	i := r.coll.BookmarkIndex(id)
	if i < 0 {
		return fmt.Errorf("bookmark %s: %w", id, model.ErrNotFound)
	}
	if err := r.checkFolder(folderID); err != nil {
		return err
	}

	b := &r.coll.Bookmarks[i]
	b.Folder = folderID
	b.UpdatedAt = max(r.nowMillis(), b.CreatedAt)

	return r.persist(ctx, KeyBookmarks)
}

// AddFolder creates a folder. Names need not be unique.
func (r *Repository) AddFolder(ctx context.Context, name string) (model.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sync(ctx); err != nil {
		return model.Folder{}, err
	}

	name, err := model.NormalizeName(name)
	if err != nil {
		return model.Folder{}, err
	}

	f := model.NewFolder(r.newID(), name, r.now())
	r.coll.Folders = append(r.coll.Folders, f)

	if err := r.persist(ctx, KeyFolders); err != nil {
		return model.Folder{}, err
	}

	r.log.Debug("folder added", logger.String("id", f.ID), logger.String("name", f.Name))
	return f, nil
}

// RenameFolder changes a folder's name.
func (r *Repository) RenameFolder(ctx context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sync(ctx); err != nil {
		return err
	}

	name, err := model.NormalizeName(name)
	if err != nil {
		return err
	}
	f := r.coll.GetFolderByID(id)
	if f == nil {
		return fmt.Errorf("folder %s: %w", id, model.ErrNotFound)
	}
	f.Name = name

	return r.persist(ctx, KeyFolders)
}

// DeleteFolder removes a folder and unfiles its bookmarks.
// Both collections are written together. Unknown ids are ignored.
func (r *Repository) DeleteFolder(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sync(ctx); err != nil {
		return err
	}

	i := r.coll.FolderIndex(id)
	if i < 0 {
		return nil
	}
	r.coll.Folders = slices.Delete(r.coll.Folders, i, i+1)

	unfiled := 0
	for j := range r.coll.Bookmarks {
		if r.coll.Bookmarks[j].Folder == id {
			r.coll.Bookmarks[j].Folder = ""
			unfiled++
		}
	}

	if err := r.persist(ctx, KeyFolders, KeyBookmarks); err != nil {
		return err
	}

	r.log.Debug("folder deleted", logger.String("id", id), logger.Int("unfiled", unfiled))
	return nil
}
