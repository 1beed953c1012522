package repository

import (
	"context"
	"fmt"

	"github.com/nikbrunner/marks/internal/model"
)

// Command is one of the mutations a presentation layer may request.
type Command interface {
	command()
}

type (
	AddBookmark struct {
		Params model.NewBookmarkParams
	}
	UpdateBookmark struct {
		ID    string
		Patch model.BookmarkPatch
	}
	DeleteBookmark struct {
		ID string
	}
	DeleteBookmarks struct {
		IDs []string
	}
	Reorder struct {
		MovedID  string
		TargetID string
	}
	SetBookmarkFolder struct {
		ID       string
		FolderID string
	}
	AddFolder struct {
		Name string
	}
	RenameFolder struct {
		ID   string
		Name string
	}
	DeleteFolder struct {
		ID string
	}
)

func (AddBookmark) command()       {}
func (UpdateBookmark) command()    {}
func (DeleteBookmark) command()    {}
func (DeleteBookmarks) command()   {}
func (Reorder) command()           {}
func (SetBookmarkFolder) command() {}
func (AddFolder) command()         {}
func (RenameFolder) command()      {}
func (DeleteFolder) command()      {}

// Dispatch runs cmd. The first return value is the created record for
// AddBookmark and AddFolder, the removed count for DeleteBookmarks, and nil
// otherwise.
func (r *Repository) Dispatch(ctx context.Context, cmd Command) (any, error) {
	switch c := cmd.(type) {
	case AddBookmark:
		return r.AddBookmark(ctx, c.Params)
	case UpdateBookmark:
		return nil, r.UpdateBookmark(ctx, c.ID, c.Patch)
	case DeleteBookmark:
		return nil, r.DeleteBookmark(ctx, c.ID)
	case DeleteBookmarks:
		return r.DeleteBookmarks(ctx, c.IDs)
	case Reorder:
		return nil, r.Reorder(ctx, c.MovedID, c.TargetID)
	case SetBookmarkFolder:
		return nil, r.SetBookmarkFolder(ctx, c.ID, c.FolderID)
	case AddFolder:
		return r.AddFolder(ctx, c.Name)
	case RenameFolder:
		return nil, r.RenameFolder(ctx, c.ID, c.Name)
	case DeleteFolder:
		return nil, r.DeleteFolder(ctx, c.ID)
	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
}
