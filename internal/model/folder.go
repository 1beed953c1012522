package model

import (
	"fmt"
	"strings"
	"time"
)

// Folder is a flat tag used to group bookmarks. Folders do not nest and
// do not own their bookmarks.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// NewFolder creates a Folder created at now.
func NewFolder(id, name string, now time.Time) Folder {
	return Folder{
		ID:        id,
		Name:      name,
		CreatedAt: Millis(now),
	}
}

// NormalizeName trims a folder name and rejects blank names.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name", ErrEmptyField)
	}
	return name, nil
}
