package model

// Collection holds all bookmarks and folders in their stored order.
type Collection struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewCollection creates an empty Collection with initialized slices.
func NewCollection() *Collection {
	return &Collection{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
	}
}

// GetBookmarksInFolder returns bookmarks tagged with the given folder.
// Pass "" for bookmarks without a folder.
func (c *Collection) GetBookmarksInFolder(folderID string) []Bookmark {
	var result []Bookmark
	for _, b := range c.Bookmarks {
		if b.Folder == folderID {
			result = append(result, b)
		}
	}
	return result
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (c *Collection) GetFolderByID(id string) *Folder {
	if i := c.FolderIndex(id); i >= 0 {
		return &c.Folders[i]
	}
	return nil
}

// GetFolderByName finds the first folder with exactly this name.
func (c *Collection) GetFolderByName(name string) *Folder {
	for i := range c.Folders {
		if c.Folders[i].Name == name {
			return &c.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (c *Collection) GetBookmarkByID(id string) *Bookmark {
	if i := c.BookmarkIndex(id); i >= 0 {
		return &c.Bookmarks[i]
	}
	return nil
}

// BookmarkIndex returns the position of the bookmark with id, or -1.
func (c *Collection) BookmarkIndex(id string) int {
	for i := range c.Bookmarks {
		if c.Bookmarks[i].ID == id {
			return i
		}
	}
	return -1
}

// FolderIndex returns the position of the folder with id, or -1.
func (c *Collection) FolderIndex(id string) int {
	for i := range c.Folders {
		if c.Folders[i].ID == id {
			return i
		}
	}
	return -1
}

// HasBookmarkURL checks whether any bookmark already uses url.
func (c *Collection) HasBookmarkURL(url string) bool {
	return c.bookmarkURLOwner(url) != ""
}

// URLTakenByOther reports whether a bookmark other than id already uses url.
func (c *Collection) URLTakenByOther(url, id string) bool {
	owner := c.bookmarkURLOwner(url)
	return owner != "" && owner != id
}

func (c *Collection) bookmarkURLOwner(url string) string {
	for _, b := range c.Bookmarks {
		if b.URL == url {
			return b.ID
		}
	}
	return ""
}

// FolderCounts returns the number of bookmarks tagged with each folder ID.
func (c *Collection) FolderCounts() map[string]int {
	counts := make(map[string]int, len(c.Folders))
	for _, b := range c.Bookmarks {
		if b.Folder != "" {
			counts[b.Folder]++
		}
	}
	return counts
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		Folders:   make([]Folder, len(c.Folders)),
		Bookmarks: make([]Bookmark, len(c.Bookmarks)),
	}
	copy(out.Folders, c.Folders)
	for i, b := range c.Bookmarks {
		out.Bookmarks[i] = b.Clone()
	}
	return out
}
