package deps

import (
	"time"

	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/quickadd"
	"github.com/nikbrunner/marks/internal/repository"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	TimeNow       func() time.Time         // for testing, defaults to time.Now
	AllowedHosts  []string                 // Host headers allowed to access the API
	Repo          *repository.Repository   // Bookmark repository shared with the CLI session
	QuickAdd      *quickadd.Handler        // Context menu add path
	ImportOptions repository.ImportOptions // Merge policy for POST /api/import
	MaxImportSize int64                    // Upload limit in bytes
}

// Now returns the current time from TimeNow or the wall clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
