package turso

import (
	"database/sql"

	"github.com/emiliopalmerini/huesite/internal/ports"
)

// Repositories holds the turso repository implementations.
type Repositories struct {
	Stylesheets ports.StylesheetStore
	Runs        *CompileRunRepository
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Stylesheets: NewStylesheetRepository(db),
		Runs:        NewCompileRunRepository(db),
	}
}
