// Package store holds the project catalog for the running site: an in-memory
// list mirrored synchronously into a local cache and pushed best-effort to the
// remote projects table.
package store

import (
	"context"

	"github.com/rpupo63/portfolio-backend/models"
)

// ProjectsCacheKey is the local cache key holding the JSON project list.
const ProjectsCacheKey = "portfolioProjects"

// RemoteTable is the row store behind the "projects" table. Keys of an update
// patch are column names.
type RemoteTable interface {
	// Select returns every row ordered by created_at, newest first.
	Select(ctx context.Context) ([]models.ProjectRow, error)
	// Insert stores row and returns it as persisted, including its id.
	Insert(ctx context.Context, row *models.ProjectRow) (*models.ProjectRow, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
}

// LocalCache is a synchronous persistent key/value surface.
type LocalCache interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}
