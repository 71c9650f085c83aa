package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProjectRow is a row of the remote "projects" table. Columns are snake_case.
type ProjectRow struct {
	ID          uuid.UUID                   `json:"id" gorm:"column:id;type:uuid;primaryKey;not null"`
	Title       string                      `json:"title" gorm:"column:title;type:text;not null"`
	Description string                      `json:"description" gorm:"column:description;type:text;not null"`
	ImageURL    string                      `json:"image_url" gorm:"column:image_url;type:text"`
	GithubLink  string                      `json:"github_link" gorm:"column:github_link;type:text"`
	HostedLink  string                      `json:"hosted_link" gorm:"column:hosted_link;type:text"`
	Tags        datatypes.JSONSlice[string] `json:"tags" gorm:"column:tags"`
	IsFeatured  bool                        `json:"is_featured" gorm:"column:is_featured;not null"`
	CreatedAt   time.Time                   `json:"created_at" gorm:"column:created_at;autoCreateTime;index:idx_projects_created_at,sort:desc"`
}

// TableName pins the table name to the one the site has always used.
func (ProjectRow) TableName() string {
	return "projects"
}

// camelCase field names of Project.
const (
	FieldLocalID     = "localId"
	FieldRemoteID    = "remoteId"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldImageURL    = "imageUrl"
	FieldGithubLink  = "githubLink"
	FieldHostedLink  = "hostedLink"
	FieldTags        = "tags"
	FieldIsFeatured  = "isFeatured"
	FieldCreatedAt   = "createdAt"
)

// FieldColumns maps every persisted Project field to its remote column.
// localId never leaves the process and has no column.
var FieldColumns = map[string]string{
	FieldRemoteID:    "id",
	FieldTitle:       "title",
	FieldDescription: "description",
	FieldImageURL:    "image_url",
	FieldGithubLink:  "github_link",
	FieldHostedLink:  "hosted_link",
	FieldTags:        "tags",
	FieldIsFeatured:  "is_featured",
	FieldCreatedAt:   "created_at",
}

var columnFields = func() map[string]string {
	m := make(map[string]string, len(FieldColumns))
	for field, column := range FieldColumns {
		m[column] = field
	}
	return m
}()

// ColumnFor returns the remote column for a camelCase field.
func ColumnFor(field string) (string, bool) {
	column, ok := FieldColumns[field]
	return column, ok
}

// FieldFor returns the camelCase field for a remote column.
func FieldFor(column string) (string, bool) {
	field, ok := columnFields[column]
	return field, ok
}

// ColumnPatch translates a camelCase field patch into column updates.
// Tags are converted to the jsonb column type.
func ColumnPatch(fields map[string]any) (map[string]any, error) {
	columns := make(map[string]any, len(fields))
	for field, value := range fields {
		column, ok := ColumnFor(field)
		if !ok || field == FieldRemoteID || field == FieldCreatedAt {
			return nil, fmt.Errorf("field %q is not updatable", field)
		}
		if tags, ok := value.([]string); ok {
			value = datatypes.JSONSlice[string](tags)
		}
		columns[column] = value
	}
	return columns, nil
}

// ToRow converts a project into a row for insertion. The row id is left for
// the remote table to assign unless the project already has one.
func ToRow(p Project) ProjectRow {
	row := ProjectRow{
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		GithubLink:  p.GithubLink,
		HostedLink:  p.HostedLink,
		Tags:        datatypes.JSONSlice[string](NormalizeTags(p.Tags)),
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
	}
	if p.RemoteID != nil {
		if id, err := uuid.Parse(*p.RemoteID); err == nil {
			row.ID = id
		}
	}
	return row
}

// FromRow converts a remote row into a project carrying localID.
func FromRow(row ProjectRow, localID string) Project {
	remoteID := row.ID.String()
	return Project{
		LocalID:     localID,
		RemoteID:    &remoteID,
		Title:       row.Title,
		Description: row.Description,
		ImageURL:    row.ImageURL,
		GithubLink:  row.GithubLink,
		HostedLink:  row.HostedLink,
		Tags:        NormalizeTags(row.Tags),
		IsFeatured:  row.IsFeatured,
		CreatedAt:   row.CreatedAt,
	}
}
