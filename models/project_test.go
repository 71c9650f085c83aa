package models

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"trims and drops blanks", "React, Node.js ,  MongoDB", []string{"React", "Node.js", "MongoDB"}},
		{"empty input", "", []string{}},
		{"only separators", " , ,, ", []string{}},
		{"single tag", "Go", []string{"Go"}},
		{"keeps duplicates", "Go,Go", []string{"Go", "Go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.raw))
		})
	}
}

func TestNormalizeTags_NilGivesEmptySlice(t *testing.T) {
	tags := NormalizeTags(nil)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestProjectPatch_ApplyLeavesNilFieldsAlone(t *testing.T) {
	project := Project{LocalID: "a", Title: "old", Description: "keep", Tags: []string{"x"}}
	title := "new"
	tags := []string{" y ", ""}

	ProjectPatch{Title: &title, Tags: &tags}.Apply(&project)

	assert.Equal(t, "new", project.Title)
	assert.Equal(t, "keep", project.Description)
	assert.Equal(t, []string{"y"}, project.Tags)
	assert.Equal(t, "a", project.LocalID)
}

func TestProjectPatch_IsEmpty(t *testing.T) {
	assert.True(t, ProjectPatch{}.IsEmpty())
	featured := false
	assert.False(t, ProjectPatch{IsFeatured: &featured}.IsEmpty())
}

func TestFullPatch_CoversEveryMutableField(t *testing.T) {
	patch := FullPatch(Project{Title: "t", Tags: []string{"a"}})
	v := reflect.ValueOf(patch)
	for i := 0; i < v.NumField(); i++ {
		assert.False(t, v.Field(i).IsNil(), "field %s not set", v.Type().Field(i).Name)
	}
}

// Every Project json field except localId must have a column, and every
// column must exist on ProjectRow.
func TestFieldColumns_CoverProjectAndRow(t *testing.T) {
	rowColumns := map[string]bool{}
	for _, column := range getModelFields(ProjectRow{}) {
		rowColumns[column] = true
	}

	projectType := reflect.TypeOf(Project{})
	for i := 0; i < projectType.NumField(); i++ {
		field := strings.Split(projectType.Field(i).Tag.Get("json"), ",")[0]
		if field == FieldLocalID {
			_, ok := ColumnFor(field)
			assert.False(t, ok, "localId must not be persisted remotely")
			continue
		}
		column, ok := ColumnFor(field)
		require.True(t, ok, "no column for field %s", field)
		assert.True(t, rowColumns[column], "column %s missing on ProjectRow", column)

		back, ok := FieldFor(column)
		require.True(t, ok)
		assert.Equal(t, field, back)
	}
}

func TestColumnPatch(t *testing.T) {
	columns, err := ColumnPatch(map[string]any{
		FieldImageURL:   "/img.png",
		FieldIsFeatured: true,
		FieldTags:       []string{"Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"image_url":   "/img.png",
		"is_featured": true,
		"tags":        datatypes.JSONSlice[string]{"Go"},
	}, columns)

	for _, field := range []string{FieldLocalID, FieldRemoteID, FieldCreatedAt, "bogus"} {
		_, err := ColumnPatch(map[string]any{field: "x"})
		assert.Error(t, err, field)
	}
}

func TestRowRoundTripKeepsLocalID(t *testing.T) {
	remoteID := uuid.NewString()
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	project := Project{
		LocalID:     "local-1",
		RemoteID:    &remoteID,
		Title:       "Site",
		Description: "Portfolio",
		ImageURL:    DefaultImageURL,
		GithubLink:  "https://github.com/x/y",
		Tags:        []string{"Go", " "},
		IsFeatured:  true,
		CreatedAt:   createdAt,
	}

	row := ToRow(project)
	assert.Equal(t, remoteID, row.ID.String())
	assert.Equal(t, datatypes.JSONSlice[string]{"Go"}, row.Tags)

	back := FromRow(row, "local-1")
	project.Tags = []string{"Go"}
	assert.Equal(t, project, back)
}

func TestToRow_WithoutRemoteIDLeavesIDUnset(t *testing.T) {
	row := ToRow(Project{LocalID: "local-1", Title: "x"})
	assert.Equal(t, uuid.Nil, row.ID)
}

func TestProjectClone_DoesNotAlias(t *testing.T) {
	remoteID := "r"
	original := Project{RemoteID: &remoteID, Tags: []string{"a"}}
	clone := original.Clone()
	*clone.RemoteID = "changed"
	clone.Tags[0] = "changed"

	assert.Equal(t, "r", *original.RemoteID)
	assert.Equal(t, "a", original.Tags[0])
}

func TestProjectHasID(t *testing.T) {
	remoteID := "remote"
	p := Project{LocalID: "local", RemoteID: &remoteID}
	assert.True(t, p.HasID("local"))
	assert.True(t, p.HasID("remote"))
	assert.False(t, p.HasID(""))
	assert.False(t, p.HasID("other"))
}

func TestFindColumnMismatches(t *testing.T) {
	mismatches := findColumnMismatches(
		[]string{"id", "title", "legacy_slug"},
		getModelFields(ProjectRow{}),
	)
	assert.Equal(t, []string{"legacy_slug"}, mismatches)
}

func TestDemoProjects(t *testing.T) {
	demo := DemoProjects()
	require.Len(t, demo, 3)
	for _, p := range demo {
		assert.NotEmpty(t, p.LocalID)
		assert.Nil(t, p.RemoteID)
		assert.NotEmpty(t, p.Title)
	}
}
