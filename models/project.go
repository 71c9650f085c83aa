package models

import (
	"strings"
	"time"
)

// DefaultImageURL is used when a project is created without an image.
const DefaultImageURL = "/placeholder.svg"

// Project is one portfolio entry as held in memory and in the local cache.
type Project struct {
	LocalID     string    `json:"localId"`
	RemoteID    *string   `json:"remoteId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	GithubLink  string    `json:"githubLink"`
	HostedLink  string    `json:"hostedLink"`
	Tags        []string  `json:"tags"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Clone returns a deep copy so snapshots handed to callers never alias store state.
func (p Project) Clone() Project {
	c := p
	if p.RemoteID != nil {
		id := *p.RemoteID
		c.RemoteID = &id
	}
	if p.Tags != nil {
		c.Tags = append([]string{}, p.Tags...)
	}
	return c
}

// HasID reports whether id names this project, by local id or remote id.
func (p Project) HasID(id string) bool {
	if id == "" {
		return false
	}
	return p.LocalID == id || (p.RemoteID != nil && *p.RemoteID == id)
}

// NewProjectInput is the raw form input for a new project. Tags is the
// comma-separated string typed by the admin.
type NewProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	GithubLink  string `json:"githubLink"`
	HostedLink  string `json:"hostedLink"`
	Tags        string `json:"tags"`
	IsFeatured  bool   `json:"isFeatured"`
}

// ProjectPatch is a shallow partial update. Nil fields are left untouched.
type ProjectPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	GithubLink  *string   `json:"githubLink,omitempty"`
	HostedLink  *string   `json:"hostedLink,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	IsFeatured  *bool     `json:"isFeatured,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p ProjectPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ImageURL == nil &&
		p.GithubLink == nil && p.HostedLink == nil && p.Tags == nil && p.IsFeatured == nil
}

// Apply merges the patch into p. Patched tags are normalised.
func (p ProjectPatch) Apply(project *Project) {
	if p.Title != nil {
		project.Title = *p.Title
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.ImageURL != nil {
		project.ImageURL = *p.ImageURL
	}
	if p.GithubLink != nil {
		project.GithubLink = *p.GithubLink
	}
	if p.HostedLink != nil {
		project.HostedLink = *p.HostedLink
	}
	if p.Tags != nil {
		project.Tags = NormalizeTags(*p.Tags)
	}
	if p.IsFeatured != nil {
		project.IsFeatured = *p.IsFeatured
	}
}

// Fields returns the patch as camelCase field name -> value, the form the
// column map translates into a remote update.
func (p ProjectPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Title != nil {
		fields[FieldTitle] = *p.Title
	}
	if p.Description != nil {
		fields[FieldDescription] = *p.Description
	}
	if p.ImageURL != nil {
		fields[FieldImageURL] = *p.ImageURL
	}
	if p.GithubLink != nil {
		fields[FieldGithubLink] = *p.GithubLink
	}
	if p.HostedLink != nil {
		fields[FieldHostedLink] = *p.HostedLink
	}
	if p.Tags != nil {
		fields[FieldTags] = NormalizeTags(*p.Tags)
	}
	if p.IsFeatured != nil {
		fields[FieldIsFeatured] = *p.IsFeatured
	}
	return fields
}

// FullPatch returns a patch carrying every mutable field of p.
func FullPatch(p Project) ProjectPatch {
	tags := append([]string{}, p.Tags...)
	return ProjectPatch{
		Title:       &p.Title,
		Description: &p.Description,
		ImageURL:    &p.ImageURL,
		GithubLink:  &p.GithubLink,
		HostedLink:  &p.HostedLink,
		Tags:        &tags,
		IsFeatured:  &p.IsFeatured,
	}
}

// ParseTags splits comma separated input into trimmed, non-empty tags.
// "React, Node.js ,  MongoDB" -> ["React", "Node.js", "MongoDB"]; "" -> [].
func ParseTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

// NormalizeTags trims every tag and drops the empty ones.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
