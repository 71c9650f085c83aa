package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

// ProjectRepo is the remote "projects" table.
type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectRepo) GetDB() *gorm.DB {
	return r.db
}

// Select returns all projects, newest first
func (r *ProjectRepo) Select(ctx context.Context) ([]models.ProjectRow, error) {
	var rows []models.ProjectRow
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	return rows, nil
}

// Insert stores a new project and returns it with its assigned id and timestamp
func (r *ProjectRepo) Insert(ctx context.Context, row *models.ProjectRow) (*models.ProjectRow, error) {
	inserted := *row
	if inserted.ID == uuid.Nil {
		inserted.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(&inserted).Error; err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return &inserted, nil
}

// Update applies a column patch to the project with the given id
func (r *ProjectRepo) Update(ctx context.Context, id string, patch map[string]any) error {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return errs.NewBadRequestError("invalid project id")
	}
	if len(patch) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.ProjectRow{}).Where("id = ?", projectID).Updates(patch)
	if result.Error != nil {
		return fmt.Errorf("update project %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("project")
	}
	return nil
}

// Delete removes the project with the given id
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return errs.NewBadRequestError("invalid project id")
	}
	result := r.db.WithContext(ctx).Delete(&models.ProjectRow{}, "id = ?", projectID)
	if result.Error != nil {
		return fmt.Errorf("delete project %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("project")
	}
	return nil
}
