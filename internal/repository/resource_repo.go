package repository

import (
	"context"
	"database/sql"
	"fmt"

	"app/internal/model"
)

type ResourceRepository interface {
	GetResourcesByLessonID(ctx context.Context, lessonID int64) ([]model.Resource, error)
}

type resourceRepository struct {
	db *sql.DB
}

func NewResourceRepository(db *sql.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) GetResourcesByLessonID(ctx context.Context, lessonID int64) ([]model.Resource, error) {
	query := `
		SELECT id, lesson_id, title, type, content, description, created_at, updated_at
		FROM resources
		WHERE lesson_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	var resources []model.Resource
	for rows.Next() {
		var resource model.Resource
		if err := rows.Scan(
			&resource.ID,
			&resource.LessonID,
			&resource.Title,
			&resource.Type,
			&resource.Content,
			&resource.Description,
			&resource.CreatedAt,
			&resource.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan resource row: %w", err)
		}
		resources = append(resources, resource)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if len(resources) == 0 {
		return []model.Resource{}, nil
	}

	return resources, nil
}
