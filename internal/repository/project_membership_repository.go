package repository

import (
	"context"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
)

// ProjectMembershipRepository manages which users work on which projects.
type ProjectMembershipRepository interface {
	Add(ctx context.Context, projectID, userID int64) error
	Remove(ctx context.Context, projectID, userID int64) error
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)
	ListMembers(ctx context.Context, projectID int64) ([]domain.User, error)
}

type projectMembershipRepository struct {
	db Querier
}

// NewProjectMembershipRepository constructs repository.
func NewProjectMembershipRepository(db Querier) ProjectMembershipRepository {
	return &projectMembershipRepository{db: db}
}

func (r *projectMembershipRepository) Add(ctx context.Context, projectID, userID int64) error {
	const query = `
        INSERT INTO project_memberships (project_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT (project_id, user_id) DO NOTHING`
	_, err := r.db.Exec(ctx, query, projectID, userID)
	return err
}

func (r *projectMembershipRepository) Remove(ctx context.Context, projectID, userID int64) error {
	const query = `DELETE FROM project_memberships WHERE project_id=$1 AND user_id=$2`
	_, err := r.db.Exec(ctx, query, projectID, userID)
	return err
}

func (r *projectMembershipRepository) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM project_memberships WHERE project_id=$1 AND user_id=$2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *projectMembershipRepository) ListMembers(ctx context.Context, projectID int64) ([]domain.User, error) {
	const query = `
        SELECT u.id, u.name, u.email, u.password_hash, u.role, u.created_at, u.updated_at
        FROM users u
        JOIN project_memberships m ON m.user_id = u.id
        WHERE m.project_id=$1
        ORDER BY u.name ASC`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
