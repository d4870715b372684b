package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/auth"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/domain"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/repository"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

// ProjectService manages projects and their memberships.
type ProjectService struct {
	projects    repository.ProjectRepository
	memberships repository.ProjectMembershipRepository
	users       repository.UserRepository
}

// NewProjectService constructs the service.
func NewProjectService(projects repository.ProjectRepository, memberships repository.ProjectMembershipRepository, users repository.UserRepository) *ProjectService {
	return &ProjectService{projects: projects, memberships: memberships, users: users}
}

// CreateProject creates a project. Admin only.
func (s *ProjectService) CreateProject(ctx context.Context, actor *domain.User, name, description string) (*domain.Project, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionCreateProject) {
		return nil, apperrors.NewForbidden("role may not create projects")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("project name is required", nil)
	}

	project := &domain.Project{Name: name, Description: strings.TrimSpace(description)}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return project, nil
}

// UpdateProject renames or redescribes a project. Admin only.
func (s *ProjectService) UpdateProject(ctx context.Context, actor *domain.User, projectID int64, name, description string) (*domain.Project, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionEditProject) {
		return nil, apperrors.NewForbidden("role may not edit projects")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	if name = strings.TrimSpace(name); name != "" {
		project.Name = name
	}
	project.Description = strings.TrimSpace(description)
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return project, nil
}

// ListProjects returns all projects.
func (s *ProjectService) ListProjects(ctx context.Context, actor *domain.User) ([]domain.Project, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return projects, nil
}

// AssignUser adds a user to a project's roster.
func (s *ProjectService) AssignUser(ctx context.Context, actor *domain.User, projectID, userID int64) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionAssignUsers) {
		return apperrors.NewForbidden("role may not assign users")
	}

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return apperrors.NewStorageFailure(err)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.NewStorageFailure(err)
	}

	if err := s.memberships.Add(ctx, projectID, userID); err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}

// RemoveUser drops a user from a project's roster.
func (s *ProjectService) RemoveUser(ctx context.Context, actor *domain.User, projectID, userID int64) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !auth.Permitted(actor.Role, auth.ActionAssignUsers) {
		return apperrors.NewForbidden("role may not assign users")
	}
	if err := s.memberships.Remove(ctx, projectID, userID); err != nil {
		return apperrors.NewStorageFailure(err)
	}
	return nil
}

// ListMembers returns the users assigned to a project.
func (s *ProjectService) ListMembers(ctx context.Context, actor *domain.User, projectID int64) ([]domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	members, err := s.memberships.ListMembers(ctx, projectID)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return members, nil
}
