package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/api/dto"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/auth"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/service"
	apperrors "github.com/A-Jhee/GECKO-Bug-Tracker/pkg/util"
)

// ProjectsHandler exposes project and roster endpoints.
type ProjectsHandler struct {
	projects *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projects *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

// Create handles POST /projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request payload", nil)
	}
	project, err := h.projects.CreateProject(c.UserContext(), actor, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// Update handles PATCH /projects/:id.
func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	projectID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request payload", nil)
	}
	project, err := h.projects.UpdateProject(c.UserContext(), actor, projectID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// List handles GET /projects.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	projects, err := h.projects.ListProjects(c.UserContext(), actor)
	if err != nil {
		return err
	}
	responses := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, dto.NewProjectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// AssignMember handles POST /projects/:id/members.
func (h *ProjectsHandler) AssignMember(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	projectID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request payload", nil)
	}
	if err := h.projects.AssignUser(c.UserContext(), actor, projectID, req.UserID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RemoveMember handles DELETE /projects/:id/members/:userID.
func (h *ProjectsHandler) RemoveMember(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	projectID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID, err := parseID(c, "userID")
	if err != nil {
		return err
	}
	if err := h.projects.RemoveUser(c.UserContext(), actor, projectID, userID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListMembers handles GET /projects/:id/members.
func (h *ProjectsHandler) ListMembers(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	projectID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	members, err := h.projects.ListMembers(c.UserContext(), actor, projectID)
	if err != nil {
		return err
	}
	responses := make([]dto.MemberResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, dto.MemberResponse{
			ID:    member.ID,
			Name:  member.Name,
			Email: member.Email,
			Role:  member.Role,
		})
	}
	return c.JSON(fiber.Map{"data": responses})
}
