package handlers

import (
	"net/http"

	"taskhub/internal/models"
)

const msgProjectNotFound = "Project not found"

type createProjectRequest struct {
	Name        string               `json:"name" validate:"required"`
	Description *string              `json:"description"`
	Status      models.ProjectStatus `json:"status" validate:"omitempty,oneof=active on_hold completed cancelled"`
	StartDate   *string              `json:"startDate" validate:"omitnil,isodate"`
	EndDate     *string              `json:"endDate" validate:"omitnil,isodate"`
}

type updateProjectRequest struct {
	Name        *string               `json:"name" validate:"omitnil,min=1"`
	Description models.Nullable[string] `json:"description" validate:"-"`
	Status      *models.ProjectStatus   `json:"status" validate:"omitnil,oneof=active on_hold completed cancelled"`
	StartDate   models.Nullable[string] `json:"startDate" validate:"-"`
	EndDate     models.Nullable[string] `json:"endDate" validate:"-"`
}

type addMemberRequest struct {
	ContactID models.ID `json:"contactId" validate:"required"`
	Role      string    `json:"role"`
}

type projectListQuery struct {
	Status models.ProjectStatus `json:"status" validate:"omitempty,oneof=active on_hold completed cancelled"`
}

// ListProjects returns all projects, optionally filtered by ?status.
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	query := projectListQuery{Status: models.ProjectStatus(r.URL.Query().Get("status"))}
	if msg, ok := h.check(query); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	projects, err := h.projects.FindAll(r.Context(), models.ProjectFilter{Status: query.Status})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to fetch projects")
		return
	}
	respondSuccess(w, http.StatusOK, projects, "Projects retrieved successfully")
}

// GetProject returns a project with its members, tasks and counts.
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	project, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to fetch project")
		return
	}
	if project == nil {
		respondError(w, http.StatusNotFound, msgProjectNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, project, "Project retrieved successfully")
}

// CreateProject creates a new project.
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !h.bind(w, r, &req) {
		return
	}

	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   parseOptionalDate(req.StartDate),
		EndDate:     parseOptionalDate(req.EndDate),
	}
	if project.Status == "" {
		project.Status = models.ProjectActive
	}

	created, err := h.projects.Create(r.Context(), project)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to create project")
		return
	}
	respondSuccess(w, http.StatusCreated, created, "Project created successfully")
}

// UpdateProject updates an existing project. An explicit null description,
// startDate or endDate clears that field.
func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateProjectRequest
	if !h.bind(w, r, &req) {
		return
	}
	start, ok := nullableDate(w, "startDate", req.StartDate)
	if !ok {
		return
	}
	end, ok := nullableDate(w, "endDate", req.EndDate)
	if !ok {
		return
	}

	project, err := h.projects.Update(r.Context(), id, models.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to update project")
		return
	}
	if project == nil {
		respondError(w, http.StatusNotFound, msgProjectNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, project, "Project updated successfully")
}

// DeleteProject deletes a project along with its tasks and memberships.
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	removed, err := h.projects.Remove(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to delete project")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, msgProjectNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "Project deleted successfully")
}

func (h *Handlers) AddProjectMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req addMemberRequest
	if !h.bind(w, r, &req) {
		return
	}

	member, err := h.projects.AddMember(r.Context(), id, models.MemberInput{ContactID: req.ContactID, Role: req.Role})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to add member to project")
		return
	}
	respondSuccess(w, http.StatusCreated, member, "Member added to project successfully")
}

func (h *Handlers) ListProjectMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	members, err := h.projects.GetMembers(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to fetch project members")
		return
	}
	respondSuccess(w, http.StatusOK, members, "Project members retrieved successfully")
}

func (h *Handlers) RemoveProjectMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	contactID, ok := pathID(w, r, "contactId")
	if !ok {
		return
	}

	removed, err := h.projects.RemoveMember(r.Context(), id, contactID)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to remove member from project")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "Member not found in project")
		return
	}
	respondSuccess(w, http.StatusOK, nil, "Member removed from project successfully")
}

func (h *Handlers) GetProjectStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.projects.GetProjectStats(r.Context(), id)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to fetch project statistics")
		return
	}
	if stats == nil {
		respondError(w, http.StatusNotFound, msgProjectNotFound)
		return
	}
	respondSuccess(w, http.StatusOK, stats, "Project statistics retrieved successfully")
}
