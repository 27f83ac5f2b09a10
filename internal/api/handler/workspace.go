package handler

import (
	"net/http"

	"github.com/Rrens/opsflow/internal/api/response"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/service"
)

// WorkspaceHandler handles workspace and membership endpoints
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaceService *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// Create handles workspace creation
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	var input domain.WorkspaceCreate
	if !decode(w, r, &input) {
		return
	}

	workspace, err := h.workspaceService.Create(r.Context(), userID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, workspace)
}

// List handles listing the requester's workspaces
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}

	workspaces, err := h.workspaceService.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, workspaces)
}

// Get handles getting a workspace by ID
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	workspaceID, ok := uuidParam(w, r, "workspaceID")
	if !ok {
		return
	}

	workspace, err := h.workspaceService.Get(r.Context(), userID, workspaceID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, workspace)
}

// ListMembers lists the owner and members with their profiles
func (h *WorkspaceHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	workspaceID, ok := uuidParam(w, r, "workspaceID")
	if !ok {
		return
	}

	members, err := h.workspaceService.ListMembers(r.Context(), userID, workspaceID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, members)
}

// AddMember invites a registered principal by email
func (h *WorkspaceHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	workspaceID, ok := uuidParam(w, r, "workspaceID")
	if !ok {
		return
	}

	var input domain.MemberAdd
	if !decode(w, r, &input) {
		return
	}

	member, err := h.workspaceService.AddMember(r.Context(), userID, workspaceID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, member)
}

// RemoveMember removes a member from the workspace
func (h *WorkspaceHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	workspaceID, ok := uuidParam(w, r, "workspaceID")
	if !ok {
		return
	}
	memberID, ok := uuidParam(w, r, "memberID")
	if !ok {
		return
	}

	if err := h.workspaceService.RemoveMember(r.Context(), userID, workspaceID, memberID); err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, map[string]string{"message": "member removed"})
}
