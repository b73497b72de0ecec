package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmhart/crewlog/internal/calculator"
	"github.com/jmhart/crewlog/internal/middleware"
	"github.com/jmhart/crewlog/internal/service"
	"github.com/jmhart/crewlog/pkg/response"
)

// GetIdentity handles GET /api/identity: the caller's resolved identity.
func (s *Server) GetIdentity(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, middleware.GetUser(r.Context()))
}

// identityRequest is the profile update payload.
type identityRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PhotoDataURL string `json:"photoDataUrl"`
}

// UpdateIdentity handles POST /api/identity: updates the caller's display
// fields, syncs them into their groups' member lists and returns a fresh
// device token.
func (s *Server) UpdateIdentity(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	caller := middleware.GetUser(r.Context())
	user, err := s.identities.Update(r.Context(), caller.ID, req.Username, req.Email, req.PhotoDataURL)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := s.groups.SyncProfile(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

// ListGroups handles GET /api/groups: the caller's groups, most recently
// updated first.
func (s *Server) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListForUser(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, groups)
}

// CreateGroup handles POST /api/groups.
func (s *Server) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	group, err := s.groups.Create(r.Context(), middleware.GetUser(r.Context()), req)
	if err != nil {
		respondError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, group)
}

// joinRequest is the join-by-code payload.
type joinRequest struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
}

// JoinGroup handles POST /api/groups/join.
func (s *Server) JoinGroup(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	group, err := s.groups.Join(r.Context(), middleware.GetUser(r.Context()), req.Code, req.DisplayName)
	if err != nil {
		respondError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, group)
}

// GetGroup handles GET /api/groups/{id}.
func (s *Server) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/groups/{id}. Unconditional; there is no
// ownership check at this layer.
func (s *Server) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.groups.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// AppendLog handles POST /api/groups/{id}/logs.
func (s *Server) AppendLog(w http.ResponseWriter, r *http.Request) {
	var req service.LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	log, err := s.groups.AppendWorkLog(r.Context(), middleware.GetUser(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, log)
}

// ToggleTask handles POST /api/groups/{id}/tasks/{taskId}/toggle.
func (s *Server) ToggleTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")
	group, err := s.groups.ToggleTaskComplete(r.Context(), chi.URLParam(r, "id"), taskID)
	if err != nil {
		respondError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"taskId":           taskID,
		"complete":         group.IsTaskComplete(taskID),
		"completedTaskIds": group.CompletedTaskIDs,
	})
}

// breakdownResponse carries proportional segments plus totals for display.
type breakdownResponse struct {
	Segments     []calculator.Segment `json:"segments"`
	TotalMinutes int                  `json:"totalMinutes"`
	TotalLabel   string               `json:"totalLabel"`
}

// MemberBreakdown handles GET /api/groups/{id}/breakdown/members: minutes
// per member across the whole group, for the cross-member donut.
func (s *Server) MemberBreakdown(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	segments := calculator.MemberBreakdown(group.WorkLogs)
	total := calculator.TotalMinutes(segments)
	response.JSON(w, http.StatusOK, breakdownResponse{
		Segments:     segments,
		TotalMinutes: total,
		TotalLabel:   calculator.FormatMinutes(total),
	})
}

// TaskBreakdown handles GET /api/groups/{id}/breakdown/tasks: the caller's
// own minutes per task, for the personal view.
func (s *Server) TaskBreakdown(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	user := middleware.GetUser(r.Context())
	segments := calculator.TaskBreakdown(group.WorkLogs, user)
	total := calculator.MinutesFor(group.WorkLogs, user)
	response.JSON(w, http.StatusOK, breakdownResponse{
		Segments:     segments,
		TotalMinutes: total,
		TotalLabel:   calculator.FormatMinutes(total),
	})
}
