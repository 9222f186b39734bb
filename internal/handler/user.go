package handler

import (
	"net/http"

	"github.com/accountd/accountd/internal/authz"
	"github.com/accountd/accountd/internal/middleware"
	"github.com/accountd/accountd/internal/model"
	"github.com/accountd/accountd/internal/search"
	"github.com/accountd/accountd/internal/service"
)

type listResponse struct {
	Items []*model.User `json:"items"`
	Total int           `json:"total"`
}

func newListResponse(items []*model.User, total int) listResponse {
	if items == nil {
		items = []*model.User{}
	}
	return listResponse{Items: items, Total: total}
}

// forbidden is the uniform 403 answer. Authorization runs before any
// lookup, so a denied caller cannot tell whether the target exists.
func forbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "forbidden", "You do not have permission to perform this action")
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
	Role     string `json:"role,omitempty"`
}

// CreateUser handles POST /users/ (admin account provisioning)
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	if !authz.Allowed(middleware.GetRole(r.Context()), authz.ActionUserCreate, callerID, "") {
		forbidden(w)
		return
	}

	var req createUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "Invalid request body")
		return
	}

	user, err := h.userSvc.Create(r.Context(), callerID, service.CreateInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		Role:     req.Role,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	callerID := middleware.GetUserID(r.Context())

	if !authz.Allowed(middleware.GetRole(r.Context()), authz.ActionUserRead, callerID, targetID) {
		forbidden(w)
		return
	}

	user, err := h.userSvc.Get(r.Context(), targetID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	Nickname           *string `json:"nickname,omitempty"`
	Email              *string `json:"email,omitempty"`
	Role               *string `json:"role,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	GithubProfileURL   *string `json:"github_profile_url,omitempty"`
	LinkedInProfileURL *string `json:"linkedin_profile_url,omitempty"`
}

// UpdateUser handles PUT /users/{id}. Profile fields follow the update
// grant; changing the role additionally requires the role-assign grant.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	callerID := middleware.GetUserID(r.Context())
	callerRole := middleware.GetRole(r.Context())

	if !authz.Allowed(callerRole, authz.ActionUserUpdate, callerID, targetID) {
		forbidden(w)
		return
	}

	var req updateUserRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "Invalid request body")
		return
	}

	if req.Role != nil && !authz.Allowed(callerRole, authz.ActionRoleAssign, callerID, targetID) {
		forbidden(w)
		return
	}

	user, err := h.userSvc.Update(r.Context(), callerID, targetID, service.UpdateInput{
		Nickname:           req.Nickname,
		Email:              req.Email,
		Role:               req.Role,
		Bio:                req.Bio,
		GithubProfileURL:   req.GithubProfileURL,
		LinkedInProfileURL: req.LinkedInProfileURL,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	callerID := middleware.GetUserID(r.Context())

	if !authz.Allowed(middleware.GetRole(r.Context()), authz.ActionUserDelete, callerID, targetID) {
		forbidden(w)
		return
	}

	if err := h.userSvc.Delete(r.Context(), callerID, targetID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles GET /users/
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	if !authz.Allowed(middleware.GetRole(r.Context()), authz.ActionUserList, callerID, "") {
		forbidden(w)
		return
	}

	limit, offset := pagination(r)
	users, total, err := h.userSvc.List(r.Context(), limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newListResponse(users, total))
}

// SearchUsers handles POST /users/search. Criteria arrive as query
// parameters; all given criteria must match.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	if !authz.Allowed(middleware.GetRole(r.Context()), authz.ActionUserSearch, callerID, "") {
		forbidden(w)
		return
	}

	q := r.URL.Query()
	limit, offset := pagination(r)
	users, total, err := h.userSvc.Search(r.Context(), search.Params{
		Nickname: q.Get("nickname"),
		Email:    q.Get("email"),
		Role:     q.Get("role"),
	}, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newListResponse(users, total))
}

// SearchUsersByDate handles POST /users/date. Both bounds are required
// query parameters, must be valid YYYY-MM-DD calendar dates, and the end
// date is inclusive.
func (h *Handler) SearchUsersByDate(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	if !authz.Allowed(middleware.GetRole(r.Context()), authz.ActionUserSearch, callerID, "") {
		forbidden(w)
		return
	}

	q := r.URL.Query()
	startDate := q.Get("start_date")
	endDate := q.Get("end_date")
	if startDate == "" || endDate == "" {
		writeError(w, http.StatusBadRequest, "invalid_date_range", "start_date and end_date are both required")
		return
	}

	limit, offset := pagination(r)
	users, total, err := h.userSvc.Search(r.Context(), search.Params{
		StartDate: startDate,
		EndDate:   endDate,
	}, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newListResponse(users, total))
}

// GetUserAudit handles GET /users/{id}/audit
func (h *Handler) GetUserAudit(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	callerID := middleware.GetUserID(r.Context())

	if !authz.Allowed(middleware.GetRole(r.Context()), authz.ActionAuditView, callerID, targetID) {
		forbidden(w)
		return
	}

	limit, _ := pagination(r)
	entries, err := h.userSvc.AuditTrail(r.Context(), targetID, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*model.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": entries,
	})
}

// UnlockUser handles POST /users/{id}/unlock
func (h *Handler) UnlockUser(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	callerID := middleware.GetUserID(r.Context())

	if !authz.Allowed(middleware.GetRole(r.Context()), authz.ActionUserUnlock, callerID, targetID) {
		forbidden(w)
		return
	}

	if err := h.userSvc.Unlock(r.Context(), callerID, targetID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Account unlocked",
	})
}
