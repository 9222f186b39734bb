package handler

import (
	"net/http"

	"github.com/accountd/accountd/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
	// Role is accepted for wire compatibility but ignored: self-service
	// registration always starts at ANONYMOUS.
	Role               string  `json:"role,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	GithubProfileURL   *string `json:"github_profile_url,omitempty"`
	LinkedInProfileURL *string `json:"linkedin_profile_url,omitempty"`
}

// Register handles POST /register/
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "Invalid request body")
		return
	}

	user, err := h.userSvc.Register(r.Context(), service.RegisterInput{
		Email:              req.Email,
		Password:           req.Password,
		Nickname:           req.Nickname,
		Bio:                req.Bio,
		GithubProfileURL:   req.GithubProfileURL,
		LinkedInProfileURL: req.LinkedInProfileURL,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /login/. Credentials arrive form-encoded as username
// and password; the username field carries the email address.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "Invalid form body")
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "username and password are required")
		return
	}

	token, _, err := h.userSvc.Login(r.Context(), email, password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// VerifyEmail handles GET /verify-email/{id}/{token}
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	token := r.PathValue("token")

	if err := h.verificationSvc.Confirm(r.Context(), userID, token); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Email verified successfully",
	})
}
