package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/database"
	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/search"
	"github.com/accountd/accountd/internal/service"
)

// Handler holds all HTTP handlers
type Handler struct {
	db              *database.Postgres
	rdb             *database.Redis
	log             *logger.Logger
	cfg             *config.Config
	userSvc         *service.UserService
	verificationSvc *service.VerificationService
}

// New creates a new Handler instance
func New(db *database.Postgres, rdb *database.Redis, log *logger.Logger, cfg *config.Config, userSvc *service.UserService, verificationSvc *service.VerificationService) *Handler {
	return &Handler{
		db:              db,
		rdb:             rdb,
		log:             log,
		cfg:             cfg,
		userSvc:         userSvc,
		verificationSvc: verificationSvc,
	}
}

// JSON helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

func readJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// writeServiceError maps service errors to HTTP responses. The mapping is
// deliberate: unknown email and wrong password share one 401 answer, a
// locked account answers 400 before credentials are considered, and
// validation failures answer 422.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, search.ErrInvalidDateFormat), errors.Is(err, search.ErrInvalidDateRange),
		errors.Is(err, search.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "invalid_filter", validationMessage(err))
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", validationMessage(err))
	case errors.Is(err, service.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "duplicate_email", "Email already exists")
	case errors.Is(err, service.ErrDuplicateNickname):
		writeError(w, http.StatusBadRequest, "duplicate_nickname", "Nickname already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Incorrect email or password.")
	case errors.Is(err, service.ErrAccountLocked):
		writeError(w, http.StatusBadRequest, "account_locked", "Account locked due to too many failed login attempts.")
	case errors.Is(err, service.ErrEmailNotVerified):
		writeError(w, http.StatusUnauthorized, "email_not_verified", "Email address not verified.")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "User not found")
	case errors.Is(err, service.ErrInvalidVerificationToken):
		writeError(w, http.StatusBadRequest, "invalid_verification_token", "Verification link is invalid or has expired")
	default:
		h.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}

// validationMessage strips the generic sentinel prefix so the response
// carries only the field-specific text.
func validationMessage(err error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, service.ErrInvalidInput.Error()+": "); trimmed != msg {
		return trimmed
	}
	return msg
}

// pagination reads skip/limit query parameters with bounds applied
func pagination(r *http.Request) (limit, offset int) {
	limit = 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}
