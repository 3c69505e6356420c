package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Farvi-13/Medium-Clone/internal/account"
	"github.com/Farvi-13/Medium-Clone/internal/http/respond"
	"github.com/Farvi-13/Medium-Clone/internal/middleware"
	"github.com/Farvi-13/Medium-Clone/internal/models"
	"github.com/Farvi-13/Medium-Clone/internal/models/dto"
)

// UserHandler owns the registration, login, and current-user endpoints.
type UserHandler struct {
	accounts *account.Service
	logger   *slog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(accounts *account.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger}
}

// Register attaches the user routes to the mux. The authenticated /user
// routes are wrapped by the given guard.
func (h *UserHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	mux.HandleFunc("/users", h.handleCreate)
	mux.HandleFunc("/users/login", h.handleLogin)
	mux.Handle("/user", guard(http.HandlerFunc(h.handleCurrentUser)))
}

// request bodies arrive wrapped in a "user" object.
type registerBody struct {
	User dto.RegisterRequest `json:"user"`
}

type loginBody struct {
	User dto.LoginRequest `json:"user"`
}

type updateBody struct {
	User dto.UpdateUserRequest `json:"user"`
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	req := body.User
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email, username, and password are required")
		return
	}

	user, err := h.accounts.Create(r.Context(), req)
	if err != nil {
		h.writeAccountError(w, err, "create user")
		return
	}
	h.writeEnvelope(w, http.StatusCreated, user)
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	req := body.User
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		h.writeAccountError(w, err, "login")
		return
	}
	h.writeEnvelope(w, http.StatusOK, user)
}

func (h *UserHandler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserClaims(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing token claims")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := h.accounts.Get(r.Context(), claims.UserID)
		if err != nil {
			h.writeAccountError(w, err, "get current user")
			return
		}
		h.writeEnvelope(w, http.StatusOK, user)
	case http.MethodPut:
		var body updateBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		user, err := h.accounts.Update(r.Context(), claims.UserID, body.User)
		if err != nil {
			h.writeAccountError(w, err, "update user")
			return
		}
		h.writeEnvelope(w, http.StatusOK, user)
	default:
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *UserHandler) writeEnvelope(w http.ResponseWriter, status int, user models.User) {
	envelope, err := h.accounts.BuildResponse(user)
	if err != nil {
		h.logger.Error("build user response", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respond.JSON(w, status, envelope)
}

// writeAccountError maps workflow errors onto HTTP statuses. Duplicate
// accounts and bad credentials are both 422, with messages that never say
// which field collided or which login factor failed.
func (h *UserHandler) writeAccountError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, account.ErrDuplicateAccount):
		respond.Error(w, http.StatusUnprocessableEntity, account.ErrDuplicateAccount.Error())
	case errors.Is(err, account.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnprocessableEntity, account.ErrInvalidCredentials.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
