package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nitrmart-api/internal/application/authz"
	"github.com/nitrmart-api/internal/application/user"
	"github.com/nitrmart-api/internal/domain"
	"github.com/nitrmart-api/internal/pkg/validate"
	"github.com/nitrmart-api/internal/transport/http/middleware"
)

type checkEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserHandler handles account endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	u, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		otpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	users, next, err := h.svc.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	writeJSON(w, http.StatusOK, UserPageEnvelope{Results: users, Next: next})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, middleware.ActorFromContext(r.Context()).UserID)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, chi.URLParam(r, "id"))
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request, userID string) {
	// Checked before the lookup so other users' ids do not leak existence.
	target := &domain.User{UserID: userID}
	if err := authz.Require(middleware.ActorFromContext(r.Context()), target, "You can only view your own profile."); err != nil {
		httpError(w, r, err)
		return
	}
	u, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, middleware.ActorFromContext(r.Context()).UserID)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, chi.URLParam(r, "id"))
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, userID string) {
	var req domain.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), middleware.ActorFromContext(r.Context()), userID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req checkEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, r, err)
		return
	}
	if err := h.svc.CheckEmail(r.Context(), req.Email); err != nil {
		httpError(w, r, err)
		return
	}
	writeDetail(w, http.StatusOK, "Email is registered.")
}
