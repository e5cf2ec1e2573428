package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brunovale/catalog-backend/internal/domain"
	"github.com/brunovale/catalog-backend/internal/service/user"
)

// userService defines the minimal interface needed by UserHandler.
type userService interface {
	List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.User], error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetMe(ctx context.Context) (*domain.User, error)
	Create(ctx context.Context, input user.CreateInput) (*domain.User, error)
	Update(ctx context.Context, id int64, input user.UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	ListRoles(ctx context.Context) ([]domain.Role, error)
}

// UserHandler serves user REST endpoints.
type UserHandler struct {
	svc userService
	log *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc userService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: logger.With("handler", "user")}
}

type createUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type updateUserRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	RoleIDs   []int64 `json:"roleIds"`
}

// userResponse never carries the password hash.
type userResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Roles     []roleDTO `json:"roles"`
}

type roleDTO struct {
	ID        int64  `json:"id"`
	Authority string `json:"authority"`
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), pageRequestFromQuery(r))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, toUserResponseValue))
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// GetMe handles GET /users/me. The identity comes from the bearer token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetMe(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Create handles POST /users. New accounts always start as plain
// operators regardless of the payload.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.svc.Create(r.Context(), user.CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Update handles PUT /users/{id}. The role set in the payload replaces
// the stored one; the password is not updatable here.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.svc.Update(r.Context(), id, user.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		RoleIDs:   req.RoleIDs,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRoles handles GET /roles.
func (h *UserHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.ListRoles(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	dtos := make([]roleDTO, 0, len(roles))
	for _, role := range roles {
		dtos = append(dtos, roleDTO{ID: role.ID, Authority: role.Authority})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func toUserResponse(u *domain.User) userResponse {
	return toUserResponseValue(*u)
}

func toUserResponseValue(u domain.User) userResponse {
	roles := make([]roleDTO, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, roleDTO{ID: r.ID, Authority: r.Authority})
	}
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Roles:     roles,
	}
}
