package user

import (
	"errors"
	"net/http"
	"strings"

	"libraryapi/internal/access"
	"libraryapi/internal/apperr"
	"libraryapi/internal/httpx"
	"libraryapi/internal/validate"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type userResponse struct {
	User
	Permissions []access.Permission `json:"permissions"`
}

func present(u User) userResponse {
	perms := u.Permissions()
	if perms == nil {
		perms = []access.Permission{}
	}
	return userResponse{User: u, Permissions: perms}
}

// Register handles POST /v1/auth/register
// @Summary Register a new user
// @Description Create a new Member account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterInput true "Registration request"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/auth/register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteDecodeError(w, r, err)
		return
	}
	in.Username = validate.Text(in.Username)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)

	u, err := h.service.Register(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, present(u))
}

// Me handles GET /v1/me
// @Summary Get current user
// @Description The authenticated user with the permissions of their role
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/me [get]
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Me(r.Context(), httpx.ActorFrom(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The token outlived its user.
			err = apperr.ErrAuthRequired
		}
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, present(u), nil)
}

// UploadPhoto handles POST /v1/me/photo
// @Summary Upload a profile photo
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param photo formData file true "Photo"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/me/photo [post]
func (h *HTTPHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if httpx.ActorFrom(r) == nil {
		httpx.WriteError(w, r, apperr.ErrAuthRequired)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.WriteDecodeError(w, r, err)
			return
		}
		httpx.WriteError(w, r, apperr.FieldError("photo", "No file was submitted."))
		return
	}
	defer file.Close()

	u, err := h.service.SetProfilePhoto(r.Context(), httpx.ActorFrom(r), header.Filename, header.Size, file)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, present(u), nil)
}

type setRoleReq struct {
	Role string `json:"role"`
}

// SetRole handles PATCH /v1/users/{id}/role
// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "User id"
// @Param request body setRoleReq true "Admin, Librarian or Member"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/users/{id}/role [patch]
func (h *HTTPHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, id := httpx.ActorFrom(r), httpx.PathParam(r, "id")
	var req setRoleReq
	if !httpx.DecodeJSONChecked(w, r, &req, func() error { return h.service.CheckSetRole(r.Context(), actor, id) }) {
		return
	}
	u, err := h.service.SetRole(r.Context(), actor, id, req.Role)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, present(u), nil)
}
