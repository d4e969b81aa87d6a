package author

import (
	"net/http"

	"libraryapi/internal/access"
	"libraryapi/internal/httpx"
	"libraryapi/internal/validate"
)

type HTTPHandler struct {
	service    *Service
	pagination httpx.Pagination
}

func NewHTTPHandler(service *Service, pagination httpx.Pagination) *HTTPHandler {
	return &HTTPHandler{service: service, pagination: pagination}
}

// List handles GET /v1/authors
// @Summary List authors
// @Tags authors
// @Produce json
// @Param search query string false "Name contains"
// @Param ordering query string false "name or -name"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/authors [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseQuery(r.URL.Query())
	page, size := h.pagination.Page(r)
	q.Limit = size
	q.Offset = (page - 1) * size

	authors, total, err := h.service.List(r.Context(), httpx.ActorFrom(r), q)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, authors, httpx.PageMeta(page, size, total))
}

// Get handles GET /v1/authors/{id}
// @Summary Get an author with their books
// @Tags authors
// @Produce json
// @Param id path int true "Author id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/authors/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	a, err := h.service.Get(r.Context(), httpx.ActorFrom(r), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, a, nil)
}

// Create handles POST /v1/authors
// @Summary Create an author
// @Tags authors
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body Input true "Author"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/authors [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := httpx.ActorFrom(r)
	var in Input
	if !httpx.DecodeJSONChecked(w, r, &in, func() error { return access.AllowCreate(actor) }) {
		return
	}
	in.Name = validate.TextPtr(in.Name)

	a, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, a)
}

// Update handles PUT /v1/authors/{id}
// @Summary Replace an author
// @Tags authors
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Author id"
// @Param request body Input true "Author"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/authors/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// Patch handles PATCH /v1/authors/{id}
// @Summary Partially update an author
// @Tags authors
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Author id"
// @Param request body Input true "Fields to change"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/authors/{id} [patch]
func (h *HTTPHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	actor := httpx.ActorFrom(r)
	var in Input
	if !httpx.DecodeJSONChecked(w, r, &in, func() error { return h.service.CheckUpdate(r.Context(), actor, id) }) {
		return
	}
	in.Name = validate.TextPtr(in.Name)

	a, err := h.service.Update(r.Context(), actor, id, in, partial)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, a, nil)
}

// Delete handles DELETE /v1/authors/{id}
// @Summary Delete an author and their books
// @Tags authors
// @Security Bearer
// @Param id path int true "Author id"
// @Success 204 "No Content"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/authors/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), httpx.ActorFrom(r), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}
