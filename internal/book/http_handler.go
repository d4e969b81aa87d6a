package book

import (
	"net/http"
	"strings"

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

type bulkDeleteReq struct {
	IDs []int64 `json:"ids"`
}

// sanitize cleans free-text fields before they reach the service.
func sanitize(in *Input) {
	in.Title = validate.TextPtr(in.Title)
	in.Description = validate.TextPtr(in.Description)
	if in.ISBN != nil {
		v := strings.TrimSpace(*in.ISBN)
		in.ISBN = &v
	}
	if in.PublishedDate != nil {
		v := strings.TrimSpace(*in.PublishedDate)
		in.PublishedDate = &v
	}
}

// List handles GET /v1/books
// @Summary List books
// @Description Filter by author and publication_year[__gt|__lt|__gte|__lte], search title and author name, order by title, publication_year or author__name
// @Tags books
// @Produce json
// @Param author query int false "Author id"
// @Param search query string false "Search term"
// @Param ordering query string false "e.g. -publication_year,title"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	page, size := h.pagination.Page(r)
	q.Limit = size
	q.Offset = (page - 1) * size

	books, total, err := h.service.List(r.Context(), httpx.ActorFrom(r), q)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, httpx.PageMeta(page, size, total))
}

// Get handles GET /v1/books/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	b, err := h.service.Get(r.Context(), httpx.ActorFrom(r), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /v1/books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body Input true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := httpx.ActorFrom(r)
	var in Input
	if !httpx.DecodeJSONChecked(w, r, &in, func() error { return access.AllowCreate(actor) }) {
		return
	}
	sanitize(&in)

	b, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, b)
}

// Update handles PUT /v1/books/{id}
// @Summary Replace a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Book id"
// @Param request body Input true "Book"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// Patch handles PATCH /v1/books/{id}
// @Summary Partially update a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Book id"
// @Param request body Input true "Fields to change"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/books/{id} [patch]
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
	sanitize(&in)

	b, err := h.service.Update(r.Context(), actor, id, in, partial)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /v1/books/{id}
// @Summary Delete a book
// @Tags books
// @Security Bearer
// @Param id path int true "Book id"
// @Success 204 "No Content"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [delete]
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

// BulkDelete handles POST /v1/books/bulk-delete
// @Summary Delete several books
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body bulkDeleteReq true "Ids to delete"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /v1/books/bulk-delete [post]
func (h *HTTPHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	actor := httpx.ActorFrom(r)
	var req bulkDeleteReq
	if !httpx.DecodeJSONChecked(w, r, &req, func() error { return access.AllowBulkDelete(actor) }) {
		return
	}
	n, err := h.service.BulkDelete(r.Context(), actor, req.IDs)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]int{"count": n}, nil)
}
