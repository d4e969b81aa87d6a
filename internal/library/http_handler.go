package library

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

// List handles GET /v1/libraries
// @Summary List libraries
// @Tags libraries
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/libraries [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size := h.pagination.Page(r)
	libs, total, err := h.service.List(r.Context(), httpx.ActorFrom(r), size, (page-1)*size)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, libs, httpx.PageMeta(page, size, total))
}

// Get handles GET /v1/libraries/{id}
// @Summary Get a library with its books and librarian
// @Tags libraries
// @Produce json
// @Param id path int true "Library id"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/libraries/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, err := h.service.Get(r.Context(), httpx.ActorFrom(r), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, d, nil)
}

// Create handles POST /v1/libraries
// @Summary Create a library
// @Tags libraries
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body Input true "Library"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/libraries [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := httpx.ActorFrom(r)
	var in Input
	if !httpx.DecodeJSONChecked(w, r, &in, func() error { return access.AllowCreate(actor) }) {
		return
	}
	in.Name = validate.TextPtr(in.Name)

	d, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, d)
}

// Update handles PUT /v1/libraries/{id}
// @Summary Rename a library and optionally replace its books
// @Tags libraries
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Library id"
// @Param request body Input true "Library"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/libraries/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	d, err := h.service.Update(r.Context(), actor, id, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, d, nil)
}

// Delete handles DELETE /v1/libraries/{id}
// @Summary Delete a library; its books are kept
// @Tags libraries
// @Security Bearer
// @Param id path int true "Library id"
// @Success 204 "No Content"
// @Router /v1/libraries/{id} [delete]
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

// AddBook handles PUT /v1/libraries/{id}/books/{bookID}
// @Summary Add a book to a library
// @Tags libraries
// @Security Bearer
// @Param id path int true "Library id"
// @Param bookID path int true "Book id"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/libraries/{id}/books/{bookID} [put]
func (h *HTTPHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	id, bookID, ok := h.linkIDs(w, r)
	if !ok {
		return
	}
	d, err := h.service.AddBook(r.Context(), httpx.ActorFrom(r), id, bookID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, d, nil)
}

// RemoveBook handles DELETE /v1/libraries/{id}/books/{bookID}
// @Summary Remove a book from a library
// @Tags libraries
// @Security Bearer
// @Param id path int true "Library id"
// @Param bookID path int true "Book id"
// @Success 204 "No Content"
// @Router /v1/libraries/{id}/books/{bookID} [delete]
func (h *HTTPHandler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	id, bookID, ok := h.linkIDs(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveBook(r.Context(), httpx.ActorFrom(r), id, bookID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

func (h *HTTPHandler) linkIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return 0, 0, false
	}
	bookID, err := httpx.PathID(r, "bookID")
	if err != nil {
		httpx.WriteError(w, r, err)
		return 0, 0, false
	}
	return id, bookID, true
}

// ListLibrarians handles GET /v1/librarians
// @Summary List librarians
// @Tags librarians
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/librarians [get]
func (h *HTTPHandler) ListLibrarians(w http.ResponseWriter, r *http.Request) {
	page, size := h.pagination.Page(r)
	out, total, err := h.service.ListLibrarians(r.Context(), httpx.ActorFrom(r), size, (page-1)*size)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, out, httpx.PageMeta(page, size, total))
}

// GetLibrarian handles GET /v1/librarians/{id}
// @Summary Get a librarian
// @Tags librarians
// @Produce json
// @Param id path int true "Librarian id"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/librarians/{id} [get]
func (h *HTTPHandler) GetLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	l, err := h.service.GetLibrarian(r.Context(), httpx.ActorFrom(r), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, l, nil)
}

// CreateLibrarian handles POST /v1/librarians
// @Summary Assign a librarian to a library
// @Tags librarians
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body LibrarianInput true "Librarian"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/librarians [post]
func (h *HTTPHandler) CreateLibrarian(w http.ResponseWriter, r *http.Request) {
	actor := httpx.ActorFrom(r)
	var in LibrarianInput
	if !httpx.DecodeJSONChecked(w, r, &in, func() error { return access.AllowCreate(actor) }) {
		return
	}
	in.Name = validate.TextPtr(in.Name)

	l, err := h.service.CreateLibrarian(r.Context(), actor, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, l)
}

// DeleteLibrarian handles DELETE /v1/librarians/{id}
// @Summary Delete a librarian
// @Tags librarians
// @Security Bearer
// @Param id path int true "Librarian id"
// @Success 204 "No Content"
// @Router /v1/librarians/{id} [delete]
func (h *HTTPHandler) DeleteLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.service.DeleteLibrarian(r.Context(), httpx.ActorFrom(r), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}
