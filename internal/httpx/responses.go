package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Meta    any  `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
	Meta    any               `json:"meta,omitempty"`
}

type ErrorResponseBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func buildMeta(r *http.Request, customMeta map[string]any) map[string]any {
	requestID := RequestIDFrom(r)
	if requestID == "" && len(customMeta) == 0 {
		return nil
	}
	meta := make(map[string]any, len(customMeta)+1)
	if requestID != "" {
		meta["request_id"] = requestID
	}
	for k, v := range customMeta {
		meta[k] = v
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSONSuccess writes a 200 envelope. meta is merged with the request id.
func JSONSuccess(w http.ResponseWriter, r *http.Request, data any, meta map[string]any) {
	m := buildMeta(r, meta)
	resp := SuccessResponse{Success: true, Data: data}
	if m != nil {
		resp.Meta = m
	}
	writeJSON(w, http.StatusOK, resp)
}

func JSONCreated(w http.ResponseWriter, r *http.Request, data any) {
	m := buildMeta(r, nil)
	resp := SuccessResponse{Success: true, Data: data}
	if m != nil {
		resp.Meta = m
	}
	writeJSON(w, http.StatusCreated, resp)
}

func JSONNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string, fields map[string][]string) {
	m := buildMeta(r, nil)
	resp := ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}
	if m != nil {
		resp.Meta = m
	}
	writeJSON(w, statusCode, resp)
}

var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// DecodeJSONChecked decodes the body into dst and writes the response itself
// when that fails. A failing check is reported instead of the decode error,
// so authentication and target lookup still come before body problems.
func DecodeJSONChecked(w http.ResponseWriter, r *http.Request, dst any, check func() error) bool {
	err := DecodeJSON(r, dst)
	if err == nil {
		return true
	}
	if check != nil {
		if cerr := check(); cerr != nil {
			WriteError(w, r, cerr)
			return false
		}
	}
	WriteDecodeError(w, r, err)
	return false
}

// WriteDecodeError reports a body that could not be decoded.
func WriteDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
		return
	}
	JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
}
