// File: internal/server/handlers.go
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/reporting"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes caps request bodies; the only body is a start URL.
const maxBodyBytes = 64 << 10

// Handlers maps the HTTP routes onto the Backend.
type Handlers struct {
	log     *zap.Logger
	backend Backend
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(logger *zap.Logger, backend Backend) *Handlers {
	return &Handlers{
		log:     logger.Named("handlers"),
		backend: backend,
	}
}

// RegisterRoutes sets up the routing.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.HandleHealthCheck)

	r.Post("/start_navigation", h.HandleStart)
	r.Get("/capture_clicks", h.HandleCapture)
	r.Get("/get_navigation_data", h.HandleList)
	r.Post("/stop_navigation", h.HandleStop)
	r.Post("/clear_data", h.HandleClear)
	r.Get("/download_word", h.HandleDownload)
	r.Get("/status", h.HandleStatus)
}

// HandleHealthCheck is a simple handler to confirm the server is responsive.
func (h *Handlers) HandleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleStart opens the browser on the requested URL. An empty or missing body starts
// on the default URL.
func (h *Handlers) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondWithError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	status, err := h.backend.StartSession(r.Context(), req.URL)
	if err != nil {
		h.respondWithError(w, r, statusFor(err), err.Error())
		return
	}
	h.respond(w, r, http.StatusOK, Response{
		Success: true,
		Message: "Navigation started successfully",
		Data:    status,
	})
}

// HandleCapture runs one capture cycle.
func (h *Handlers) HandleCapture(w http.ResponseWriter, r *http.Request) {
	res, err := h.backend.PollAndAnnotate(r.Context())
	if err != nil {
		h.respondWithError(w, r, statusFor(err), err.Error())
		return
	}
	h.respond(w, r, http.StatusOK, Response{
		Success:      true,
		NewEntries:   &res.NewEntries,
		TotalEntries: &res.TotalEntries,
	})
}

// HandleList returns every record.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	recs := h.backend.ListRecords()
	if recs == nil {
		recs = []schemas.NavigationRecord{}
	}
	total := len(recs)
	h.respond(w, r, http.StatusOK, Response{Success: true, TotalEntries: &total, Data: recs})
}

// HandleStop closes the browser. It succeeds when no session is running.
func (h *Handlers) HandleStop(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.StopSession(r.Context()); err != nil {
		h.respondWithError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	h.respond(w, r, http.StatusOK, Response{Success: true, Message: "Navigation stopped"})
}

// HandleClear drops every record.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.backend.ClearRecords()
	h.respond(w, r, http.StatusOK, Response{Success: true, Message: "Data cleared"})
}

// HandleDownload exports the records and sends the file as an attachment. The
// optional format query parameter selects docx (default) or json.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	export, err := h.backend.ExportRecords(r.URL.Query().Get("format"))
	if err != nil {
		h.respondWithError(w, r, statusFor(err), err.Error())
		return
	}

	f, err := os.Open(export.Path)
	if err != nil {
		h.log.Error("Failed to open export for download.", zap.String("path", export.Path), zap.Error(err))
		h.respondWithError(w, r, http.StatusInternalServerError, "Failed to read generated report.")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		h.respondWithError(w, r, http.StatusInternalServerError, "Failed to read generated report.")
		return
	}

	name := filepath.Base(export.Path)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// HandleStatus reports the session state.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := h.backend.Status()
	h.respond(w, r, http.StatusOK, Response{Success: true, TotalEntries: &status.TotalEntries, Data: status})
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, schemas.ErrSessionActive), errors.Is(err, schemas.ErrNoActiveSession):
		return http.StatusConflict
	case errors.Is(err, schemas.ErrEmptyExport):
		return http.StatusNotFound
	case errors.Is(err, reporting.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, schemas.ErrAcquisition):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError sends a standardized JSON error response.
func (h *Handlers) respondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	if statusCode >= http.StatusInternalServerError {
		h.log.Error("Request failed.",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("error", message))
	}
	h.respond(w, r, statusCode, Response{Success: false, Error: message})
}

// respond writes the envelope as JSON.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("Failed to encode response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}
