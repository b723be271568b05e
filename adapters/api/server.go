// Package api exposes the pricing flows over HTTP.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"skuprice/domain/pricing"
	"skuprice/internal/errors"
)

// PricingService is the application surface the transport calls
type PricingService interface {
	AnalyzeBySku(ctx context.Context, skuRaw string, uploads []pricing.Upload) (*pricing.AnalyzeResult, error)
	CombineCatalog(ctx context.Context, uploads []pricing.Upload) (*pricing.CombineResult, error)
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Server routes upload requests to the pricing service
type Server struct {
	router  *chi.Mux
	service PricingService
	config  ServerConfig
}

// NewServer creates the HTTP server and registers its routes
func NewServer(service PricingService, config ServerConfig) *Server {
	if config.MaxMemoryBytes <= 0 {
		config.MaxMemoryBytes = DefaultServerConfig().MaxMemoryBytes
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		config:  config,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/api/upload", s.handleUpload)
	s.router.Post("/api/combine", s.handleCombine)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload runs the single-identifier flow over form fields "sku" and "files"
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.readUploads(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	sku := strings.TrimSpace(r.FormValue("sku"))
	if sku == "" {
		writeError(w, errors.ValidationError("missing sku"))
		return
	}

	result, err := s.service.AnalyzeBySku(r.Context(), sku, uploads)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCombine runs the catalog flow over form field "files"
func (s *Server) handleCombine(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.readUploads(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.service.CombineCatalog(r.Context(), uploads)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]pricing.Upload, error) {
	if s.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(s.config.MaxMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.InvalidInput(fmt.Sprintf("upload exceeds %d MB", tooLarge.Limit>>20), err)
		}
		return nil, errors.InvalidInput("expected a multipart form", err)
	}

	headers := r.MultipartForm.File["files"]
	uploads := make([]pricing.Upload, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("failed to read %s", fh.Filename), err)
		}
		uploads = append(uploads, pricing.Upload{Filename: fh.Filename, Data: data})
	}
	log.Printf("[API] %s %s: %d files", r.Method, r.URL.Path, len(uploads))
	return uploads, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

// writeError maps caller mistakes to 400 and everything else to 500
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "failed to process files", Detail: err.Error()}
	if errors.IsClientError(err) {
		status = http.StatusBadRequest
		resp = ErrorResponse{Error: err.Error()}
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Cause != nil {
			resp = ErrorResponse{Error: appErr.Message, Detail: appErr.Cause.Error()}
		}
	} else {
		log.Printf("[API] request failed: %v", err)
	}
	writeJSON(w, status, resp)
}
