// Package server exposes generation and project storage over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/milk9111/cardboard/board"
	"github.com/milk9111/cardboard/generate"
	"github.com/milk9111/cardboard/project"
)

var logger = log.WithPrefix("server")

// Server holds the router and the backends it serves.
type Server struct {
	router    chi.Router
	gen       board.Generator
	store     project.Store
	imagesDir string
}

func New(gen board.Generator, store project.Store, imagesDir string) *Server {
	s := &Server{gen: gen, store: store, imagesDir: imagesDir}
	s.router = s.buildRouter()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/generate_variations", s.handleVariations)
	r.Post("/generate_image", s.handleImage)
	r.Post("/save", s.handleSave)
	r.Get("/load", s.handleLoad)
	r.Get("/list", s.handleList)
	r.Delete("/delete", s.handleDelete)

	files := http.FileServer(http.Dir(s.imagesDir))
	r.Handle("/images/*", http.StripPrefix("/images/", files))
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"id", middleware.GetReqID(r.Context()),
		)
	})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type saveRequest struct {
	ID    string         `json:"id"`
	Cards []project.Card `json:"cards"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func storeStatus(err error) int {
	switch {
	case errors.Is(err, project.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, project.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleVariations(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	vars, err := s.gen.PromptVariations(r.Context(), req.Prompt)
	if err != nil {
		logger.Error("variations", "prompt", req.Prompt, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	keyed, err := generate.Keyed(vars)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, keyed)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	img, err := s.gen.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		logger.Error("image", "prompt", req.Prompt, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": path.Base(img.Src)})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project payload")
		return
	}
	if err := s.store.Save(r.Context(), req.ID, req.Cards); err != nil {
		logger.Error("save", "project", req.ID, "err", err)
		writeError(w, storeStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project saved", "id": req.ID})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	p, err := s.store.Load(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		logger.Error("list", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted"})
}
