// Package syncapi exposes the glossary over HTTP so the annotation engine
// and the editing UI share one entry set. JSON in, JSON out; no sessions.
package syncapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/twellen/glossover/glossary"
)

// Server serves the glossary CRUD API.
type Server struct {
	svc    *glossary.Service
	logger *slog.Logger
}

// New builds the API server around a glossary service.
func New(svc *glossary.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, logger: logger}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(SecurityHeaders)
	r.Use(MaxJSONBody(1 << 20))
	r.Use(RequestLogger(s.logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/entries", s.handleList)
		r.Post("/entries", s.handleCreate)
		r.Get("/entries/{id}", s.handleGet)
		r.Put("/entries/{id}", s.handleUpdate)
		r.Delete("/entries/{id}", s.handleDelete)
	})

	return r
}

// handleVersion returns the change token clients poll to learn that the
// entry set changed. ETag-style: compare with the last seen value.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Version(r.Context())
	if err != nil {
		s.logger.Error("syncapi: version", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"version": strconv.FormatInt(v, 10)})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		entries []glossary.Entry
		err     error
	)
	if r.URL.Query().Get("enabled") == "true" {
		entries, err = s.svc.Snapshot(r.Context())
	} else {
		entries, err = s.svc.List(r.Context())
	}
	if err != nil {
		s.logger.Error("syncapi: list entries", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []glossary.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var e glossary.Entry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.svc.Create(r.Context(), e)
	if errors.Is(err, glossary.ErrInvalid) {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		s.logger.Error("syncapi: create entry", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, glossary.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var e glossary.Entry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e.ID = chi.URLParam(r, "id")

	updated, err := s.svc.Update(r.Context(), e)
	if errors.Is(err, glossary.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if errors.Is(err, glossary.ErrInvalid) {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		s.logger.Error("syncapi: update entry", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, glossary.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.logger.Error("syncapi: delete entry", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
