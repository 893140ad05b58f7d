package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/plumber-cd/ez-desk/internal/domain"
	"github.com/plumber-cd/ez-desk/internal/store"
)

// Server is the REST backend. The book is the authority; every mutation is
// persisted before it is acknowledged.
type Server struct {
	mu    sync.Mutex
	dir   string
	book  *domain.Book
	token string

	save  func(dir string, book *domain.Book) error
	newID func() string
}

// New returns a server over book, persisting into dir. An empty token
// disables authentication.
func New(dir string, book *domain.Book, token string) *Server {
	return &Server{
		dir:   dir,
		book:  book,
		token: token,
		save:  store.Save,
		newID: uuid.NewString,
	}
}

// Handler returns the chi router serving /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api", func(api chi.Router) {
		api.Get("/healthz", s.handleHealth)
		api.Group(func(rec chi.Router) {
			rec.Use(s.requireToken)
			rec.Get("/{kind}", s.handleList)
			rec.Post("/{kind}", s.handleCreate)
			rec.Get("/{kind}/{id}", s.handleGet)
			rec.Put("/{kind}/{id}", s.handleUpdate)
			rec.Patch("/{kind}/{id}", s.handlePatch)
			rec.Delete("/{kind}/{id}", s.handleDelete)
		})
	})
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr, "dir", s.dir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "took", time.Since(start))
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && !bearerMatches(r.Header.Get("Authorization"), s.token) {
			writeErr(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerMatches compares the bearer credential of header with token in
// constant time.
func bearerMatches(header, token string) bool {
	got, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	list := s.book.List(kind)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	rec := s.book.Get(kind, chi.URLParam(r, "id"))
	s.mu.Unlock()
	if rec == nil {
		writeErr(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	rec, ok := decodeRecord(w, r, kind)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec.SetID(s.newID())
	s.book.Put(rec)
	if err := s.save(s.dir, s.book); err != nil {
		s.book.Remove(kind, rec.RawID())
		s.saveFailed(w, err)
		return
	}
	slog.Info("record created", "kind", kind, "id", rec.RawID())
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	rec, ok := decodeRecord(w, r, kind)
	if !ok {
		return
	}
	rec.SetID(id)
	s.replace(w, kind, id, rec)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var patch domain.Values
	if err := decodeJSON(r, &patch); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	s.mu.Lock()
	old := s.book.Get(kind, id)
	s.mu.Unlock()
	if old == nil {
		writeErr(w, http.StatusNotFound, "record not found")
		return
	}
	values := old.Values()
	maps.Copy(values, patch)
	rec, err := domain.FromValues(kind, id, values)
	if err != nil {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	if err := rec.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	s.replace(w, kind, id, rec)
}

// replace swaps an existing record, restoring the old one if the save fails.
func (s *Server) replace(w http.ResponseWriter, kind domain.Kind, id string, rec domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.book.Get(kind, id)
	if old == nil {
		writeErr(w, http.StatusNotFound, "record not found")
		return
	}
	s.book.Put(rec)
	if err := s.save(s.dir, s.book); err != nil {
		s.book.Put(old)
		s.saveFailed(w, err)
		return
	}
	slog.Info("record updated", "kind", kind, "id", id)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.book.Remove(kind, id)
	if old == nil {
		writeErr(w, http.StatusNotFound, "record not found")
		return
	}
	if err := s.save(s.dir, s.book); err != nil {
		s.book.Put(old)
		s.saveFailed(w, err)
		return
	}
	slog.Info("record deleted", "kind", kind, "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) saveFailed(w http.ResponseWriter, err error) {
	slog.Error("save failed", "dir", s.dir, "err", err)
	writeErr(w, http.StatusInternalServerError, "save failed: "+err.Error())
}

func kindParam(w http.ResponseWriter, r *http.Request) (domain.Kind, bool) {
	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeErr(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return kind, true
}

// decodeRecord reads a record body, applies defaults and validates it.
func decodeRecord(w http.ResponseWriter, r *http.Request, kind domain.Kind) (domain.Record, bool) {
	rec := domain.NewRecord(kind)
	if err := decodeJSON(r, rec); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return nil, false
	}
	rec.Apply(rec.Values())
	if err := rec.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return rec, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(out)
}
