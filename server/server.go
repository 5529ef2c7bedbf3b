// Package server exposes a trainer over a small JSON HTTP API.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"note-trainer/notes"
	"note-trainer/trainer"
)

type Server struct {
	tr      *trainer.Trainer
	log     *zap.Logger
	origins []string
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithAllowedOrigins sets the CORS origins. Empty or "*" allows any.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

func New(tr *trainer.Trainer, opts ...Option) *Server {
	s := &Server{tr: tr, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type guessBody struct {
	Letter string `json:"letter"`
}

type clefBody struct {
	Clef string `json:"clef"`
}

type modeBody struct {
	Mode string `json:"mode"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Handler returns the routed API wrapped in CORS
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/state", s.handleState).Methods("GET")
	router.HandleFunc("/buttons", s.handleButtons).Methods("GET")
	router.HandleFunc("/guess", s.handleGuess).Methods("POST")
	router.HandleFunc("/next", s.mutate(s.tr.DisplayNextNote)).Methods("POST")
	router.HandleFunc("/reset", s.mutate(s.tr.ResetGame)).Methods("POST")
	router.HandleFunc("/reveal", s.mutate(s.tr.ToggleRevealAll)).Methods("POST")
	router.HandleFunc("/clef", s.handleClef).Methods("PUT")
	router.HandleFunc("/mode", s.handleMode).Methods("PUT")
	router.Use(s.logRequests)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tr.Snapshot())
}

func (s *Server) handleButtons(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tr.Buttons())
}

func (s *Server) mutate(f func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f()
		s.writeJSON(w, http.StatusOK, s.tr.Snapshot())
	}
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var body guessBody
	if !s.decode(w, r, &body) {
		return
	}
	// unknown letters are a no-op in the trainer, not a client error
	s.tr.SubmitGuess(body.Letter)
	s.writeJSON(w, http.StatusOK, s.tr.Snapshot())
}

func (s *Server) handleClef(w http.ResponseWriter, r *http.Request) {
	var body clefBody
	if !s.decode(w, r, &body) {
		return
	}
	clef, err := notes.ParseClef(body.Clef)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.tr.SetClef(clef)
	s.writeJSON(w, http.StatusOK, s.tr.Snapshot())
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var body modeBody
	if !s.decode(w, r, &body) {
		return
	}
	mode, err := notes.ParseDisplayMode(body.Mode)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.tr.SetDisplayMode(mode)
	s.writeJSON(w, http.StatusOK, s.tr.Snapshot())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.log.Info("bad request", zap.Int("status", status), zap.String("error", msg))
	s.writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}
