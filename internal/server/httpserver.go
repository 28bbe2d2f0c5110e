package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"battleship-salvo/internal/app"
	"battleship-salvo/internal/match"
)

type Server struct {
	sess *app.Session
	hub  *Hub
	log  *log.Logger

	startAt int64
}

func New(sess *app.Session, logger *log.Logger) *Server {
	s := &Server{
		sess:    sess,
		hub:     NewHub(logger),
		log:     logger,
		startAt: time.Now().UnixMilli(),
	}
	sess.Subscribe(s.hub.Publish)
	return s
}

// Hub is the event fan-out feeding /v1/events.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/new", s.handleNew)
	mux.HandleFunc("/v1/strategy", s.handleStrategy) // expects PUT
	mux.HandleFunc("/v1/place", s.handlePlace)
	mux.HandleFunc("/v1/autoplace", s.handleAutoPlace)
	mux.HandleFunc("/v1/fire", s.handleFire)

	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/reveal", s.handleReveal)
	mux.HandleFunc("/v1/events", s.hub.ServeWS)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// only gates a handler to one method; OPTIONS is answered by WithCORS.
func only(method string, w http.ResponseWriter, r *http.Request) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// gameErrCode maps rejected moves to 409 and anything else to 500.
func gameErrCode(err error) int {
	switch {
	case errors.Is(err, match.ErrWrongMode),
		errors.Is(err, match.ErrNoSuchShip),
		errors.Is(err, match.ErrAlreadyPlaced),
		errors.Is(err, match.ErrInvalidPlacement),
		errors.Is(err, match.ErrInvalidTarget),
		errors.Is(err, app.ErrNotOver):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// === Setup ===

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if !only(http.MethodPost, w, r) {
		return
	}
	if err := s.sess.Reset(); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusPayload())
}

type strategyReq struct {
	Strategy string `json:"strategy"`
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	if !only(http.MethodPut, w, r) {
		return
	}
	var req strategyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := s.sess.SetStrategy(req.Strategy); err != nil {
		code := gameErrCode(err)
		if code == http.StatusInternalServerError {
			code = http.StatusBadRequest // unknown strategy name
		}
		writeErr(w, code, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusPayload())
}

type placeReq struct {
	Ship     int  `json:"ship"`
	Col      int  `json:"col"`
	Row      int  `json:"row"`
	Vertical bool `json:"vertical"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	if !only(http.MethodPost, w, r) {
		return
	}
	var req placeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := s.sess.Place(req.Ship, req.Col, req.Row, req.Vertical); err != nil {
		writeErr(w, gameErrCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusPayload())
}

func (s *Server) handleAutoPlace(w http.ResponseWriter, r *http.Request) {
	if !only(http.MethodPost, w, r) {
		return
	}
	if err := s.sess.AutoPlace(); err != nil {
		writeErr(w, gameErrCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusPayload())
}

// === Firing ===

type fireReq struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	if !only(http.MethodPost, w, r) {
		return
	}
	var req fireReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	res, err := s.sess.Fire(req.Col, req.Row)
	if err != nil {
		writeErr(w, gameErrCode(err), err)
		return
	}
	s.log.Debug("fire", "col", req.Col, "row", req.Row, "hit", res.Shot.Hit, "mode", res.Mode)
	writeJSON(w, http.StatusOK, res)
}

// === Reads ===

func (s *Server) statusPayload() map[string]any {
	return map[string]any{
		"startedAt": s.startAt,
		"status":    s.sess.Status(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !only(http.MethodGet, w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.statusPayload())
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	if !only(http.MethodGet, w, r) {
		return
	}
	rv, err := s.sess.Reveal()
	if err != nil {
		writeErr(w, gameErrCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

// === CORS ===

// WithCORS allows the listed origins; "*" allows any.
func WithCORS(allow []string, next http.Handler) http.Handler {
	allowSet := map[string]bool{}
	for _, a := range allow {
		if a != "" {
			allowSet[a] = true
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowSet["*"] {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && allowSet[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
