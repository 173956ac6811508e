package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/artifactops/promotion-service/internal/service"
)

type Server struct {
	service *service.Service
}

func New(svc *service.Service) *Server {
	return &Server{service: svc}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Post("/v1/promotions", s.handleAction)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"time": time.Now().UTC(),
	})
}

// actionRequest is the multiplexed entry contract: one endpoint, dispatched
// on the action field.
type actionRequest struct {
	Action    string `json:"action"`
	User      string `json:"user"`
	Model     string `json:"model"`
	Version   string `json:"version"`
	Note      string `json:"note"`
	ToEnv     string `json:"to_env"`
	Requester string `json:"requester"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Action {
	case "promote":
		s.handlePromote(w, r, req)
	case "approve":
		s.handleApprove(w, r, req)
	case "logs":
		s.handleLogs(w, r, req)
	default:
		respondError(w, http.StatusBadRequest, "invalid or missing 'action'")
	}
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request, req actionRequest) {
	entry, err := s.service.RequestPromotion(r.Context(), service.PromotionRequest{
		User:    req.User,
		Model:   req.Model,
		Version: req.Version,
		Note:    req.Note,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Promotion request logged",
		"log":     entry,
	})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request, req actionRequest) {
	entry, err := s.service.ApprovePromotion(r.Context(), service.ApprovalRequest{
		User:      req.User,
		Model:     req.Model,
		Version:   req.Version,
		ToEnv:     req.ToEnv,
		Requester: req.Requester,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Promotion to %s approved", entry.ToEnv),
		"log":     entry,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request, req actionRequest) {
	recs, err := s.service.GetLogs(r.Context(), req.Model, req.Version)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

// respondServiceError maps workflow failures onto the response contract:
// malformed requests are 400, dependency failures (storage, user config)
// are 502. Error text carries step context but no credentials.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Msg)
		return
	}
	respondError(w, http.StatusBadGateway, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
