package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"arena-contest-service/internal/app"
	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// APIHandler covers the small REST surface that precedes a websocket
// session: creating a contest and peeking at its public state.
type APIHandler struct {
	service *app.ContestService
	log     zerolog.Logger
}

func NewAPIHandler(service *app.ContestService, log zerolog.Logger) *APIHandler {
	return &APIHandler{service: service, log: log}
}

type createContestRequest struct {
	HostID   string                 `json:"hostId"`
	Title    string                 `json:"title"`
	Settings domain.ContestSettings `json:"settings"`
}

func (h *APIHandler) CreateContest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req createContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.HostID == "" || req.Title == "" {
		http.Error(w, "hostId and title are required", http.StatusBadRequest)
		return
	}
	contest, err := h.service.CreateContest(r.Context(), req.HostID, req.Title, req.Settings)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(contest)
}

func (h *APIHandler) GetContest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "invalid contest id", http.StatusBadRequest)
		return
	}
	contest, err := h.service.GetContest(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// The join code is for the host to hand out, not for anyone who knows
	// the contest id.
	contest.JoinCode = ""
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(contest)
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrContestNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("api request failed")
	}
	http.Error(w, err.Error(), status)
}
