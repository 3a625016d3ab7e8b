package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
	"github.com/vncsmyrnk/pollapi/internal/logging"
)

type PollHandler struct {
	service       ports.PollService
	resultService ports.ResultService
}

func NewPollHandler(service ports.PollService, resultService ports.ResultService) *PollHandler {
	return &PollHandler{
		service:       service,
		resultService: resultService,
	}
}

type createPollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeBearerError(w, "missing user context")
		return
	}

	var req createPollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	poll, err := h.service.Create(r.Context(), ports.CreatePollInput{
		CreatorID: userID,
		Question:  req.Question,
		Options:   req.Options,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("poll created", "poll_id", poll.ID.String())
	writeJSON(w, http.StatusCreated, poll)
}

// ListPolls accepts offset (or its alias skip) and limit query parameters.
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	offsetParam := q.Get("offset")
	if offsetParam == "" {
		offsetParam = q.Get("skip")
	}
	offset, err := queryInt(offsetParam, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(q.Get("limit"), "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	polls, err := h.service.ListPolls(r.Context(), ports.ListPollsInput{Offset: offset, Limit: limit})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := pollIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	poll, err := h.service.GetPoll(r.Context(), pollID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeBearerError(w, "missing user context")
		return
	}

	pollID, err := pollIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeletePoll(r.Context(), pollID, userID); err != nil {
		writeError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("poll deleted", "poll_id", pollID.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := pollIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	results, err := h.resultService.GetResults(r.Context(), pollID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func pollIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid poll id", domain.ErrInvalidInput)
	}
	return id, nil
}

func queryInt(value, name string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return n, nil
}
