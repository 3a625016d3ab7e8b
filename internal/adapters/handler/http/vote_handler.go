package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

type myVoteResponse struct {
	PollID    uuid.UUID `json:"poll_id"`
	OptionID  uuid.UUID `json:"option_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
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

	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.OptionID == uuid.Nil {
		writeError(w, r, fmt.Errorf("%w: option_id is required", domain.ErrInvalidInput))
		return
	}

	vote, err := h.service.Vote(r.Context(), ports.VoteInput{
		PollID:   pollID,
		OptionID: req.OptionID,
		UserID:   userID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, vote)
}

func (h *VoteHandler) Unvote(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Unvote(r.Context(), pollID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VoteHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
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

	vote, err := h.service.GetUserVote(r.Context(), pollID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, myVoteResponse{
		PollID:    vote.PollID,
		OptionID:  vote.OptionID,
		UpdatedAt: vote.UpdatedAt,
	})
}
