package domain

import (
	"github.com/google/uuid"
)

type PollResults struct {
	PollID     uuid.UUID      `json:"poll_id"`
	Question   string         `json:"question"`
	TotalVotes int64          `json:"total_votes"`
	Results    []OptionResult `json:"results"`
}

type OptionResult struct {
	OptionID   uuid.UUID `json:"option_id"`
	Text       string    `json:"text"`
	VoteCount  int64     `json:"vote_count"`
	Percentage float64   `json:"percentage"`
}
