package domain

import (
	"time"

	"github.com/google/uuid"
)

type Poll struct {
	ID        uuid.UUID    `json:"id"`
	Question  string       `json:"question"`
	CreatorID uuid.UUID    `json:"creator_id"`
	Options   []PollOption `json:"options"`
	CreatedAt time.Time    `json:"created_at"`
}

// PollOption is immutable once the poll is created. Position is the
// zero-based insertion rank and doubles as the display order.
type PollOption struct {
	ID       uuid.UUID `json:"id"`
	PollID   uuid.UUID `json:"poll_id"`
	Text     string    `json:"text"`
	Position int       `json:"position"`
}

// HasOption reports whether optionID is one of the poll's options.
func (p *Poll) HasOption(optionID uuid.UUID) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
