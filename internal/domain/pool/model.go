package pool

import (
	"strings"
	"time"
)

const (
	StatusOpen     = "open"
	StatusClosed   = "closed"
	StatusFinished = "finished"
)

// Pool is one weekly quiniela: an ordered set of matches, a deadline and a
// monotonic open -> closed -> finished lifecycle.
type Pool struct {
	ID           string
	Title        string
	Week         int
	Year         int
	MatchIDs     []string
	EntryFee     float64
	DeadlineAt   time.Time
	Status       string
	CreatedBy    string
	Participants []string
	CreatedAt    time.Time
}

func (p Pool) HasParticipant(userID string) bool {
	for _, id := range p.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

func (p Pool) DeadlinePassed(now time.Time) bool {
	return now.After(p.DeadlineAt)
}

// CanTransition reports whether moving to the target status respects the
// monotonic lifecycle.
func CanTransition(from, to string) bool {
	switch NormalizeStatus(from) {
	case StatusOpen:
		return to == StatusClosed || to == StatusFinished
	case StatusClosed:
		return to == StatusFinished
	default:
		return false
	}
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusOpen
	}
	return status
}
