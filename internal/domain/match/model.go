package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Source tags where a match record came from.
const (
	SourceAPIWeekly = "api-weekly"
	SourceManual    = "manual"
	SourceSample    = "sample"
)

// Match is one scheduled or played game. Scores stay nil until a final
// result is captured.
type Match struct {
	ID           string
	HomeTeam     string
	AwayTeam     string
	League       string
	KickoffAt    time.Time
	Status       string
	HomeScore    *int
	AwayScore    *int
	FixtureRefID int64
	Source       string
}

func (m Match) HasResult() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}
