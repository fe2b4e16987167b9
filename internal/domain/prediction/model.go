package prediction

import "time"

// Prediction is a single user's score call for one match inside a pool.
// Points stays zero until the match result is recorded.
type Prediction struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	PoolID    string    `db:"pool_id" json:"poolId"`
	MatchID   string    `db:"match_id" json:"matchId"`
	HomeScore int       `db:"home_score" json:"homeScore"`
	AwayScore int       `db:"away_score" json:"awayScore"`
	Points    int       `db:"points" json:"points"`
	Scored    bool      `db:"scored" json:"scored"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
