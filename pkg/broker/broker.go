package broker

import (
	"time"

	"truco-server/pkg/truco"
)

// MatchFinished is the notification the payout service consumes
type MatchFinished struct {
	RoomID     string     `json:"roomId"`
	WinnerTeam truco.Team `json:"winnerTeam"`
	TeamA      int        `json:"teamA"`
	TeamB      int        `json:"teamB"`
	FinishedAt time.Time  `json:"finishedAt"`
}

// NewMatchFinished builds the notification for a finished match
func NewMatchFinished(roomID string, winner truco.Team, score truco.Score, at time.Time) MatchFinished {
	return MatchFinished{
		RoomID:     roomID,
		WinnerTeam: winner,
		TeamA:      score.TeamA,
		TeamB:      score.TeamB,
		FinishedAt: at.UTC(),
	}
}
