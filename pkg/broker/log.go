package broker

import (
	"context"

	"github.com/sirupsen/logrus"
	"truco-server/pkg/truco"
)

// Log writes match results and events to a logger
// It is used when no NATS server is configured.
type Log struct {
	logger logrus.FieldLogger
}

// NewLog returns a broker that only logs
func NewLog(logger logrus.FieldLogger) *Log {
	return &Log{logger: logger}
}

// OnMatchFinished logs the result of the match
func (l *Log) OnMatchFinished(_ context.Context, roomID string, winner truco.Team, score truco.Score) error {
	l.logger.WithFields(logrus.Fields{
		"room":       roomID,
		"winnerTeam": winner,
		"teamA":      score.TeamA,
		"teamB":      score.TeamB,
	}).Info("match finished")

	return nil
}

// PublishEvents logs each event at debug level
func (l *Log) PublishEvents(_ context.Context, roomID string, events []truco.Event) error {
	for _, event := range events {
		l.logger.WithFields(logrus.Fields{
			"room":   roomID,
			"seq":    event.Seq,
			"type":   event.Type,
			"player": event.ActingPlayerID,
		}).Debug("match event")
	}

	return nil
}
