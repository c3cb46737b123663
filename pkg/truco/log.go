package truco

import "time"

// EventType is the type of a log event
type EventType string

// EventType constants
const (
	EventHandDealt      EventType = "handDealt"
	EventCardPlayed     EventType = "cardPlayed"
	EventTrickResolved  EventType = "trickResolved"
	EventCall           EventType = "call"
	EventResponse       EventType = "response"
	EventEnvidoResolved EventType = "envidoResolved"
	EventFlorResolved   EventType = "florResolved"
	EventFold           EventType = "fold"
	EventHandEnd        EventType = "handEnd"
	EventMatchEnd       EventType = "matchEnd"
)

// Event is an append-only entry in the match history
type Event struct {
	Seq            int                    `json:"seq"`
	Type           EventType              `json:"type"`
	ActingPlayerID string                 `json:"actingPlayerId,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

func (m *Match) appendEvent(now time.Time, eventType EventType, playerID string, data map[string]interface{}) {
	m.Log = append(m.Log, Event{
		Seq:            len(m.Log) + 1,
		Type:           eventType,
		ActingPlayerID: playerID,
		Data:           data,
		Timestamp:      now,
	})
}

// EventsSince returns the events with a sequence number greater than seq
func (m *Match) EventsSince(seq int) []Event {
	if seq < 0 {
		seq = 0
	}

	if seq >= len(m.Log) {
		return nil
	}

	return m.Log[seq:]
}
