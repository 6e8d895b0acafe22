// Package queue carries domain events over RabbitMQ.  Producers publish
// best-effort after the database write has committed; the consumer writes
// each event to the structured log.
package queue

import "time"

// EventsQueue is the durable queue every domain event is routed to.
const EventsQueue = "counsel.events"

const (
	TypeAccountRegistered    = "account.registered"
	TypeEmotionRecordCreated = "emotion_record.created"
)

// Event is the JSON payload of one message.  Only the ids relevant to the
// event type are set.
type Event struct {
	Type        string `json:"type"`
	OccurredAt  string `json:"occurredAt"`
	UserID      uint64 `json:"userId,omitempty"`
	ClientID    uint64 `json:"clientId,omitempty"`
	CounselorID uint64 `json:"counselorId,omitempty"`
	RecordID    uint64 `json:"recordId,omitempty"`
	RecordDate  string `json:"recordDate,omitempty"`
	Role        string `json:"role,omitempty"`
}

// AccountRegistered builds the event published after a successful
// registration.
func AccountRegistered(userID uint64, role string, clientID, counselorID uint64, at time.Time) Event {
	return Event{
		Type:        TypeAccountRegistered,
		OccurredAt:  at.UTC().Format(time.RFC3339),
		UserID:      userID,
		ClientID:    clientID,
		CounselorID: counselorID,
		Role:        role,
	}
}

// EmotionRecordCreated builds the event published after a check-in is saved.
func EmotionRecordCreated(clientID, recordID uint64, day, at time.Time) Event {
	return Event{
		Type:       TypeEmotionRecordCreated,
		OccurredAt: at.UTC().Format(time.RFC3339),
		ClientID:   clientID,
		RecordID:   recordID,
		RecordDate: day.Format(time.DateOnly),
	}
}
