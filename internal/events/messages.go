package events

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is the message published after every successful write.
// It carries identifiers only; consumers that need the full record fetch it
// from the store.
type TransactionEvent struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewTransactionEvent creates an event stamped with the current time.
func NewTransactionEvent(id, ownerID, action string) *TransactionEvent {
	return &TransactionEvent{
		ID:         id,
		OwnerID:    ownerID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON serializes the event for publishing.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON deserializes an event from a message body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
