package events

import (
	"testing"
	"time"
)

func TestNewTransactionEvent(t *testing.T) {
	before := time.Now().UTC()
	e := NewTransactionEvent("tx-1", "owner-1", ActionCreated)
	after := time.Now().UTC()

	if e.ID != "tx-1" || e.OwnerID != "owner-1" || e.Action != ActionCreated {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.OccurredAt.Before(before) || e.OccurredAt.After(after) {
		t.Errorf("OccurredAt %v outside [%v, %v]", e.OccurredAt, before, after)
	}
	if e.OccurredAt.Location() != time.UTC {
		t.Errorf("OccurredAt not UTC: %v", e.OccurredAt.Location())
	}
}

func TestTransactionEventFromJSONInvalid(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed body")
	}
}
