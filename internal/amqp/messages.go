package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Entity names carried by ledger events.
const (
	EntityAccount     = "account"
	EntityExpense     = "expense"
	EntityIncome      = "income"
	EntityTenant      = "tenant"
	EntityRentPayment = "rent_payment"
)

// Actions carried by ledger events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEvent announces a committed change to one record.
// Consumers fetch the current record from the database when they need its fields.
type LedgerEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(entity, action, id, userID string) LedgerEvent {
	return LedgerEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and rejects ones missing their identity fields.
func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return LedgerEvent{}, err
	}
	if e.Entity == "" || e.Action == "" || e.ID == "" {
		return LedgerEvent{}, errors.New("ledger event missing entity, action or id")
	}
	return e, nil
}
