package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types carried on the expense events queue.
const (
	EventExpenseCreated   = "expense.created"
	EventExpenseDeleted   = "expense.deleted"
	EventExpensesImported = "expenses.imported"
)

// ExpenseEvent is a lightweight notification about a working-set mutation.
// It carries record IDs only; consumers re-fetch whatever state they need,
// since derived fields (category, anomaly) are recomputed on read anyway.
type ExpenseEvent struct {
	Type      string    `json:"type"`
	IDs       []string  `json:"ids"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent creates an event for the given mutation type and IDs.
func NewExpenseEvent(eventType string, ids ...string) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      eventType,
		IDs:       ids,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON creates an event from JSON bytes.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Type {
	case EventExpenseCreated, EventExpenseDeleted, EventExpensesImported:
	default:
		return nil, fmt.Errorf("unknown expense event type %q", ev.Type)
	}
	return &ev, nil
}
