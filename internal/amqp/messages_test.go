package amqp

import (
	"testing"
	"time"
)

func TestNewExpenseEvent(t *testing.T) {
	ev := NewExpenseEvent(EventExpenseCreated, "42")

	if ev.Type != EventExpenseCreated {
		t.Errorf("NewExpenseEvent() Type = %v, want %v", ev.Type, EventExpenseCreated)
	}
	if len(ev.IDs) != 1 || ev.IDs[0] != "42" {
		t.Errorf("NewExpenseEvent() IDs = %v, want [42]", ev.IDs)
	}
	if ev.Timestamp.IsZero() {
		t.Error("NewExpenseEvent() Timestamp should not be zero")
	}
	if time.Since(ev.Timestamp) > time.Second {
		t.Error("NewExpenseEvent() Timestamp should be recent")
	}
}

func TestExpenseEvent_JSON(t *testing.T) {
	timestamp := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	ev := &ExpenseEvent{
		Type:      EventExpensesImported,
		IDs:       []string{"1", "2", "3"},
		Timestamp: timestamp,
	}

	jsonBytes, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ExpenseEventFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ExpenseEventFromJSON() error = %v", err)
	}

	if parsed.Type != ev.Type {
		t.Errorf("Parsed Type = %v, want %v", parsed.Type, ev.Type)
	}
	if len(parsed.IDs) != 3 || parsed.IDs[2] != "3" {
		t.Errorf("Parsed IDs = %v, want %v", parsed.IDs, ev.IDs)
	}
	if !parsed.Timestamp.Equal(ev.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, ev.Timestamp)
	}
}

func TestExpenseEvent_InvalidJSON(t *testing.T) {
	if _, err := ExpenseEventFromJSON([]byte(`{"type": 42}`)); err == nil {
		t.Error("ExpenseEventFromJSON() should fail with invalid JSON")
	}
}

func TestExpenseEvent_UnknownType(t *testing.T) {
	if _, err := ExpenseEventFromJSON([]byte(`{"type": "expense.archived", "ids": ["1"]}`)); err == nil {
		t.Error("ExpenseEventFromJSON() should reject unknown event types")
	}
}
