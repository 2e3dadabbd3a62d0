package worker

import (
	"context"
	"errors"
	"testing"

	"expenseiq/internal/amqp"
	"expenseiq/internal/core"
)

type stubReader struct {
	records []core.Expense
	err     error
}

func (s *stubReader) ListExpenses(context.Context) ([]core.Expense, error) {
	return s.records, s.err
}

func TestHandleEvent(t *testing.T) {
	w := NewAuditWorker(&stubReader{records: []core.Expense{
		{ID: "1", Date: core.NewDate(2025, 2, 1), Amount: core.Money{Cents: 100}, Category: core.Food},
	}})

	ev := amqp.NewExpenseEvent(amqp.EventExpenseCreated, "1")
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
}

func TestHandleEventStorageFailure(t *testing.T) {
	wantErr := errors.New("db closed")
	w := NewAuditWorker(&stubReader{err: wantErr})

	ev := amqp.NewExpenseEvent(amqp.EventExpenseDeleted, "7")
	err := w.HandleEvent(context.Background(), ev)
	if !errors.Is(err, wantErr) {
		t.Fatalf("HandleEvent() error = %v, want wrapped %v", err, wantErr)
	}
}
