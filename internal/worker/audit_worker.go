// Package worker reacts to expense events from the queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"expenseiq/internal/amqp"
	"expenseiq/internal/core"
)

// WorkingSetReader is the storage surface the worker needs.
type WorkingSetReader interface {
	ListExpenses(ctx context.Context) ([]core.Expense, error)
}

// AuditWorker recomputes anomaly statistics whenever the working set
// changes and logs a digest. It keeps an eye on the stream without
// holding any state of its own; every event triggers a full re-read.
type AuditWorker struct {
	store WorkingSetReader
}

func NewAuditWorker(store WorkingSetReader) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleEvent processes one expense event. Returning an error requeues
// the message.
func (w *AuditWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	records, err := w.store.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("load working set: %w", err)
	}

	flagged := core.DetectAnomalies(records)

	anomalies := 0
	for _, e := range flagged {
		if e.Anomaly {
			anomalies++
		}
	}

	slog.InfoContext(ctx, "Working set audited",
		"event", ev.Type,
		"changed", len(ev.IDs),
		"records", len(flagged),
		"anomalies", anomalies,
		"total_cents", core.TotalSpend(flagged).Cents)

	if anomalies > 0 {
		for cat, mean := range core.CategoryMeans(flagged) {
			for _, e := range flagged {
				if e.Anomaly && e.Category == cat {
					slog.WarnContext(ctx, "Anomalous expense in working set",
						"id", e.ID,
						"vendor", e.Vendor,
						"category", cat,
						"amount_cents", e.Amount.Cents,
						"category_mean_cents", int64(mean))
				}
			}
		}
	}

	return nil
}
