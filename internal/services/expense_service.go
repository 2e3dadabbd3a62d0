// Package services orchestrates expense operations across storage,
// messaging and the analytics engine.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"expenseiq/internal/core"
)

// ExpenseStore is the persistence surface the service needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (string, error)
	CreateExpenses(ctx context.Context, records []core.Expense) ([]string, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	SoftDeleteExpense(ctx context.Context, id int64) error
	Close() error
}

// EventPublisher notifies downstream consumers about working-set mutations.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, id string) error
	PublishExpenseDeleted(ctx context.Context, id string) error
	PublishExpensesImported(ctx context.Context, ids []string) error
	Close() error
}

// Dashboard is the aggregated view for a single month filter.
type Dashboard struct {
	Month        string
	TotalSpend   core.Money
	Transactions int
	Categories   []core.CategoryTotal
	TopVendors   []core.VendorTotal
	Anomalies    []core.Expense
	Months       []string
}

// ExpenseService wires the pure engine to storage and messaging. Events
// are best effort: a publish failure is logged, never surfaced, because
// the record is already durable in SQLite.
type ExpenseService struct {
	store  ExpenseStore
	events EventPublisher
	table  *core.Table
	topN   int
}

func NewExpenseService(store ExpenseStore, events EventPublisher, table *core.Table, topN int) *ExpenseService {
	if table == nil {
		table = core.DefaultTable()
	}
	if topN <= 0 {
		topN = 5
	}
	return &ExpenseService{
		store:  store,
		events: events,
		table:  table,
		topN:   topN,
	}
}

// AddExpense validates and saves a single expense. A missing or unknown
// category is derived from the vendor; a valid caller-supplied category
// is kept as-is. Returns the saved record with its anomaly flag computed
// against the updated working set.
func (s *ExpenseService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if !e.Category.IsValid() {
		e.Category = s.table.Classify(e.Vendor)
	}
	if e.Date.IsZero() {
		e.Date = core.DateOf(time.Now())
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}

	ref, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = ref

	if s.events != nil {
		if err := s.events.PublishExpenseCreated(ctx, ref); err != nil {
			slog.ErrorContext(ctx, "Failed to publish created event",
				"id", ref, "error", err)
		}
	}

	return s.flagSaved(ctx, ref, e)
}

// flagSaved recomputes anomalies over the working set and returns the
// freshly saved record with its flag. Falls back to the unflagged record
// if the list fails; the save already succeeded.
func (s *ExpenseService) flagSaved(ctx context.Context, ref string, saved core.Expense) (core.Expense, error) {
	records, err := s.store.ListExpenses(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to reload working set", "error", err)
		return saved, nil
	}
	for _, e := range core.DetectAnomalies(records) {
		if e.ID == ref {
			return e, nil
		}
	}
	return saved, nil
}

// DeleteExpense soft deletes a record and publishes a delete event.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("parse expense id %q: %w", id, err)
	}

	if err := s.store.SoftDeleteExpense(ctx, numID); err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishExpenseDeleted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish deleted event",
				"id", id, "error", err)
		}
	}

	return nil
}

// ImportCSV ingests a CSV stream, persists the accepted rows in one
// transaction and publishes an imported event. The returned summary
// counts accepted and dropped rows only.
func (s *ExpenseService) ImportCSV(ctx context.Context, r io.Reader) (core.Summary, error) {
	ingestor := core.NewIngestor(s.table, core.NewCounter(1))
	records, summary, err := ingestor.Ingest(r)
	if err != nil {
		return core.Summary{}, fmt.Errorf("ingest csv: %w", err)
	}
	if len(records) == 0 {
		return summary, nil
	}

	ids, err := s.store.CreateExpenses(ctx, records)
	if err != nil {
		return core.Summary{}, fmt.Errorf("save imported expenses: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishExpensesImported(ctx, ids); err != nil {
			slog.ErrorContext(ctx, "Failed to publish imported event",
				"count", len(ids), "error", err)
		}
	}

	slog.InfoContext(ctx, "CSV import finished",
		"accepted", summary.Accepted, "dropped", summary.Dropped)
	return summary, nil
}

// ListExpenses returns the working set with anomaly flags recomputed.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	records, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return core.DetectAnomalies(records), nil
}

// MonthDashboard aggregates the working set for a month filter. The
// filter "all" (or empty) means no filtering. Anomaly detection runs on
// the full set; the month filter applies to every aggregate after that.
func (s *ExpenseService) MonthDashboard(ctx context.Context, month string) (Dashboard, error) {
	if month == "" {
		month = core.AllMonths
	}

	records, err := s.store.ListExpenses(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load working set: %w", err)
	}
	flagged := core.DetectAnomalies(records)
	filtered := core.FilterByMonth(flagged, month)

	var anomalies []core.Expense
	for _, e := range filtered {
		if e.Anomaly {
			anomalies = append(anomalies, e)
		}
	}

	return Dashboard{
		Month:        month,
		TotalSpend:   core.TotalSpend(filtered),
		Transactions: len(filtered),
		Categories:   core.CategoryTotals(filtered),
		TopVendors:   core.TopVendors(filtered, s.topN),
		Anomalies:    anomalies,
		Months:       core.Months(flagged),
	}, nil
}

// Close closes storage and messaging.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
