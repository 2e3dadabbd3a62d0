package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Travel        Category = "Travel"
	Entertainment Category = "Entertainment"
	Shopping      Category = "Shopping"
	Health        Category = "Health"
	Education     Category = "Education"
	Utilities     Category = "Utilities"
	Other         Category = "Other"
)

type (
	// Category is one label from the closed spending taxonomy. Other is the
	// catch-all for vendors no classification rule matches.
	Category string

	// Date is a calendar day. The wire form is always YYYY-MM-DD.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is the central record. Anomaly is derived state: it is only
	// meaningful for the working set it was computed against and must be
	// recomputed by DetectAnomalies whenever that set changes.
	Expense struct {
		ID          string
		Date        Date
		Amount      Money
		Vendor      string
		Description string
		Category    Category
		Anomaly     bool
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
)

// dateLayout is the only accepted wire format for dates.
const dateLayout = "2006-01-02"

// Categories returns every valid category, Other last.
func Categories() []Category {
	return []Category{
		Food, Transport, Travel, Entertainment,
		Shopping, Health, Education, Utilities, Other,
	}
}

func (c Category) IsValid() bool {
	switch c {
	case Food, Transport, Travel, Entertainment,
		Shopping, Health, Education, Utilities, Other:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// YearMonth returns the YYYY-MM prefix used for period filtering.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Positive reports whether the amount satisfies the amount > 0 invariant.
func (m Money) Positive() bool {
	return m.Cents > 0
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
