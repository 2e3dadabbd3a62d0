// Package core implements the expense analytics engine: vendor
// classification, CSV ingestion, anomaly detection and aggregation.
//
// Every function in this package is a pure computation over explicit
// inputs. Nothing here touches I/O beyond the reader handed to the
// Ingestor, and nothing retains state between calls.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a decimal string to Money for ingestion.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half-up to cents. When both separators appear, the last one is
// the decimal separator and the other marks thousands, so 1,234.56 and
// 1.234,56 both parse. A repeated comma alone (1,234,567) marks
// thousands. Unparsable input yields zero cents rather than an error: the
// ingestion row-rejection policy drops zero and negative amounts
// downstream, so a garbage amount and a missing amount behave the same
// way.
func ParseAmount(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case comma >= 0 && dot >= 0:
		if dot > comma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
	case comma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}
	}
	return MoneyFromFloat(v)
}

// MoneyFromFloat converts a unit amount (e.g. 12.34) to cents with
// half-up rounding.
func MoneyFromFloat(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

// Float returns the unit value for display and JSON exchange.
// Calculations stay in cents to avoid floating-point drift.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}
