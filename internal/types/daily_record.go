package types

import (
	"strings"
	"time"

	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// DailyRecord is one trading day of a single instrument.
type DailyRecord struct {
	Time  time.Time       `csv:"time" yaml:"time"`
	Open  decimal.Decimal `csv:"open" yaml:"open"`
	High  decimal.Decimal `csv:"high" yaml:"high"`
	Low   decimal.Decimal `csv:"low" yaml:"low"`
	Close decimal.Decimal `csv:"close" yaml:"close"`
}

// NewDailyRecord builds a record from float prices, as read from a datasource.
func NewDailyRecord(t time.Time, open, high, low, closePrice float64) DailyRecord {
	return DailyRecord{
		Time:  t,
		Open:  decimal.NewFromFloat(open),
		High:  decimal.NewFromFloat(high),
		Low:   decimal.NewFromFloat(low),
		Close: decimal.NewFromFloat(closePrice),
	}
}

// PriceHistory is the full, chronologically ordered price series of one instrument.
type PriceHistory []DailyRecord

// Len returns the number of trading days in the history.
func (h PriceHistory) Len() int {
	return len(h)
}

// Window returns a read-only view of the history starting at the given offset
// and running to the end of the history.
func (h PriceHistory) Window(start int) (PriceWindow, error) {
	if start < 0 || start > len(h) {
		return PriceWindow{}, errors.Newf(errors.ErrCodeInvalidParameter, "window start %d out of range [0, %d]", start, len(h))
	}

	return PriceWindow{records: h[start:], start: start}, nil
}

// All returns the whole history as a window starting at offset 0.
func (h PriceHistory) All() PriceWindow {
	return PriceWindow{records: h, start: 0}
}

// LastClose returns the close of the final trading day, or false for an empty history.
func (h PriceHistory) LastClose() (decimal.Decimal, bool) {
	if len(h) == 0 {
		return decimal.Zero, false
	}

	return h[len(h)-1].Close, true
}

// PriceWindow is a contiguous slice of a PriceHistory addressed by zero-based
// trading-day offset from the window's first day. Strategies only read it.
type PriceWindow struct {
	records []DailyRecord
	start   int
}

// NewPriceWindow builds a window directly from records. It is mostly used by tests
// and callers that already hold a materialized slice.
func NewPriceWindow(records []DailyRecord) PriceWindow {
	return PriceWindow{records: records, start: 0}
}

// Len returns the number of trading days in the window.
func (w PriceWindow) Len() int {
	return len(w.records)
}

// At returns the record at the given offset from the window start.
func (w PriceWindow) At(offset int) DailyRecord {
	return w.records[offset]
}

// HistoryOffset is the position of the window's first day in the history it was cut from.
func (w PriceWindow) HistoryOffset() int {
	return w.start
}

// PriceField selects which daily price an order is filled at.
type PriceField string

const (
	PriceFieldOpen  PriceField = "open"
	PriceFieldClose PriceField = "close"
)

// AllPriceFields lists the accepted price fields.
var AllPriceFields = []any{string(PriceFieldOpen), string(PriceFieldClose)}

// ParsePriceField parses "open" or "close" in any letter case.
func ParsePriceField(s string) (PriceField, error) {
	switch PriceField(strings.ToLower(strings.TrimSpace(s))) {
	case PriceFieldOpen:
		return PriceFieldOpen, nil
	case PriceFieldClose:
		return PriceFieldClose, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported price field %q, expected open or close", s)
	}
}

// Value returns the field's price from a record.
func (f PriceField) Value(r DailyRecord) decimal.Decimal {
	if f == PriceFieldClose {
		return r.Close
	}

	return r.Open
}
