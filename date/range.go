package date

import (
	"errors"
	"fmt"
)

// ErrEmptyRange is returned when a range would end before it starts.
var ErrEmptyRange = errors.New("range ends before it starts")

// Range represents a range of dates, both boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range [from, to]. It fails if to is before from.
func NewRange(from, to Date) (Range, error) {
	if to.Before(from) {
		return Range{}, fmt.Errorf("%s to %s: %w", from, to, ErrEmptyRange)
	}
	return Range{From: from, To: to}, nil
}

// ParseRange parses both boundaries of a range.
func ParseRange(from, to string) (Range, error) {
	f, err := Parse(from)
	if err != nil {
		return Range{}, err
	}
	t, err := Parse(to)
	if err != nil {
		return Range{}, err
	}
	return NewRange(f, t)
}

// Trailing returns the range [end-days, end].
func Trailing(end Date, days int) Range { return Range{From: end.Add(-days), To: end} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// String returns the range as "from..to".
func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
