package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// HolidayLister reads holidays stored outside the process.
type HolidayLister interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// Source builds calendars from a fixed holiday list plus an optional lister.
type Source struct {
	static []time.Time
	lister HolidayLister
	sf     *singleflight.Group
}

func NewSource(lister HolidayLister, static ...time.Time) *Source {
	return &Source{static: static, lister: lister, sf: &singleflight.Group{}}
}

// Load returns a calendar that knows every holiday in [from, to]. Concurrent
// loads of the same range share one lister call.
func (s *Source) Load(ctx context.Context, from, to time.Time) (Calendar, error) {
	from, to = Truncate(from), Truncate(to)
	if s.lister == nil {
		return New(s.static...), nil
	}

	key := from.Format(DateLayout) + "/" + to.Format(DateLayout)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		stored, err := s.lister.ListBetween(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to list holidays: %w", err)
		}
		return stored, nil
	})
	if err != nil {
		return Calendar{}, err
	}

	holidays := append([]time.Time(nil), s.static...)
	holidays = append(holidays, v.([]time.Time)...)
	return New(holidays...), nil
}
