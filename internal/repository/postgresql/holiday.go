package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/database"
)

type holidayRepository struct {
	db *database.DB
}

// NewHolidayRepository serves the holidays table to calendar.Source.
func NewHolidayRepository(db *database.DB) calendar.HolidayLister {
	return &holidayRepository{db: db}
}

func (r *holidayRepository) ListBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT date FROM holidays WHERE date BETWEEN $1 AND $2 ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
