package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type requestRepository struct {
	db *database.DB
	tx database.Transactor
}

func NewRequestRepository(db *database.DB) request.RequestRepository {
	return &requestRepository{db: db, tx: NewTransactor(db)}
}

const requestSelect = `
	SELECT r.id, r.contract_id, r.variant, r.active, r.created_at, r.updated_at,
		v.period, v.entitled_days, v.taken_days, v.available_days, v.requested_days,
		v.start_date, v.end_date, v.return_date, v.notified_on, v.state,
		l.reason, l.start_date, l.end_date, l.health_record_id, l.state,
		o.date, to_char(o.start_time, 'HH24:MI'), to_char(o.end_time, 'HH24:MI'), o.hours, o.tier, o.state,
		s.notified_on, s.effective_date, s.state
	FROM requests r
	LEFT JOIN vacation_requests v ON v.request_id = r.id
	LEFT JOIN leave_requests l ON l.request_id = r.id
	LEFT JOIN overtime_requests o ON o.request_id = r.id
	LEFT JOIN resignation_requests s ON s.request_id = r.id
`

// requestRow holds the nullable columns of the four outer-joined variant tables.
type requestRow struct {
	vPeriod, vEntitled, vTaken, vAvailable, vRequested *int
	vStart, vEnd, vReturn, vNotified                   *time.Time
	vState                                             *string

	lReason       *string
	lStart, lEnd  *time.Time
	lHealthRecord *string
	lState        *string

	oDate        *time.Time
	oStart, oEnd *string
	oHours       decimal.NullDecimal
	oTier        *int
	oState       *string

	sNotified, sEffective *time.Time
	sState                *string
}

func scanRequest(row pgx.Row) (request.Request, error) {
	var req request.Request
	var x requestRow
	err := row.Scan(
		&req.ID, &req.ContractID, &req.Variant, &req.Active, &req.CreatedAt, &req.UpdatedAt,
		&x.vPeriod, &x.vEntitled, &x.vTaken, &x.vAvailable, &x.vRequested,
		&x.vStart, &x.vEnd, &x.vReturn, &x.vNotified, &x.vState,
		&x.lReason, &x.lStart, &x.lEnd, &x.lHealthRecord, &x.lState,
		&x.oDate, &x.oStart, &x.oEnd, &x.oHours, &x.oTier, &x.oState,
		&x.sNotified, &x.sEffective, &x.sState,
	)
	if err != nil {
		return request.Request{}, err
	}

	switch req.Variant {
	case request.VariantVacation:
		if x.vState == nil {
			break
		}
		req.Vacation = &request.Vacation{
			Period:        *x.vPeriod,
			EntitledDays:  *x.vEntitled,
			TakenDays:     *x.vTaken,
			AvailableDays: *x.vAvailable,
			RequestedDays: *x.vRequested,
			StartDate:     *x.vStart,
			EndDate:       *x.vEnd,
			ReturnDate:    *x.vReturn,
			NotifiedOn:    x.vNotified,
			State:         request.State(*x.vState),
		}
	case request.VariantLeave:
		if x.lState == nil {
			break
		}
		req.Leave = &request.Leave{
			Reason:         request.LeaveReason(*x.lReason),
			StartDate:      *x.lStart,
			EndDate:        *x.lEnd,
			HealthRecordID: x.lHealthRecord,
			State:          request.State(*x.lState),
		}
	case request.VariantOvertime:
		if x.oState == nil {
			break
		}
		req.Overtime = &request.Overtime{
			Date:      *x.oDate,
			StartTime: *x.oStart,
			EndTime:   *x.oEnd,
			Hours:     x.oHours.Decimal,
			Tier:      request.OvertimeTier(*x.oTier),
			State:     request.State(*x.oState),
		}
	case request.VariantResignation:
		if x.sState == nil {
			break
		}
		req.Resignation = &request.Resignation{
			NotifiedOn:    *x.sNotified,
			EffectiveDate: x.sEffective,
			State:         request.State(*x.sState),
		}
	}

	if err := req.Validate(); err != nil {
		return request.Request{}, fmt.Errorf("corrupt request row: %w", err)
	}
	return req, nil
}

func (r *requestRepository) Create(ctx context.Context, req request.Request) (request.Request, error) {
	id, err := newID()
	if err != nil {
		return request.Request{}, fmt.Errorf("failed to generate request id: %w", err)
	}
	req.ID = id

	err = r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		query := `
			INSERT INTO requests (id, contract_id, variant, active)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at
		`
		if err := q.QueryRow(ctx, query, req.ID, req.ContractID, req.Variant, req.Active).
			Scan(&req.CreatedAt, &req.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return r.insertVariant(ctx, q, req)
	})
	if err != nil {
		return request.Request{}, err
	}
	return req, nil
}

func (r *requestRepository) insertVariant(ctx context.Context, q database.Querier, req request.Request) error {
	var err error
	switch req.Variant {
	case request.VariantVacation:
		v := req.Vacation
		_, err = q.Exec(ctx, `
			INSERT INTO vacation_requests (
				request_id, period, entitled_days, taken_days, available_days, requested_days,
				start_date, end_date, return_date, notified_on, state
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			req.ID, v.Period, v.EntitledDays, v.TakenDays, v.AvailableDays, v.RequestedDays,
			v.StartDate, v.EndDate, v.ReturnDate, v.NotifiedOn, v.State,
		)
	case request.VariantLeave:
		l := req.Leave
		_, err = q.Exec(ctx, `
			INSERT INTO leave_requests (request_id, reason, start_date, end_date, health_record_id, state)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			req.ID, l.Reason, l.StartDate, l.EndDate, l.HealthRecordID, l.State,
		)
	case request.VariantOvertime:
		o := req.Overtime
		_, err = q.Exec(ctx, `
			INSERT INTO overtime_requests (request_id, date, start_time, end_time, hours, tier, state)
			VALUES ($1, $2, $3::time, $4::time, $5, $6, $7)`,
			req.ID, o.Date, o.StartTime, o.EndTime, o.Hours, int(o.Tier), o.State,
		)
	case request.VariantResignation:
		s := req.Resignation
		_, err = q.Exec(ctx, `
			INSERT INTO resignation_requests (request_id, notified_on, effective_date, state)
			VALUES ($1, $2, $3, $4)`,
			req.ID, s.NotifiedOn, s.EffectiveDate, s.State,
		)
	default:
		return fmt.Errorf("unknown request variant %q", req.Variant)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s record: %w", req.Variant, err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (request.Request, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanRequest(q.QueryRow(ctx, requestSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if isNotFound(err) {
			return request.Request{}, request.ErrRequestNotFound
		}
		return request.Request{}, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

func (r *requestRepository) ListByContract(ctx context.Context, contractID string, variant *request.Variant) ([]request.Request, error) {
	query := requestSelect + ` WHERE r.contract_id = $1`
	args := []interface{}{contractID}
	if variant != nil {
		query += ` AND r.variant = $2`
		args = append(args, *variant)
	}
	query += ` ORDER BY r.created_at, r.id`

	return r.list(ctx, query, args...)
}

func (r *requestRepository) ListDueResignations(ctx context.Context, asOf time.Time) ([]request.Request, error) {
	query := requestSelect + `
		WHERE r.variant = 'resignation'
		  AND r.active
		  AND s.state = 'accepted'
		  AND s.effective_date <= $1
		ORDER BY s.effective_date, r.id
	`
	return r.list(ctx, query, asOf)
}

func (r *requestRepository) list(ctx context.Context, query string, args ...interface{}) ([]request.Request, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []request.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return requests, nil
}

// Update rewrites the umbrella row and the variant record.
func (r *requestRepository) Update(ctx context.Context, req request.Request) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		tag, err := q.Exec(ctx, `UPDATE requests SET active = $2, updated_at = NOW() WHERE id = $1`, req.ID, req.Active)
		if err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return request.ErrRequestNotFound
		}

		switch req.Variant {
		case request.VariantVacation:
			v := req.Vacation
			_, err = q.Exec(ctx, `
				UPDATE vacation_requests SET
					period = $2, entitled_days = $3, taken_days = $4, available_days = $5,
					requested_days = $6, start_date = $7, end_date = $8, return_date = $9,
					notified_on = $10, state = $11
				WHERE request_id = $1`,
				req.ID, v.Period, v.EntitledDays, v.TakenDays, v.AvailableDays,
				v.RequestedDays, v.StartDate, v.EndDate, v.ReturnDate, v.NotifiedOn, v.State,
			)
		case request.VariantLeave:
			l := req.Leave
			_, err = q.Exec(ctx, `
				UPDATE leave_requests SET reason = $2, start_date = $3, end_date = $4, health_record_id = $5, state = $6
				WHERE request_id = $1`,
				req.ID, l.Reason, l.StartDate, l.EndDate, l.HealthRecordID, l.State,
			)
		case request.VariantOvertime:
			o := req.Overtime
			_, err = q.Exec(ctx, `
				UPDATE overtime_requests SET
					date = $2, start_time = $3::time, end_time = $4::time, hours = $5, tier = $6, state = $7
				WHERE request_id = $1`,
				req.ID, o.Date, o.StartTime, o.EndTime, o.Hours, int(o.Tier), o.State,
			)
		case request.VariantResignation:
			s := req.Resignation
			_, err = q.Exec(ctx, `
				UPDATE resignation_requests SET notified_on = $2, effective_date = $3, state = $4
				WHERE request_id = $1`,
				req.ID, s.NotifiedOn, s.EffectiveDate, s.State,
			)
		}
		if err != nil {
			return fmt.Errorf("failed to update %s record: %w", req.Variant, err)
		}
		return nil
	})
}

func (r *requestRepository) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE requests SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set request active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return request.ErrRequestNotFound
	}
	return nil
}
