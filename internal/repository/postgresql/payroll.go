package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/database"
)

type breakdownRepository struct {
	db *database.DB
	tx database.Transactor
}

func NewBreakdownRepository(db *database.DB) payroll.BreakdownRepository {
	return &breakdownRepository{db: db, tx: NewTransactor(db)}
}

const breakdownColumns = `
	pb.id, pb.contract_id, pb.employee_id, pb.period, pb.total_gross, pb.total_deductions, pb.total_net,
	pb.status, pb.origin, pb.paid_at, pb.created_at, pb.updated_at, e.first_name || ' ' || e.last_name
`

func scanBreakdown(row pgx.Row) (payroll.Breakdown, error) {
	var b payroll.Breakdown
	var period string
	err := row.Scan(
		&b.ID, &b.ContractID, &b.EmployeeID, &period, &b.TotalGross, &b.TotalDeductions, &b.TotalNet,
		&b.Status, &b.Origin, &b.PaidAt, &b.CreatedAt, &b.UpdatedAt, &b.EmployeeName,
	)
	if err != nil {
		return payroll.Breakdown{}, err
	}
	if b.Period, err = payroll.ParsePeriod(period); err != nil {
		return payroll.Breakdown{}, fmt.Errorf("breakdown %s: %w", b.ID, err)
	}
	return b, nil
}

// Create inserts the breakdown and its items atomically. A concurrent insert
// for the same contract and period surfaces as ErrBreakdownAlreadyExists.
func (r *breakdownRepository) Create(ctx context.Context, b payroll.Breakdown) (payroll.Breakdown, error) {
	id, err := newID()
	if err != nil {
		return payroll.Breakdown{}, fmt.Errorf("failed to generate breakdown id: %w", err)
	}
	b.ID = id

	err = r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		query := `
			INSERT INTO payroll_breakdowns (
				id, contract_id, employee_id, period, total_gross, total_deductions, total_net,
				status, origin, paid_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at
		`
		err := q.QueryRow(ctx, query,
			b.ID, b.ContractID, b.EmployeeID, b.Period.String(), b.TotalGross, b.TotalDeductions, b.TotalNet,
			b.Status, b.Origin, b.PaidAt,
		).Scan(&b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "uk_payroll_breakdown_contract_period") {
				return payroll.ErrBreakdownAlreadyExists
			}
			return fmt.Errorf("failed to create payroll breakdown: %w", err)
		}

		return r.insertItems(ctx, q, b.ID, b.Items)
	})
	if err != nil {
		return payroll.Breakdown{}, err
	}
	return b, nil
}

func (r *breakdownRepository) insertItems(ctx context.Context, q database.Querier, breakdownID string, items []payroll.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, it := range items {
		id, err := newID()
		if err != nil {
			return fmt.Errorf("failed to generate line item id: %w", err)
		}
		batch.Queue(`
			INSERT INTO payroll_line_items (id, breakdown_id, position, concept, kind, amount, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, breakdownID, i, it.Concept, it.Kind, it.Amount, it.Quantity,
		)
	}

	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert payroll line items: %w", err)
	}
	return nil
}

func (r *breakdownRepository) Exists(ctx context.Context, contractID string, period payroll.Period) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payroll_breakdowns WHERE contract_id = $1 AND period = $2)`,
		contractID, period.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check payroll breakdown: %w", err)
	}
	return exists, nil
}

func (r *breakdownRepository) LiquidatedContractIDs(ctx context.Context, period payroll.Period) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT contract_id FROM payroll_breakdowns WHERE period = $1`, period.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list liquidated contracts: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan contract id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *breakdownRepository) GetByID(ctx context.Context, id string) (payroll.Breakdown, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + breakdownColumns + `
		FROM payroll_breakdowns pb
		JOIN employees e ON e.id = pb.employee_id
		WHERE pb.id = $1
	`

	b, err := scanBreakdown(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return payroll.Breakdown{}, payroll.ErrBreakdownNotFound
		}
		return payroll.Breakdown{}, fmt.Errorf("failed to get payroll breakdown: %w", err)
	}

	items, err := r.itemsOf(ctx, []string{b.ID})
	if err != nil {
		return payroll.Breakdown{}, err
	}
	b.Items = items[b.ID]
	return b, nil
}

func (r *breakdownRepository) List(ctx context.Context, filter payroll.BreakdownFilter) ([]payroll.Breakdown, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Period != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("pb.period = $%d", argIdx))
		args = append(args, *filter.Period)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("pb.status = $%d", argIdx))
		args = append(args, *filter.Status)
	}

	query := `SELECT ` + breakdownColumns + `
		FROM payroll_breakdowns pb
		JOIN employees e ON e.id = pb.employee_id
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY pb.period DESC, e.last_name, e.first_name
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll breakdowns: %w", err)
	}
	defer rows.Close()

	var breakdowns []payroll.Breakdown
	var ids []string
	for rows.Next() {
		b, err := scanBreakdown(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll breakdown: %w", err)
		}
		breakdowns = append(breakdowns, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll breakdowns: %w", err)
	}

	items, err := r.itemsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range breakdowns {
		breakdowns[i].Items = items[breakdowns[i].ID]
	}
	return breakdowns, nil
}

func (r *breakdownRepository) itemsOf(ctx context.Context, breakdownIDs []string) (map[string][]payroll.LineItem, error) {
	items := make(map[string][]payroll.LineItem, len(breakdownIDs))
	if len(breakdownIDs) == 0 {
		return items, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT breakdown_id, concept, kind, amount, quantity
		FROM payroll_line_items
		WHERE breakdown_id = ANY($1)
		ORDER BY breakdown_id, position`,
		breakdownIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var it payroll.LineItem
		if err := rows.Scan(&id, &it.Concept, &it.Kind, &it.Amount, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan payroll line item: %w", err)
		}
		items[id] = append(items[id], it)
	}
	return items, rows.Err()
}

func (r *breakdownRepository) UpdateStatus(ctx context.Context, id string, status payroll.BreakdownStatus, paidAt *time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE payroll_breakdowns SET status = $2, paid_at = $3, updated_at = NOW() WHERE id = $1`,
		id, status, paidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll breakdown status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrBreakdownNotFound
	}
	return nil
}
