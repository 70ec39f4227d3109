package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/database"
)

type contractRepository struct {
	db *database.DB
}

func NewContractRepository(db *database.DB) contract.ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `
	c.id, c.employee_id, c.type, c.start_date, c.end_date, c.salary, c.weekly_schedule,
	c.status, c.created_at, c.updated_at, e.first_name || ' ' || e.last_name
`

func scanContract(row pgx.Row) (contract.Contract, error) {
	var c contract.Contract
	err := row.Scan(
		&c.ID, &c.EmployeeID, &c.Type, &c.StartDate, &c.EndDate, &c.Salary, &c.WeeklySchedule,
		&c.Status, &c.CreatedAt, &c.UpdatedAt, &c.EmployeeName,
	)
	return c, err
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (contract.Contract, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + contractColumns + `
		FROM contracts c
		JOIN employees e ON e.id = c.employee_id
		WHERE c.id = $1
	`

	c, err := scanContract(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return contract.Contract{}, contract.ErrContractNotFound
		}
		return contract.Contract{}, fmt.Errorf("failed to get contract: %w", err)
	}
	return c, nil
}

func (r *contractRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]contract.Contract, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + contractColumns + `
		FROM contracts c
		JOIN employees e ON e.id = c.employee_id
		WHERE c.start_date <= $2
		  AND (c.end_date IS NULL OR c.end_date >= $1)
		ORDER BY c.start_date, c.id
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list active contracts: %w", err)
	}
	defer rows.Close()

	var contracts []contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contracts: %w", err)
	}
	return contracts, nil
}

func (r *contractRepository) UpdateEndDate(ctx context.Context, id string, endDate time.Time, status contract.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE contracts
		SET end_date = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, endDate, status)
	if err != nil {
		return fmt.Errorf("failed to update contract end date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contract.ErrContractNotFound
	}
	return nil
}
