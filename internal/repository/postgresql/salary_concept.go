package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/database"
)

type conceptRepository struct {
	db *database.DB
}

func NewConceptRepository(db *database.DB) payroll.ConceptRepository {
	return &conceptRepository{db: db}
}

const conceptColumns = `
	sc.id, sc.code, sc.name, sc.kind, sc.is_percentage, sc.value, sc.formula,
	sc.active, sc.position, sc.created_at, sc.updated_at
`

func scanConcept(row pgx.Row) (payroll.SalaryConcept, error) {
	var c payroll.SalaryConcept
	var formula string
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.Kind, &c.IsPercentage, &c.Value, &formula,
		&c.Active, &c.Position, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return payroll.SalaryConcept{}, err
	}
	if c.Formula, err = payroll.ParseFormula(formula); err != nil {
		return payroll.SalaryConcept{}, fmt.Errorf("concept %s: %w", c.ID, err)
	}
	return c, nil
}

func (r *conceptRepository) Create(ctx context.Context, concept payroll.SalaryConcept) (payroll.SalaryConcept, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return payroll.SalaryConcept{}, fmt.Errorf("failed to generate concept id: %w", err)
	}

	query := `
		INSERT INTO salary_concepts AS sc (id, code, name, kind, is_percentage, value, formula, active, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + conceptColumns

	created, err := scanConcept(q.QueryRow(ctx, query,
		id, concept.Code, concept.Name, concept.Kind, concept.IsPercentage, concept.Value,
		concept.Formula.String(), concept.Active, concept.Position,
	))
	if err != nil {
		return payroll.SalaryConcept{}, fmt.Errorf("failed to create salary concept: %w", err)
	}
	return created, nil
}

func (r *conceptRepository) GetByID(ctx context.Context, id string) (payroll.SalaryConcept, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanConcept(q.QueryRow(ctx, `SELECT `+conceptColumns+` FROM salary_concepts sc WHERE sc.id = $1`, id))
	if err != nil {
		if isNotFound(err) {
			return payroll.SalaryConcept{}, payroll.ErrConceptNotFound
		}
		return payroll.SalaryConcept{}, fmt.Errorf("failed to get salary concept: %w", err)
	}
	return c, nil
}

func (r *conceptRepository) List(ctx context.Context, activeOnly bool) ([]payroll.SalaryConcept, error) {
	query := `SELECT ` + conceptColumns + ` FROM salary_concepts sc`
	if activeOnly {
		query += " WHERE sc.active = true"
	}
	query += " ORDER BY sc.position, sc.name"

	return r.list(ctx, query)
}

func (r *conceptRepository) ListByContract(ctx context.Context, contractID string) ([]payroll.SalaryConcept, error) {
	query := `SELECT ` + conceptColumns + `
		FROM salary_concepts sc
		JOIN contract_salary_concepts csc ON csc.concept_id = sc.id
		WHERE csc.contract_id = $1
		ORDER BY sc.position, csc.created_at
	`
	return r.list(ctx, query, contractID)
}

func (r *conceptRepository) list(ctx context.Context, query string, args ...interface{}) ([]payroll.SalaryConcept, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary concepts: %w", err)
	}
	defer rows.Close()

	var concepts []payroll.SalaryConcept
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary concept: %w", err)
		}
		concepts = append(concepts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary concepts: %w", err)
	}
	return concepts, nil
}

func (r *conceptRepository) Update(ctx context.Context, concept payroll.SalaryConcept) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_concepts SET
			name = $2, is_percentage = $3, value = $4, active = $5, position = $6, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		concept.ID, concept.Name, concept.IsPercentage, concept.Value, concept.Active, concept.Position,
	)
	if err != nil {
		return fmt.Errorf("failed to update salary concept: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrConceptNotFound
	}
	return nil
}

func (r *conceptRepository) Assign(ctx context.Context, contractID, conceptID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx,
		`INSERT INTO contract_salary_concepts (contract_id, concept_id) VALUES ($1, $2)`,
		contractID, conceptID,
	)
	if err != nil {
		if isUniqueViolation(err, "pk_contract_salary_concepts") {
			return payroll.ErrConceptAlreadyAssigned
		}
		return fmt.Errorf("failed to assign salary concept: %w", err)
	}
	return nil
}

func (r *conceptRepository) Unassign(ctx context.Context, contractID, conceptID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`DELETE FROM contract_salary_concepts WHERE contract_id = $1 AND concept_id = $2`,
		contractID, conceptID,
	)
	if err != nil {
		if isNotFound(err) {
			return payroll.ErrConceptNotAssigned
		}
		return fmt.Errorf("failed to remove salary concept: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrConceptNotAssigned
	}
	return nil
}
