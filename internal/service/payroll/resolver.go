package payroll

import (
	"context"
	"fmt"
	"sort"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
)

// ResolvedConcepts is the active concept set of one contract, split into the
// built-ins consumed by dedicated engine steps and the ordered cascade.
type ResolvedConcepts struct {
	Seniority       *payroll.SalaryConcept
	Attendance      *payroll.SalaryConcept
	HealthInsurance *payroll.SalaryConcept
	// Cascade holds every other active concept by Position; health insurance stays
	// in it so dependent contracts deduct it like any other concept.
	Cascade []payroll.SalaryConcept
}

type Resolver struct {
	concepts payroll.ConceptRepository
}

func NewResolver(concepts payroll.ConceptRepository) *Resolver {
	return &Resolver{concepts: concepts}
}

func (r *Resolver) Resolve(ctx context.Context, contractID string) (ResolvedConcepts, error) {
	all, err := r.concepts.ListByContract(ctx, contractID)
	if err != nil {
		return ResolvedConcepts{}, fmt.Errorf("failed to list contract concepts: %w", err)
	}
	return SplitConcepts(all), nil
}

// SplitConcepts drops inactive concepts and orders the rest by Position, keeping
// the input order for ties.
func SplitConcepts(all []payroll.SalaryConcept) ResolvedConcepts {
	active := make([]payroll.SalaryConcept, 0, len(all))
	for _, c := range all {
		if c.Active {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Position < active[j].Position })

	var out ResolvedConcepts
	for i := range active {
		c := active[i]
		switch {
		case c.HasCode(payroll.CodeSeniority):
			if out.Seniority == nil {
				out.Seniority = &c
			}
		case c.HasCode(payroll.CodeAttendance):
			if out.Attendance == nil {
				out.Attendance = &c
			}
		case c.HasCode(payroll.CodeHealthInsurance):
			if out.HealthInsurance == nil {
				out.HealthInsurance = &c
			}
			out.Cascade = append(out.Cascade, c)
		default:
			out.Cascade = append(out.Cascade, c)
		}
	}
	return out
}
