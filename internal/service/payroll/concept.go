package payroll

import (
	"context"
	"fmt"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
)

func (s *Service) CreateConcept(ctx context.Context, req payroll.CreateConceptRequest) (payroll.SalaryConcept, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryConcept{}, err
	}
	formula, err := payroll.ParseFormula(req.Formula)
	if err != nil {
		return payroll.SalaryConcept{}, err
	}

	created, err := s.concepts.Create(ctx, payroll.SalaryConcept{
		Code:         req.Code,
		Name:         req.Name,
		Kind:         payroll.ConceptKind(req.Kind),
		IsPercentage: req.IsPercentage,
		Value:        req.Value,
		Formula:      formula,
		Active:       true,
		Position:     req.Position,
	})
	if err != nil {
		return payroll.SalaryConcept{}, fmt.Errorf("failed to create salary concept: %w", err)
	}
	return created, nil
}

func (s *Service) ListConcepts(ctx context.Context, activeOnly bool) ([]payroll.SalaryConcept, error) {
	return s.concepts.List(ctx, activeOnly)
}

func (s *Service) UpdateConcept(ctx context.Context, req payroll.UpdateConceptRequest) (payroll.SalaryConcept, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryConcept{}, err
	}

	concept, err := s.concepts.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.SalaryConcept{}, err
	}
	if req.Name != nil {
		concept.Name = *req.Name
	}
	if req.IsPercentage != nil {
		concept.IsPercentage = *req.IsPercentage
	}
	if req.Value != nil {
		concept.Value = *req.Value
	}
	if req.Active != nil {
		concept.Active = *req.Active
	}
	if req.Position != nil {
		concept.Position = *req.Position
	}

	if err := s.concepts.Update(ctx, concept); err != nil {
		return payroll.SalaryConcept{}, fmt.Errorf("failed to update salary concept: %w", err)
	}
	return concept, nil
}

// AssignConcept links a concept to a contract so future computations apply it.
func (s *Service) AssignConcept(ctx context.Context, contractID, conceptID string) error {
	if _, err := s.contracts.GetByID(ctx, contractID); err != nil {
		return err
	}
	if _, err := s.concepts.GetByID(ctx, conceptID); err != nil {
		return err
	}
	return s.concepts.Assign(ctx, contractID, conceptID)
}

func (s *Service) RemoveConcept(ctx context.Context, contractID, conceptID string) error {
	return s.concepts.Unassign(ctx, contractID, conceptID)
}
