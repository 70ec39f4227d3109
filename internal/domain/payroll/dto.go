package payroll

import (
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== COMPUTATION DTOs ==========

type PreviewSingleRequest struct {
	ContractID string `json:"contractId"`
	Period     string `json:"period"`
}

func (r *PreviewSingleRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ContractID) {
		errs.Add("contractId", "contractId is required")
	} else if !validator.IsValidUUID(r.ContractID) {
		errs.Add("contractId", "contractId must be a valid UUIDv7")
	}
	validatePeriod(&errs, r.Period)
	return errs.Err()
}

type PreviewBatchRequest struct {
	Period string `json:"period"`
}

func (r *PreviewBatchRequest) Validate() error {
	var errs validator.ValidationErrors
	validatePeriod(&errs, r.Period)
	return errs.Err()
}

type UpdateStatusRequest struct {
	ID     string  `json:"-"`
	Status string  `json:"estado"`
	PaidAt *string `json:"fechaPago,omitempty"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUIDv7")
	}
	if _, err := ParseStatus(r.Status); err != nil {
		errs.Add("estado", "estado must be one of pending, generated, paid")
	}
	if r.PaidAt != nil {
		if _, ok := validator.IsValidDate(*r.PaidAt); !ok {
			errs.Add("fechaPago", "fechaPago must be YYYY-MM-DD")
		}
	}
	return errs.Err()
}

type BreakdownFilter struct {
	Period *string
	Status *string
}

func (f BreakdownFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Period != nil {
		validatePeriod(&errs, *f.Period)
	}
	if f.Status != nil {
		if _, err := ParseStatus(*f.Status); err != nil {
			errs.Add("estado", "estado must be one of pending, generated, paid")
		}
	}
	return errs.Err()
}

type LineItemResponse struct {
	Concept  string          `json:"concept"`
	Kind     string          `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
	Quantity decimal.Decimal `json:"quantity"`
}

type BreakdownResponse struct {
	ID              string             `json:"id,omitempty"`
	ContractID      string             `json:"contract_id"`
	EmployeeID      string             `json:"employee_id"`
	EmployeeName    *string            `json:"employee_name,omitempty"`
	Period          string             `json:"period"`
	Items           []LineItemResponse `json:"items"`
	TotalGross      decimal.Decimal    `json:"total_gross"`
	TotalDeductions decimal.Decimal    `json:"total_deductions"`
	TotalNet        decimal.Decimal    `json:"total_net"`
	Status          string             `json:"status"`
	Origin          string             `json:"origin"`
	PaidAt          *string            `json:"paid_at,omitempty"`
	CreatedAt       *string            `json:"created_at,omitempty"`
}

func ToBreakdownResponse(b Breakdown) BreakdownResponse {
	items := make([]LineItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, LineItemResponse{
			Concept:  it.Concept,
			Kind:     string(it.Kind),
			Amount:   it.Amount,
			Quantity: it.Quantity,
		})
	}
	resp := BreakdownResponse{
		ID:              b.ID,
		ContractID:      b.ContractID,
		EmployeeID:      b.EmployeeID,
		EmployeeName:    b.EmployeeName,
		Period:          b.Period.String(),
		Items:           items,
		TotalGross:      b.TotalGross,
		TotalDeductions: b.TotalDeductions,
		TotalNet:        b.TotalNet,
		Status:          string(b.Status),
		Origin:          string(b.Origin),
	}
	if b.PaidAt != nil {
		s := b.PaidAt.Format(calendar.DateLayout)
		resp.PaidAt = &s
	}
	if !b.CreatedAt.IsZero() {
		s := b.CreatedAt.Format(time.RFC3339)
		resp.CreatedAt = &s
	}
	return resp
}

type PreviewBatchResponse struct {
	Data    []BreakdownResponse `json:"data"`
	Message string              `json:"message,omitempty"`
}

type CommitBatchResponse struct {
	Created []BreakdownResponse `json:"created"`
	Skipped int                 `json:"skipped"`
}

// ========== CONCEPT DTOs ==========

type CreateConceptRequest struct {
	Code         *string         `json:"code,omitempty"`
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	IsPercentage bool            `json:"is_percentage"`
	Value        decimal.Decimal `json:"value"`
	Formula      string          `json:"formula"`
	Position     int             `json:"position"`
}

func (r *CreateConceptRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Required("name", r.Name)
	if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}
	if !ConceptKind(r.Kind).Valid() {
		errs.Add("kind", "kind must be 'remunerative' or 'deduction'")
	}
	if r.Value.IsNegative() {
		errs.Add("value", "value must be non-negative")
	}
	if _, err := ParseFormula(r.Formula); err != nil {
		errs.Add("formula", "formula must be one of BASIC, SENIORITY, ATTENDANCE, GROSS or empty")
	}
	if r.Code != nil && !validator.IsInSlice(*r.Code, []string{CodeSeniority, CodeAttendance, CodeHealthInsurance}) {
		errs.Add("code", "code must be one of SENIORITY, ATTENDANCE, HEALTH_INSURANCE")
	}
	if r.Position < 0 {
		errs.Add("position", "position must not be negative")
	}
	return errs.Err()
}

type UpdateConceptRequest struct {
	ID           string           `json:"-"`
	Name         *string          `json:"name,omitempty"`
	IsPercentage *bool            `json:"is_percentage,omitempty"`
	Value        *decimal.Decimal `json:"value,omitempty"`
	Active       *bool            `json:"active,omitempty"`
	Position     *int             `json:"position,omitempty"`
}

func (r *UpdateConceptRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUIDv7")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Value != nil && r.Value.IsNegative() {
		errs.Add("value", "value must be non-negative")
	}
	if r.Position != nil && *r.Position < 0 {
		errs.Add("position", "position must not be negative")
	}
	return errs.Err()
}

type ConceptResponse struct {
	ID           string          `json:"id"`
	Code         *string         `json:"code,omitempty"`
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	IsPercentage bool            `json:"is_percentage"`
	Value        decimal.Decimal `json:"value"`
	Formula      string          `json:"formula"`
	Active       bool            `json:"active"`
	Position     int             `json:"position"`
}

func ToConceptResponse(c SalaryConcept) ConceptResponse {
	return ConceptResponse{
		ID:           c.ID,
		Code:         c.Code,
		Name:         c.Name,
		Kind:         string(c.Kind),
		IsPercentage: c.IsPercentage,
		Value:        c.Value,
		Formula:      c.Formula.String(),
		Active:       c.Active,
		Position:     c.Position,
	}
}

func validatePeriod(errs *validator.ValidationErrors, period string) {
	if validator.IsEmpty(period) {
		errs.Add("period", "period is required")
	} else if !validator.IsValidPeriod(period) {
		errs.Add("period", "period must be YYYY-MM")
	}
}
