package contract

import (
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// Type enum
type Type string

const (
	TypePermanent   Type = "permanent"
	TypeTrialPeriod Type = "trial_period"
	TypeFixedTerm   Type = "fixed_term"
	TypeSeasonal    Type = "seasonal"
	TypeRemote      Type = "remote"

	TypeServiceContract    Type = "service_contract"
	TypeFreelanceInvoicing Type = "freelance_invoicing"
	TypeHonorarium         Type = "honorarium"
	TypeProjectContract    Type = "project_contract"

	TypeInternship  Type = "internship"
	TypeScholarship Type = "scholarship"
	TypeUnpaid      Type = "unpaid"
)

// Category enum
type Category string

const (
	CategoryDependent Category = "dependent"
	CategoryNonLabor  Category = "non_labor"
	CategoryFormative Category = "formative"
)

// Category derives the labor category from the contract type.
func (t Type) Category() Category {
	switch t {
	case TypePermanent, TypeTrialPeriod, TypeFixedTerm, TypeSeasonal, TypeRemote:
		return CategoryDependent
	case TypeServiceContract, TypeFreelanceInvoicing, TypeHonorarium, TypeProjectContract:
		return CategoryNonLabor
	default:
		return CategoryFormative
	}
}

// Status enum
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
)

// Contract - one employment or engagement relation of an employee
type Contract struct {
	ID             string
	EmployeeID     string
	Type           Type
	StartDate      time.Time
	EndDate        *time.Time
	Salary         decimal.Decimal // monthly basic, or agreed amount for non-labor contracts
	WeeklySchedule string
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined fields
	EmployeeName *string
}

func (c Contract) Category() Category {
	return c.Type.Category()
}

// DeriveStatus computes the lifecycle status relative to today. An end date on or
// before today always yields finished.
func DeriveStatus(start time.Time, end *time.Time, today time.Time) Status {
	today = calendar.Truncate(today)
	if end != nil && !calendar.Truncate(*end).After(today) {
		return StatusFinished
	}
	if calendar.Truncate(start).After(today) {
		return StatusPending
	}
	return StatusInProgress
}

// Refresh recomputes Status; call it on every create or update.
func (c *Contract) Refresh(today time.Time) {
	c.Status = DeriveStatus(c.StartDate, c.EndDate, today)
}

// ActiveDuring reports whether the contract covers at least one day of [from, to].
func (c Contract) ActiveDuring(from, to time.Time) bool {
	end := to
	if c.EndDate != nil {
		end = *c.EndDate
	}
	return calendar.Overlaps(c.StartDate, end, from, to)
}

// LastDay is the contract end date, or fallback when the contract is open-ended
// or ends after fallback.
func (c Contract) LastDay(fallback time.Time) time.Time {
	if c.EndDate != nil && c.EndDate.Before(fallback) {
		return calendar.Truncate(*c.EndDate)
	}
	return calendar.Truncate(fallback)
}

// MonthsOfService counts full months between the start date and ref.
func (c Contract) MonthsOfService(ref time.Time) int {
	start := calendar.Truncate(c.StartDate)
	ref = calendar.Truncate(ref)
	if ref.Before(start) {
		return 0
	}
	months := (ref.Year()-start.Year())*12 + int(ref.Month()-start.Month())
	if ref.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// YearsOfService counts full years between the start date and ref.
func (c Contract) YearsOfService(ref time.Time) int {
	return c.MonthsOfService(ref) / 12
}
