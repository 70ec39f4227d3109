package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period - a payroll month, persisted as YYYY-MM
type Period struct {
	Year  int
	Month time.Month
}

func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil || len(s) != 7 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is the first day of the month (UTC).
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the month (UTC).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Semester is 1 for January-June and 2 for July-December.
func (p Period) Semester() int {
	if p.Month <= time.June {
		return 1
	}
	return 2
}

// SemesterBounds returns the first and last day of the period's semester.
func (p Period) SemesterBounds() (time.Time, time.Time) {
	first := time.January
	if p.Semester() == 2 {
		first = time.July
	}
	start := time.Date(p.Year, first, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 6, -1)
}

// ConceptKind enum
type ConceptKind string

const (
	KindRemunerative ConceptKind = "remunerative"
	KindDeduction    ConceptKind = "deduction"
	// KindNonRemunerative marks line items paid on top of net, outside the gross.
	KindNonRemunerative ConceptKind = "non_remunerative"
)

func (k ConceptKind) Valid() bool {
	return k == KindRemunerative || k == KindDeduction
}

// Formula selects the base a percentage concept is applied to.
type Formula int

const (
	FormulaNone Formula = iota
	FormulaBasic
	FormulaSeniority
	FormulaAttendance
	FormulaGross
)

var formulaNames = map[Formula]string{
	FormulaNone:       "",
	FormulaBasic:      "BASIC",
	FormulaSeniority:  "SENIORITY",
	FormulaAttendance: "ATTENDANCE",
	FormulaGross:      "GROSS",
}

func ParseFormula(s string) (Formula, error) {
	for f, name := range formulaNames {
		if name == s {
			return f, nil
		}
	}
	return FormulaNone, fmt.Errorf("%w: %q", ErrInvalidFormula, s)
}

func (f Formula) String() string { return formulaNames[f] }

// Built-in concept codes consumed by dedicated engine steps.
const (
	CodeSeniority       = "SENIORITY"
	CodeAttendance      = "ATTENDANCE"
	CodeHealthInsurance = "HEALTH_INSURANCE"
)

// SalaryConcept - configurable remunerative or deduction item
type SalaryConcept struct {
	ID           string
	Code         *string
	Name         string
	Kind         ConceptKind
	IsPercentage bool
	Value        decimal.Decimal
	Formula      Formula
	Active       bool
	Position     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasCode reports whether the concept carries the given built-in code.
func (c SalaryConcept) HasCode(code string) bool {
	return c.Code != nil && *c.Code == code
}

// LineItem - one emitted row of a breakdown
type LineItem struct {
	Concept  string
	Kind     ConceptKind
	Amount   decimal.Decimal
	Quantity decimal.Decimal // days, hours or percentage depending on the concept
}

// BreakdownStatus enum
type BreakdownStatus string

const (
	StatusPending   BreakdownStatus = "pending"
	StatusGenerated BreakdownStatus = "generated"
	StatusPaid      BreakdownStatus = "paid"
)

var statusOrder = map[BreakdownStatus]int{StatusPending: 0, StatusGenerated: 1, StatusPaid: 2}

func ParseStatus(s string) (BreakdownStatus, error) {
	st := BreakdownStatus(s)
	if _, ok := statusOrder[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// CanAdvance allows only the next status in pending -> generated -> paid.
func (s BreakdownStatus) CanAdvance(to BreakdownStatus) bool {
	from, ok1 := statusOrder[s]
	next, ok2 := statusOrder[to]
	return ok1 && ok2 && next == from+1
}

// Origin enum
type Origin string

const (
	OriginManual Origin = "manual"
	OriginBatch  Origin = "batch"
)

// Breakdown - computed or persisted payroll result for one contract and period
type Breakdown struct {
	ID              string
	ContractID      string
	EmployeeID      string
	Period          Period
	Items           []LineItem
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	Status          BreakdownStatus
	Origin          Origin
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
}
