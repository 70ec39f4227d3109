package payroll

import (
	"fmt"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// Settings are the tunable parameters of the calculation.
type Settings struct {
	// AbsenceThreshold is the number of unjustified absence days tolerated
	// before the attendance bonus is forfeited.
	AbsenceThreshold int
	// SeniorityAnnualRate is the percentage per full year of service used when
	// the contract has no SENIORITY concept.
	SeniorityAnnualRate decimal.Decimal
	// SeniorityMonthlyRate is the fraction of basic per month of service for
	// employees under one year.
	SeniorityMonthlyRate decimal.Decimal
}

func DefaultSettings() Settings {
	return Settings{
		AbsenceThreshold:     1,
		SeniorityAnnualRate:  decimal.NewFromInt(1),
		SeniorityMonthlyRate: decimal.RequireFromString("0.00083"),
	}
}

const (
	LineBasic              = "Basic salary"
	LineAgreedAmount       = "Agreed amount"
	LineSeniority          = "Seniority"
	LineAttendance         = "Attendance bonus"
	LineVacationPay        = "Vacation pay"
	LineSAC                = "SAC (semiannual bonus)"
	LineAbsences           = "Unjustified absences"
	LineUnusedVacation     = "Unused vacation settlement"
	lineOvertimeFmt        = "Overtime %d%%"
	prorationDays          = 30
	hoursPerMonth          = 192
	vacationDaysPerMonth   = 25
	nonLaborAbsenceDivisor = 80
)

var hundred = decimal.NewFromInt(100)

// Input is everything one computation needs; the engine performs no I/O.
type Input struct {
	Contract contract.Contract
	Period   payroll.Period
	Concepts ResolvedConcepts
	Requests []request.Request
	Calendar calendar.Calendar
	Origin   payroll.Origin
}

type Engine struct {
	settings Settings
}

func NewEngine(settings Settings) *Engine {
	return &Engine{settings: settings}
}

// Compute returns the pending breakdown of one contract for one period. The
// same input always yields the same breakdown.
func (e *Engine) Compute(in Input) payroll.Breakdown {
	var items lines
	switch in.Contract.Category() {
	case contract.CategoryDependent:
		items = e.dependent(in)
	default:
		// formative stipends follow the non-labor rules
		items = e.nonLabor(in)
	}

	gross, deductions, extra := items.totals()
	return payroll.Breakdown{
		ContractID:      in.Contract.ID,
		EmployeeID:      in.Contract.EmployeeID,
		EmployeeName:    in.Contract.EmployeeName,
		Period:          in.Period,
		Items:           items,
		TotalGross:      gross,
		TotalDeductions: deductions,
		TotalNet:        gross.Sub(deductions).Add(extra),
		Status:          payroll.StatusPending,
		Origin:          in.Origin,
	}
}

func (e *Engine) dependent(in Input) lines {
	c := in.Contract
	first, last, ok := workedSpan(c, in.Period)
	if !ok {
		return nil
	}
	var items lines

	// basic, prorated when the contract starts or ends inside the period
	daysWorked := min(calendar.DaysInclusive(first, last), prorationDays)
	basic := c.Salary
	if first.After(in.Period.Start()) || last.Before(in.Period.End()) {
		basic = safeDiv(basic.Mul(decimal.NewFromInt(int64(daysWorked))), decimal.NewFromInt(prorationDays))
	}
	basic = items.add(LineBasic, payroll.KindRemunerative, basic, decimal.NewFromInt(int64(daysWorked)))

	// seniority as of the last worked day of the period
	seniority, seniorityQty := e.seniority(c, basic, last, in.Concepts.Seniority)
	seniority = items.add(labelOf(in.Concepts.Seniority, LineSeniority), payroll.KindRemunerative, seniority, seniorityQty)

	absences := unjustifiedAbsenceDays(in.Requests, first, last)
	attendance := decimal.Zero
	if absences <= e.settings.AbsenceThreshold {
		attendance = safeDiv(basic.Add(seniority), decimal.NewFromInt(12))
	}
	attendance = items.add(labelOf(in.Concepts.Attendance, LineAttendance), payroll.KindRemunerative, attendance, decimal.NewFromInt(int64(absences)))

	b := bases{basic: basic, seniority: seniority, attendance: attendance}

	// remunerative cascade; GROSS-based concepts see every earlier addition
	gross := basic.Add(seniority).Add(attendance)
	for _, concept := range in.Concepts.Cascade {
		if concept.Kind != payroll.KindRemunerative {
			continue
		}
		amount := conceptAmount(concept, b.pick(concept, gross))
		gross = gross.Add(items.add(concept.Name, payroll.KindRemunerative, amount, quantityOf(concept)))
	}

	e.overtime(&items, in.Requests, gross, first, last)

	vacationDays := approvedVacationBusinessDays(in.Requests, in.Calendar, first, last)
	vacationPay := safeDiv(gross.Mul(decimal.NewFromInt(int64(vacationDays))), decimal.NewFromInt(vacationDaysPerMonth))
	items.add(LineVacationPay, payroll.KindRemunerative, vacationPay, decimal.NewFromInt(int64(vacationDays)))

	if in.Period.Month == time.June || in.Period.Month == time.December {
		sac, qty := sacAmount(c, in.Period, gross, last)
		items.add(LineSAC, payroll.KindRemunerative, sac, qty)
	}

	absenceDeduction := safeDiv(gross, decimal.NewFromInt(prorationDays)).Mul(decimal.NewFromInt(int64(absences)))
	items.subtract(LineAbsences, absenceDeduction, decimal.NewFromInt(int64(absences)))

	// deductions run once against the final gross
	totalGross, _, _ := items.totals()
	for _, concept := range in.Concepts.Cascade {
		if concept.Kind != payroll.KindDeduction {
			continue
		}
		amount := conceptAmount(concept, b.pick(concept, totalGross))
		items.add(concept.Name, payroll.KindDeduction, amount, quantityOf(concept))
	}

	if in.Period.Month == time.May {
		unused := unusedVacationDays(c, in.Requests, in.Period.Year-1)
		settlement := safeDiv(totalGross.Mul(decimal.NewFromInt(int64(unused))), decimal.NewFromInt(vacationDaysPerMonth))
		items.add(LineUnusedVacation, payroll.KindNonRemunerative, settlement, decimal.NewFromInt(int64(unused)))
	}

	return items
}

func (e *Engine) nonLabor(in Input) lines {
	first, last, ok := workedSpan(in.Contract, in.Period)
	if !ok {
		return nil
	}
	var items lines

	agreed := items.add(LineAgreedAmount, payroll.KindRemunerative, in.Contract.Salary, decimal.NewFromInt(1))
	absences := unjustifiedAbsenceDays(in.Requests, first, last)
	deduction := safeDiv(agreed, decimal.NewFromInt(nonLaborAbsenceDivisor)).Mul(decimal.NewFromInt(int64(absences)))
	if deduction.GreaterThan(agreed) {
		deduction = agreed
	}
	items.subtract(LineAbsences, deduction, decimal.NewFromInt(int64(absences)))

	if hi := in.Concepts.HealthInsurance; hi != nil && hi.Kind == payroll.KindDeduction {
		gross, _, _ := items.totals()
		b := bases{basic: agreed}
		items.add(hi.Name, payroll.KindDeduction, conceptAmount(*hi, b.pick(*hi, gross)), quantityOf(*hi))
	}
	return items
}

// seniority returns the bonus and its quantity (years, or months under a year).
func (e *Engine) seniority(c contract.Contract, basic decimal.Decimal, ref time.Time, concept *payroll.SalaryConcept) (decimal.Decimal, decimal.Decimal) {
	if years := c.YearsOfService(ref); years >= 1 {
		rate := e.settings.SeniorityAnnualRate
		if concept != nil {
			rate = concept.Value
		}
		y := decimal.NewFromInt(int64(years))
		return basic.Mul(y).Mul(safeDiv(rate, hundred)), y
	}
	months := decimal.NewFromInt(int64(c.MonthsOfService(ref)))
	return basic.Mul(months).Mul(e.settings.SeniorityMonthlyRate), months
}

// overtime emits one line per surcharge tier for approved entries in [from, to].
func (e *Engine) overtime(items *lines, requests []request.Request, gross decimal.Decimal, from, to time.Time) {
	hours := map[request.OvertimeTier]decimal.Decimal{}
	for _, r := range requests {
		if r.Variant != request.VariantOvertime || !r.Blocking() {
			continue
		}
		if calendar.Contains(from, to, r.Overtime.Date) {
			hours[r.Overtime.Tier] = hours[r.Overtime.Tier].Add(r.Overtime.Hours)
		}
	}
	hourly := safeDiv(gross, decimal.NewFromInt(hoursPerMonth))
	for _, tier := range []request.OvertimeTier{request.Tier50, request.Tier100} {
		h, ok := hours[tier]
		if !ok {
			continue
		}
		factor := decimal.NewFromInt(1).Add(safeDiv(decimal.NewFromInt(int64(tier)), hundred))
		items.add(fmt.Sprintf(lineOvertimeFmt, tier), payroll.KindRemunerative, hourly.Mul(factor).Mul(h), h)
	}
}

// sacAmount is half the gross, prorated by the semester days the contract
// covers when it began (or ended) inside the semester.
func sacAmount(c contract.Contract, p payroll.Period, gross decimal.Decimal, last time.Time) (decimal.Decimal, decimal.Decimal) {
	semStart, semEnd := p.SemesterBounds()
	semesterDays := calendar.DaysInclusive(semStart, semEnd)
	half := safeDiv(gross, decimal.NewFromInt(2))

	start, end, ok := calendar.Intersect(c.StartDate, last, semStart, semEnd)
	if !ok {
		return decimal.Zero, decimal.Zero
	}
	worked := calendar.DaysInclusive(start, end)
	if worked >= semesterDays {
		return half, decimal.NewFromInt(int64(semesterDays))
	}
	return safeDiv(half.Mul(decimal.NewFromInt(int64(worked))), decimal.NewFromInt(int64(semesterDays))),
		decimal.NewFromInt(int64(worked))
}

// unusedVacationDays is the entitlement of the service year May 1 year to
// Apr 30 year+1 minus the days approved against it.
func unusedVacationDays(c contract.Contract, requests []request.Request, year int) int {
	from, to := contract.EntitlementWindow(year)
	entitled := c.EntitledVacationDays(from, to)
	return max(entitled-request.TakenVacationDays(requests, year, ""), 0)
}

func unjustifiedAbsenceDays(requests []request.Request, from, to time.Time) int {
	days := 0
	for _, r := range requests {
		if r.Variant != request.VariantLeave || !r.Active || r.Leave.State != request.StateUnjustified {
			continue
		}
		if start, end, ok := calendar.Intersect(r.Leave.StartDate, r.Leave.EndDate, from, to); ok {
			days += calendar.DaysInclusive(start, end)
		}
	}
	return days
}

func approvedVacationBusinessDays(requests []request.Request, cal calendar.Calendar, from, to time.Time) int {
	days := 0
	for _, r := range requests {
		if r.Variant != request.VariantVacation || !r.Blocking() {
			continue
		}
		if start, end, ok := calendar.Intersect(r.Vacation.StartDate, r.Vacation.EndDate, from, to); ok {
			days += cal.CountBusinessDays(start, end)
		}
	}
	return days
}

// workedSpan is the part of the period covered by the contract.
func workedSpan(c contract.Contract, p payroll.Period) (time.Time, time.Time, bool) {
	return calendar.Intersect(c.StartDate, c.LastDay(p.End()), p.Start(), p.End())
}

type bases struct {
	basic      decimal.Decimal
	seniority  decimal.Decimal
	attendance decimal.Decimal
}

// pick selects the base of a concept; untagged deductions use gross and
// untagged remunerative concepts use basic.
func (b bases) pick(c payroll.SalaryConcept, gross decimal.Decimal) decimal.Decimal {
	switch c.Formula {
	case payroll.FormulaGross:
		return gross
	case payroll.FormulaBasic:
		return b.basic
	case payroll.FormulaSeniority:
		return b.seniority
	case payroll.FormulaAttendance:
		return b.attendance
	case payroll.FormulaNone:
		if c.Kind == payroll.KindDeduction {
			return gross
		}
		return b.basic
	default:
		panic(fmt.Sprintf("unhandled formula %d", c.Formula))
	}
}

func conceptAmount(c payroll.SalaryConcept, base decimal.Decimal) decimal.Decimal {
	if c.IsPercentage {
		return base.Mul(safeDiv(c.Value, hundred))
	}
	return c.Value
}

func quantityOf(c payroll.SalaryConcept) decimal.Decimal {
	if c.IsPercentage {
		return c.Value
	}
	return decimal.NewFromInt(1)
}

func labelOf(c *payroll.SalaryConcept, fallback string) string {
	if c != nil && c.Name != "" {
		return c.Name
	}
	return fallback
}

// safeDiv yields zero for a zero divisor instead of failing the computation.
func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

type lines []payroll.LineItem

// add rounds amount to cents and appends it when positive. It returns the
// emitted amount, zero when nothing was emitted.
func (l *lines) add(name string, kind payroll.ConceptKind, amount, quantity decimal.Decimal) decimal.Decimal {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero
	}
	*l = append(*l, payroll.LineItem{Concept: name, Kind: kind, Amount: amount, Quantity: quantity})
	return amount
}

// subtract emits a negative remunerative line that lowers the gross.
func (l *lines) subtract(name string, amount, quantity decimal.Decimal) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return
	}
	*l = append(*l, payroll.LineItem{Concept: name, Kind: payroll.KindRemunerative, Amount: amount.Neg(), Quantity: quantity})
}

func (l lines) totals() (gross, deductions, extra decimal.Decimal) {
	for _, it := range l {
		switch it.Kind {
		case payroll.KindRemunerative:
			gross = gross.Add(it.Amount)
		case payroll.KindDeduction:
			deductions = deductions.Add(it.Amount)
		case payroll.KindNonRemunerative:
			extra = extra.Add(it.Amount)
		}
	}
	return gross, deductions, extra
}
