package payroll

import (
	"testing"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dependentContract() contract.Contract {
	return contract.Contract{
		ID:         "c-dependent",
		EmployeeID: "e-1",
		Type:       contract.TypePermanent,
		StartDate:  date(2023, time.January, 15),
		Salary:     decimal.NewFromInt(100000),
	}
}

func unjustified(start, end time.Time) request.Request {
	return request.Request{ID: start.Format(calendar.DateLayout), Variant: request.VariantLeave, Active: true,
		Leave: &request.Leave{Reason: request.ReasonPersonalErrands, StartDate: start, EndDate: end, State: request.StateUnjustified}}
}

func approvedVacation(period int, start, end time.Time, days int) request.Request {
	return request.Request{ID: "v-" + start.Format(calendar.DateLayout), Variant: request.VariantVacation, Active: true,
		Vacation: &request.Vacation{Period: period, StartDate: start, EndDate: end, RequestedDays: days, State: request.StateApproved}}
}

func approvedOvertime(day time.Time, hours string, tier request.OvertimeTier) request.Request {
	return request.Request{ID: "o-" + day.Format(calendar.DateLayout), Variant: request.VariantOvertime, Active: true,
		Overtime: &request.Overtime{Date: day, StartTime: "18:00", EndTime: "20:00", Hours: dec(hours), Tier: tier, State: request.StateApproved}}
}

func compute(t *testing.T, c contract.Contract, period string, concepts []payroll.SalaryConcept, requests ...request.Request) payroll.Breakdown {
	t.Helper()
	p, err := payroll.ParsePeriod(period)
	require.NoError(t, err)
	return NewEngine(DefaultSettings()).Compute(Input{
		Contract: c,
		Period:   p,
		Concepts: SplitConcepts(concepts),
		Requests: requests,
		Calendar: calendar.New(),
		Origin:   payroll.OriginManual,
	})
}

func line(t *testing.T, b payroll.Breakdown, concept string) payroll.LineItem {
	t.Helper()
	for _, it := range b.Items {
		if it.Concept == concept {
			return it
		}
	}
	t.Fatalf("line %q not found in %+v", concept, b.Items)
	return payroll.LineItem{}
}

func hasLine(b payroll.Breakdown, concept string) bool {
	for _, it := range b.Items {
		if it.Concept == concept {
			return true
		}
	}
	return false
}

func TestComputeDependentBaseline(t *testing.T) {
	b := compute(t, dependentContract(), "2025-04", nil)

	assert.True(t, dec("100000").Equal(line(t, b, LineBasic).Amount))
	assert.True(t, dec("2000").Equal(line(t, b, LineSeniority).Amount))
	assert.True(t, dec("2").Equal(line(t, b, LineSeniority).Quantity))
	assert.True(t, dec("8500").Equal(line(t, b, LineAttendance).Amount))
	assert.True(t, dec("110500").Equal(b.TotalGross), "gross %s", b.TotalGross)
	assert.True(t, b.TotalDeductions.IsZero())
	assert.True(t, dec("110500").Equal(b.TotalNet))
	assert.Equal(t, payroll.StatusPending, b.Status)
	assert.Equal(t, "2025-04", b.Period.String())
}

func TestComputeHealthInsuranceDeduction(t *testing.T) {
	concepts := []payroll.SalaryConcept{{
		ID: "hi", Code: ptr(payroll.CodeHealthInsurance), Name: "Health insurance",
		Kind: payroll.KindDeduction, IsPercentage: true, Value: dec("3"), Active: true,
	}}
	b := compute(t, dependentContract(), "2025-04", concepts)

	assert.True(t, dec("3315").Equal(line(t, b, "Health insurance").Amount))
	assert.True(t, dec("3315").Equal(b.TotalDeductions))
	assert.True(t, dec("107185").Equal(b.TotalNet))
}

func TestComputeNonLaborAbsences(t *testing.T) {
	c := contract.Contract{
		ID: "c-freelance", EmployeeID: "e-2", Type: contract.TypeServiceContract,
		StartDate: date(2024, time.June, 1), Salary: decimal.NewFromInt(50000),
	}
	concepts := []payroll.SalaryConcept{{
		ID: "bonus", Name: "Productivity", Kind: payroll.KindRemunerative,
		Value: dec("9999"), Active: true,
	}}
	b := compute(t, c, "2025-04", concepts, unjustified(date(2025, time.April, 7), date(2025, time.April, 8)))

	assert.True(t, dec("-1250").Equal(line(t, b, LineAbsences).Amount))
	assert.True(t, dec("48750").Equal(b.TotalGross), "gross %s", b.TotalGross)
	assert.False(t, hasLine(b, "Productivity"), "non-labor contracts ignore the cascade")
	assert.False(t, hasLine(b, LineSeniority))
}

func TestComputeAbsenceThreshold(t *testing.T) {
	t.Run("one absence keeps attendance", func(t *testing.T) {
		b := compute(t, dependentContract(), "2025-04", nil, unjustified(date(2025, time.April, 7), date(2025, time.April, 7)))
		assert.True(t, dec("8500").Equal(line(t, b, LineAttendance).Amount))
		assert.True(t, dec("-3683.33").Equal(line(t, b, LineAbsences).Amount))
		assert.True(t, dec("106816.67").Equal(b.TotalGross), "gross %s", b.TotalGross)
	})

	t.Run("two absences forfeit attendance", func(t *testing.T) {
		b := compute(t, dependentContract(), "2025-04", nil, unjustified(date(2025, time.April, 7), date(2025, time.April, 8)))
		assert.False(t, hasLine(b, LineAttendance))
		assert.True(t, dec("-6800").Equal(line(t, b, LineAbsences).Amount))
		assert.True(t, dec("95200").Equal(b.TotalGross), "gross %s", b.TotalGross)
	})

	t.Run("absences outside the period are ignored", func(t *testing.T) {
		b := compute(t, dependentContract(), "2025-04", nil, unjustified(date(2025, time.March, 3), date(2025, time.March, 7)))
		assert.True(t, dec("110500").Equal(b.TotalGross))
	})
}

func TestComputeProration(t *testing.T) {
	c := dependentContract()
	c.StartDate = date(2025, time.April, 16)
	b := compute(t, c, "2025-04", nil)

	basic := line(t, b, LineBasic)
	assert.True(t, dec("50000").Equal(basic.Amount))
	assert.True(t, dec("15").Equal(basic.Quantity))
	assert.False(t, hasLine(b, LineSeniority), "no service months yet")
	assert.True(t, dec("4166.67").Equal(line(t, b, LineAttendance).Amount))
	assert.True(t, dec("54166.67").Equal(b.TotalGross))
}

func TestComputeContractOutsidePeriod(t *testing.T) {
	c := dependentContract()
	c.EndDate = ptr(date(2025, time.March, 31))
	b := compute(t, c, "2025-04", nil)

	assert.Empty(t, b.Items)
	assert.True(t, b.TotalNet.IsZero())
}

func TestComputeOvertime(t *testing.T) {
	b := compute(t, dependentContract(), "2025-04", nil,
		approvedOvertime(date(2025, time.April, 10), "2", request.Tier50),
		approvedOvertime(date(2025, time.May, 2), "4", request.Tier100),
	)

	ot := line(t, b, "Overtime 50%")
	assert.True(t, dec("1726.56").Equal(ot.Amount), "overtime %s", ot.Amount)
	assert.True(t, dec("2").Equal(ot.Quantity))
	assert.False(t, hasLine(b, "Overtime 100%"))
	assert.True(t, dec("112226.56").Equal(b.TotalGross))
}

func TestComputeVacationPay(t *testing.T) {
	vac := approvedVacation(2024, date(2025, time.April, 7), date(2025, time.April, 13), 5)
	b := compute(t, dependentContract(), "2025-04", nil, vac)

	pay := line(t, b, LineVacationPay)
	assert.True(t, dec("5").Equal(pay.Quantity))
	assert.True(t, dec("22100").Equal(pay.Amount))

	pending := vac
	pending.Vacation = &request.Vacation{Period: 2024, StartDate: vac.Vacation.StartDate, EndDate: vac.Vacation.EndDate, State: request.StatePending}
	b = compute(t, dependentContract(), "2025-04", nil, pending)
	assert.False(t, hasLine(b, LineVacationPay))
}

func TestComputeSAC(t *testing.T) {
	b := compute(t, dependentContract(), "2025-06", nil)
	assert.True(t, dec("55250").Equal(line(t, b, LineSAC).Amount))
	assert.True(t, dec("165750").Equal(b.TotalGross))

	b = compute(t, dependentContract(), "2025-05", nil)
	assert.False(t, hasLine(b, LineSAC))

	t.Run("prorated for a contract started inside the semester", func(t *testing.T) {
		c := dependentContract()
		c.StartDate = date(2025, time.April, 1)
		b := compute(t, c, "2025-06", nil)

		sac := line(t, b, LineSAC)
		assert.True(t, dec("91").Equal(sac.Quantity))
		gross := b.TotalGross.Sub(sac.Amount)
		expected := gross.Div(decimal.NewFromInt(2)).Mul(decimal.NewFromInt(91)).Div(decimal.NewFromInt(181)).Round(2)
		assert.True(t, expected.Equal(sac.Amount), "expected %s got %s", expected, sac.Amount)
	})
}

func TestComputeMayUnusedVacation(t *testing.T) {
	taken := approvedVacation(2024, date(2025, time.January, 6), date(2025, time.January, 17), 10)
	b := compute(t, dependentContract(), "2025-05", nil, taken)

	settlement := line(t, b, LineUnusedVacation)
	assert.Equal(t, payroll.KindNonRemunerative, settlement.Kind)
	assert.True(t, dec("4").Equal(settlement.Quantity))
	assert.True(t, dec("17680").Equal(settlement.Amount))
	assert.True(t, dec("110500").Equal(b.TotalGross), "settlement stays out of gross")
	assert.True(t, dec("128180").Equal(b.TotalNet))
}

func TestComputeCascadeOrder(t *testing.T) {
	onGross := payroll.SalaryConcept{ID: "g", Name: "On gross", Kind: payroll.KindRemunerative,
		IsPercentage: true, Value: dec("5"), Formula: payroll.FormulaGross, Active: true}
	onBasic := payroll.SalaryConcept{ID: "b", Name: "On basic", Kind: payroll.KindRemunerative,
		IsPercentage: true, Value: dec("10"), Formula: payroll.FormulaBasic, Active: true}

	onGross.Position, onBasic.Position = 1, 2
	b := compute(t, dependentContract(), "2025-04", []payroll.SalaryConcept{onBasic, onGross})
	assert.True(t, dec("5525").Equal(line(t, b, "On gross").Amount))
	assert.True(t, dec("10000").Equal(line(t, b, "On basic").Amount))

	onGross.Position, onBasic.Position = 2, 1
	b = compute(t, dependentContract(), "2025-04", []payroll.SalaryConcept{onGross, onBasic})
	assert.True(t, dec("6025").Equal(line(t, b, "On gross").Amount))
}

func TestComputeSeniorityConceptOverridesRate(t *testing.T) {
	concepts := []payroll.SalaryConcept{{
		ID: "s", Code: ptr(payroll.CodeSeniority), Name: "Antigüedad", Kind: payroll.KindRemunerative,
		IsPercentage: true, Value: dec("2"), Active: true,
	}}
	b := compute(t, dependentContract(), "2025-04", concepts)

	assert.True(t, dec("4000").Equal(line(t, b, "Antigüedad").Amount))
	assert.False(t, hasLine(b, LineSeniority))
}

func TestComputeIsDeterministic(t *testing.T) {
	requests := []request.Request{
		approvedOvertime(date(2025, time.June, 10), "3", request.Tier100),
		approvedVacation(2025, date(2025, time.June, 16), date(2025, time.June, 20), 5),
		unjustified(date(2025, time.June, 2), date(2025, time.June, 2)),
	}
	concepts := []payroll.SalaryConcept{
		{ID: "hi", Code: ptr(payroll.CodeHealthInsurance), Name: "Health insurance", Kind: payroll.KindDeduction, IsPercentage: true, Value: dec("3"), Active: true},
		{ID: "u", Name: "Union", Kind: payroll.KindDeduction, IsPercentage: true, Value: dec("2"), Active: true, Position: 1},
	}

	first := compute(t, dependentContract(), "2025-06", concepts, requests...)
	second := compute(t, dependentContract(), "2025-06", concepts, requests...)
	assert.Equal(t, first, second)
	assert.True(t, first.TotalNet.Equal(first.TotalGross.Sub(first.TotalDeductions)))
}

func TestSplitConcepts(t *testing.T) {
	all := []payroll.SalaryConcept{
		{ID: "3", Name: "c", Position: 3, Active: true},
		{ID: "off", Name: "inactive", Position: 0, Active: false},
		{ID: "att", Code: ptr(payroll.CodeAttendance), Position: 1, Active: true},
		{ID: "1", Name: "a", Position: 1, Active: true},
		{ID: "hi", Code: ptr(payroll.CodeHealthInsurance), Position: 2, Active: true},
		{ID: "2", Name: "b", Position: 1, Active: true},
	}
	out := SplitConcepts(all)

	require.NotNil(t, out.Attendance)
	assert.Equal(t, "att", out.Attendance.ID)
	require.NotNil(t, out.HealthInsurance)
	assert.Nil(t, out.Seniority)

	ids := make([]string, 0, len(out.Cascade))
	for _, c := range out.Cascade {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"1", "2", "hi", "3"}, ids)
}
