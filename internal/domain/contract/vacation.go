package contract

import (
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
)

// MinDaysForFullEntitlement is the service-year threshold below which vacation
// accrues at one day per twenty worked.
const MinDaysForFullEntitlement = 180

// VacationEntitlement is the annual vacation table by full years of service.
// The upper tier is inclusive: exactly 5 years already grants 21 days.
func VacationEntitlement(years int) int {
	switch {
	case years < 5:
		return 14
	case years < 10:
		return 21
	case years < 20:
		return 28
	default:
		return 35
	}
}

// EntitlementWindow is the vacation window for a period year: May 1 of year to
// April 30 of the next year.
func EntitlementWindow(year int) (time.Time, time.Time) {
	return time.Date(year, time.May, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year+1, time.April, 30, 0, 0, 0, 0, time.UTC)
}

// DaysWorkedBetween counts contract days inside [from, to].
func (c Contract) DaysWorkedBetween(from, to time.Time) int {
	start, end, ok := calendar.Intersect(c.StartDate, c.LastDay(to), from, to)
	if !ok {
		return 0
	}
	return calendar.DaysInclusive(start, end)
}

// EntitledVacationDays returns the days earned for the service year [from, to].
func (c Contract) EntitledVacationDays(from, to time.Time) int {
	worked := c.DaysWorkedBetween(from, to)
	if worked < MinDaysForFullEntitlement {
		return worked / 20
	}
	return VacationEntitlement(c.YearsOfService(c.LastDay(to)))
}
