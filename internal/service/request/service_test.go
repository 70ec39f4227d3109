package request

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/apperror"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	svc        *Service
	tx         *fakeTx
	requests   *fakeRequestRepo
	contracts  *fakeContractRepo
	settlement *fakeSettlement
	contract   contract.Contract
}

// newFixture builds a service around one permanent contract started 2015-03-01.
func newFixture(t *testing.T, now time.Time, holidays ...time.Time) *fixture {
	t.Helper()
	c := contract.Contract{
		ID:         uuid.Must(uuid.NewV7()).String(),
		EmployeeID: uuid.Must(uuid.NewV7()).String(),
		Type:       contract.TypePermanent,
		StartDate:  date(2015, time.March, 1),
		Salary:     decimal.NewFromInt(100000),
	}
	c.Refresh(now)

	requests := newFakeRequestRepo()
	contracts := newFakeContractRepo(c)
	tx := &fakeTx{repos: []snapshotter{requests, contracts}}
	settlement := &fakeSettlement{}

	svc := NewService(tx, requests, contracts, calendar.NewSource(nil, holidays...), settlement)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, tx: tx, requests: requests, contracts: contracts, settlement: settlement, contract: c}
}

func (f *fixture) seed(r request.Request) request.Request {
	if r.ContractID == "" {
		r.ContractID = f.contract.ID
	}
	r.Active = true
	created, _ := f.requests.Create(context.Background(), r)
	return created
}

func (f *fixture) stored(t *testing.T, id string) request.Request {
	t.Helper()
	r, err := f.requests.GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func vacationOf(period int, start, end time.Time, days int, state request.State) request.Request {
	return request.Request{Variant: request.VariantVacation, Vacation: &request.Vacation{
		Period: period, StartDate: start, EndDate: end, RequestedDays: days, State: state,
	}}
}

func leaveOf(start, end time.Time, state request.State) request.Request {
	return request.Request{Variant: request.VariantLeave, Leave: &request.Leave{
		Reason: request.ReasonIllness, StartDate: start, EndDate: end, State: state,
	}}
}

func overtimeOf(day time.Time, from, to string, state request.State) request.Request {
	return request.Request{Variant: request.VariantOvertime, Overtime: &request.Overtime{
		Date: day, StartTime: from, EndTime: to, Hours: decimal.NewFromInt(2), Tier: request.Tier50, State: state,
	}}
}

func resignationOf(notified time.Time, effective *time.Time, state request.State) request.Request {
	return request.Request{Variant: request.VariantResignation, Resignation: &request.Resignation{
		NotifiedOn: notified, EffectiveDate: effective, State: state,
	}}
}

var monday = date(2025, time.June, 2)

func TestCreateVacation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)

	created, err := f.svc.CreateVacation(ctx, request.CreateVacationRequest{
		ContractID: f.contract.ID,
		Period:     2025,
		StartDate:  "2025-07-07",
		EndDate:    "2025-07-18",
	})
	require.NoError(t, err)

	v := created.Vacation
	require.NotNil(t, v)
	assert.Equal(t, request.StatePending, v.State)
	assert.Equal(t, 10, v.RequestedDays)
	assert.Equal(t, 28, v.EntitledDays)
	assert.Equal(t, 28, v.AvailableDays)
	assert.Equal(t, date(2025, time.July, 21), v.ReturnDate)
	assert.Nil(t, v.NotifiedOn)

	_, err = f.svc.CreateVacation(ctx, request.CreateVacationRequest{
		ContractID: f.contract.ID,
		Period:     2025,
		StartDate:  "2025-09-01",
		EndDate:    "2025-09-05",
	})
	assert.ErrorIs(t, err, request.ErrPendingRequestExists)
	assert.True(t, apperror.IsConflict(err))
}

func TestCreateVacationOutsideEntitlementWindow(t *testing.T) {
	f := newFixture(t, monday)

	// ten business days in March 2025 belong to the 2024 window, not 2025
	_, err := f.svc.CreateVacation(context.Background(), request.CreateVacationRequest{
		ContractID: f.contract.ID,
		Period:     2025,
		StartDate:  "2025-03-03",
		EndDate:    "2025-03-14",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, request.ErrOutsideEntitlement)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, f.requests.items)
}

func TestCreateVacationInsufficientDays(t *testing.T) {
	f := newFixture(t, monday)
	f.seed(vacationOf(2025, date(2025, time.May, 5), date(2025, time.June, 6), 25, request.StateApproved))

	_, err := f.svc.CreateVacation(context.Background(), request.CreateVacationRequest{
		ContractID: f.contract.ID,
		Period:     2025,
		StartDate:  "2025-07-07",
		EndDate:    "2025-07-18",
	})
	assert.ErrorIs(t, err, request.ErrInsufficientVacation)
}

func TestCreateRequestUnknownOrFinishedContract(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)

	_, err := f.svc.CreateLeave(ctx, request.CreateLeaveRequest{
		ContractID: uuid.Must(uuid.NewV7()).String(),
		Reason:     string(request.ReasonExam),
		StartDate:  "2025-06-10",
		EndDate:    "2025-06-10",
	})
	assert.True(t, apperror.IsNotFound(err))

	c := f.contract
	c.EndDate = ptr(date(2025, time.May, 31))
	f.contracts.items[c.ID] = c
	_, err = f.svc.CreateLeave(ctx, request.CreateLeaveRequest{
		ContractID: c.ID,
		Reason:     string(request.ReasonExam),
		StartDate:  "2025-06-10",
		EndDate:    "2025-06-10",
	})
	assert.ErrorIs(t, err, contract.ErrContractFinished)
}

func TestCreateLeaveOverlap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)
	f.seed(vacationOf(2025, date(2025, time.July, 7), date(2025, time.July, 18), 10, request.StateApproved))
	// pending requests never block
	f.seed(overtimeOf(date(2025, time.July, 21), "18:00", "20:00", request.StatePending))

	_, err := f.svc.CreateLeave(ctx, request.CreateLeaveRequest{
		ContractID: f.contract.ID,
		Reason:     string(request.ReasonIllness),
		StartDate:  "2025-07-17",
		EndDate:    "2025-07-21",
	})
	assert.ErrorIs(t, err, request.ErrOverlap)

	created, err := f.svc.CreateLeave(ctx, request.CreateLeaveRequest{
		ContractID: f.contract.ID,
		Reason:     string(request.ReasonIllness),
		StartDate:  "2025-07-21",
		EndDate:    "2025-07-22",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created.Leave.Days())
}

func TestCreateOvertimeOverlap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)
	f.seed(overtimeOf(date(2025, time.June, 10), "18:00", "20:00", request.StateApproved))

	_, err := f.svc.CreateOvertime(ctx, request.CreateOvertimeRequest{
		ContractID: f.contract.ID, Date: "2025-06-10", StartTime: "19:00", EndTime: "21:00", Tier: 50,
	})
	assert.ErrorIs(t, err, request.ErrOverlap)

	created, err := f.svc.CreateOvertime(ctx, request.CreateOvertimeRequest{
		ContractID: f.contract.ID, Date: "2025-06-10", StartTime: "20:00", EndTime: "22:30", Tier: 100,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(2.5).Equal(created.Overtime.Hours))
}

func TestCreateOvertimeOnJustifiedLeaveDay(t *testing.T) {
	f := newFixture(t, monday)
	f.seed(leaveOf(date(2025, time.June, 16), date(2025, time.June, 18), request.StateJustified))

	_, err := f.svc.CreateOvertime(context.Background(), request.CreateOvertimeRequest{
		ContractID: f.contract.ID, Date: "2025-06-17", StartTime: "18:00", EndTime: "19:00", Tier: 50,
	})
	assert.ErrorIs(t, err, request.ErrOverlap)
}

func TestAcceptResignationRollsToBusinessDay(t *testing.T) {
	ctx := context.Background()
	friday := date(2025, time.March, 14)

	cases := []struct {
		name     string
		holidays []time.Time
		want     time.Time
	}{
		{"weekend", nil, date(2025, time.March, 31)},
		{"weekend then holiday", []time.Time{date(2025, time.March, 31)}, date(2025, time.April, 1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t, date(2025, time.March, 17), c.holidays...)
			created, err := f.svc.CreateResignation(ctx, request.CreateResignationRequest{
				ContractID: f.contract.ID,
				NotifiedOn: friday.Format(calendar.DateLayout),
			})
			require.NoError(t, err)

			accepted, err := f.svc.Transition(ctx, request.TransitionRequest{ID: created.ID, State: string(request.StateAccepted)})
			require.NoError(t, err)
			require.NotNil(t, accepted.Resignation.EffectiveDate)
			assert.Equal(t, c.want, *accepted.Resignation.EffectiveDate)
		})
	}
}

func TestResignationBlockedDuringVacation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)
	f.seed(vacationOf(2025, date(2025, time.May, 26), date(2025, time.June, 6), 10, request.StateApproved))

	_, err := f.svc.CreateResignation(ctx, request.CreateResignationRequest{ContractID: f.contract.ID, NotifiedOn: "2025-06-02"})
	assert.ErrorIs(t, err, request.ErrEmployeeAbsentToday)

	pending := f.seed(resignationOf(date(2025, time.May, 20), nil, request.StatePending))
	_, err = f.svc.Transition(ctx, request.TransitionRequest{ID: pending.ID, State: string(request.StateAccepted)})
	assert.ErrorIs(t, err, request.ErrEmployeeAbsentToday)
	assert.Equal(t, request.StatePending, f.stored(t, pending.ID).State())
}

func TestApprovalsExtendAcceptedResignation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)
	res := f.seed(resignationOf(date(2025, time.May, 20), ptr(date(2025, time.July, 1)), request.StateAccepted))
	vac := f.seed(vacationOf(2025, date(2025, time.June, 9), date(2025, time.June, 20), 10, request.StatePending))
	lv := f.seed(leaveOf(date(2025, time.June, 23), date(2025, time.June, 25), request.StatePending))

	approved, err := f.svc.Transition(ctx, request.TransitionRequest{ID: vac.ID, State: string(request.StateApproved)})
	require.NoError(t, err)
	require.NotNil(t, approved.Vacation.NotifiedOn)
	assert.Equal(t, monday, *approved.Vacation.NotifiedOn)
	assert.Equal(t, date(2025, time.July, 11), *f.stored(t, res.ID).Resignation.EffectiveDate)

	_, err = f.svc.Transition(ctx, request.TransitionRequest{ID: lv.ID, State: string(request.StateJustified)})
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.July, 14), *f.stored(t, res.ID).Resignation.EffectiveDate)
}

func TestProcessResignation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)
	res := f.seed(resignationOf(date(2025, time.May, 16), ptr(monday), request.StateAccepted))

	processed, err := f.svc.Transition(ctx, request.TransitionRequest{ID: res.ID, State: string(request.StateProcessed)})
	require.NoError(t, err)
	assert.Equal(t, request.StateProcessed, processed.State())
	assert.Equal(t, monday, *processed.Resignation.EffectiveDate)

	c := f.contracts.items[f.contract.ID]
	require.NotNil(t, c.EndDate)
	assert.Equal(t, monday, *c.EndDate)
	assert.Equal(t, contract.StatusFinished, c.Status)

	require.Len(t, f.settlement.calls, 1)
	assert.Equal(t, settlementCall{contractID: f.contract.ID, date: monday}, f.settlement.calls[0])

	_, err = f.svc.Transition(ctx, request.TransitionRequest{ID: res.ID, State: string(request.StateProcessed)})
	assert.ErrorIs(t, err, request.ErrRequestNotEditable)
}

func TestProcessResignationRollsBack(t *testing.T) {
	f := newFixture(t, monday)
	res := f.seed(resignationOf(date(2025, time.May, 16), ptr(monday), request.StateAccepted))
	f.requests.updateErr = errors.New("connection reset")

	_, err := f.svc.Transition(context.Background(), request.TransitionRequest{ID: res.ID, State: string(request.StateProcessed)})
	require.Error(t, err)

	assert.Nil(t, f.contracts.items[f.contract.ID].EndDate)
	assert.Equal(t, request.StateAccepted, f.stored(t, res.ID).State())
	assert.Empty(t, f.settlement.calls)
}

func TestSettlementFailureDoesNotUndoProcessing(t *testing.T) {
	f := newFixture(t, monday)
	res := f.seed(resignationOf(date(2025, time.May, 16), ptr(monday), request.StateAccepted))
	f.settlement.err = errors.New("payroll unavailable")

	_, err := f.svc.Transition(context.Background(), request.TransitionRequest{ID: res.ID, State: string(request.StateProcessed)})
	require.NoError(t, err)
	assert.Equal(t, request.StateProcessed, f.stored(t, res.ID).State())
}

func TestSweepResignations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)

	due := f.seed(resignationOf(date(2025, time.May, 10), ptr(date(2025, time.May, 30)), request.StateAccepted))
	notYet := f.seed(resignationOf(date(2025, time.May, 28), ptr(date(2025, time.June, 12)), request.StateAccepted))
	orphan := f.seed(request.Request{
		ContractID:  uuid.Must(uuid.NewV7()).String(),
		Variant:     request.VariantResignation,
		Resignation: &request.Resignation{NotifiedOn: date(2025, time.May, 1), EffectiveDate: ptr(date(2025, time.May, 16)), State: request.StateAccepted},
	})

	processed, err := f.svc.SweepResignations(ctx)
	assert.Equal(t, 1, processed)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrContractNotFound)

	assert.Equal(t, request.StateProcessed, f.stored(t, due.ID).State())
	assert.Equal(t, request.StateAccepted, f.stored(t, notYet.ID).State())
	assert.Equal(t, request.StateAccepted, f.stored(t, orphan.ID).State())
	assert.Len(t, f.settlement.calls, 1)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)

	lv := f.seed(leaveOf(date(2025, time.June, 9), date(2025, time.June, 10), request.StatePending))
	updated, err := f.svc.Update(ctx, request.UpdateRequest{ID: lv.ID, EndDate: ptr("2025-06-12")})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Leave.Days())

	_, err = f.svc.Update(ctx, request.UpdateRequest{ID: lv.ID, EndDate: ptr("2025-06-01")})
	assert.ErrorIs(t, err, request.ErrInvalidDateRange)

	_, err = f.svc.Update(ctx, request.UpdateRequest{ID: lv.ID, Tier: ptr(50)})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "tier")

	justified, err := f.svc.Update(ctx, request.UpdateRequest{ID: lv.ID, State: ptr(string(request.StateJustified))})
	require.NoError(t, err)
	assert.Equal(t, request.StateJustified, justified.State())

	_, err = f.svc.Update(ctx, request.UpdateRequest{ID: lv.ID, EndDate: ptr("2025-06-13")})
	assert.ErrorIs(t, err, request.ErrRequestNotEditable)

	res := f.seed(resignationOf(date(2025, time.May, 20), ptr(date(2025, time.June, 20)), request.StateAccepted))
	_, err = f.svc.Update(ctx, request.UpdateRequest{ID: res.ID, NotifiedOn: ptr("2025-05-21")})
	assert.ErrorIs(t, err, request.ErrOnlyStateEditable)
}

func TestInvalidTransition(t *testing.T) {
	f := newFixture(t, monday)
	vac := f.seed(vacationOf(2025, date(2025, time.July, 7), date(2025, time.July, 18), 10, request.StatePending))

	_, err := f.svc.Transition(context.Background(), request.TransitionRequest{ID: vac.ID, State: string(request.StateJustified)})
	assert.ErrorIs(t, err, request.ErrInvalidTransition)
	assert.True(t, apperror.IsConflict(err))
}

func TestDeleteAndReactivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)

	first, err := f.svc.CreateLeave(ctx, request.CreateLeaveRequest{
		ContractID: f.contract.ID, Reason: string(request.ReasonExam), StartDate: "2025-06-09", EndDate: "2025-06-09",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, first.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, first.ID), request.ErrRequestInactive)

	second, err := f.svc.CreateLeave(ctx, request.CreateLeaveRequest{
		ContractID: f.contract.ID, Reason: string(request.ReasonExam), StartDate: "2025-06-11", EndDate: "2025-06-11",
	})
	require.NoError(t, err)

	_, err = f.svc.Reactivate(ctx, first.ID)
	assert.ErrorIs(t, err, request.ErrPendingRequestExists)
	assert.False(t, f.stored(t, first.ID).Active)

	require.NoError(t, f.svc.Delete(ctx, second.ID))
	restored, err := f.svc.Reactivate(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, restored.Active)

	_, err = f.svc.Reactivate(ctx, first.ID)
	assert.ErrorIs(t, err, request.ErrRequestAlreadyActive)
}

func TestListByContract(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, monday)
	f.seed(leaveOf(date(2025, time.June, 9), date(2025, time.June, 9), request.StatePending))
	f.seed(overtimeOf(date(2025, time.June, 10), "18:00", "19:00", request.StatePending))

	all, err := f.svc.ListByContract(ctx, f.contract.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	leaves, err := f.svc.ListByContract(ctx, f.contract.ID, "leave")
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	assert.Equal(t, request.VariantLeave, leaves[0].Variant)

	_, err = f.svc.ListByContract(ctx, f.contract.ID, "sabbatical")
	assert.Error(t, err)
}
