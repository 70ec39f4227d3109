package request

import (
	"fmt"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

// Variant tags the concrete record carried by a Request.
type Variant string

const (
	VariantVacation    Variant = "vacation"
	VariantLeave       Variant = "leave"
	VariantOvertime    Variant = "overtime"
	VariantResignation Variant = "resignation"
)

func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case VariantVacation, VariantLeave, VariantOvertime, VariantResignation:
		return v, nil
	}
	return "", fmt.Errorf("unknown request variant %q", s)
}

// State is the union of every variant's states; each variant only accepts its own subset.
type State string

const (
	StatePending     State = "pending"
	StateApproved    State = "approved"
	StateRejected    State = "rejected"
	StateJustified   State = "justified"
	StateUnjustified State = "unjustified"
	StateAccepted    State = "accepted"
	StateProcessed   State = "processed"
)

// transitions lists the allowed next states per variant and current state.
var transitions = map[Variant]map[State][]State{
	VariantVacation: {
		StatePending: {StateApproved, StateRejected},
	},
	VariantLeave: {
		StatePending: {StateJustified, StateUnjustified, StateRejected},
	},
	VariantOvertime: {
		StatePending: {StateApproved, StateRejected},
	},
	VariantResignation: {
		StatePending:  {StateAccepted},
		StateAccepted: {StateProcessed},
	},
}

// CanTransition reports whether variant may move from one state to another.
func CanTransition(v Variant, from, to State) bool {
	for _, next := range transitions[v][from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists from s.
func IsTerminal(v Variant, s State) bool {
	return len(transitions[v][s]) == 0
}

// LeaveReason enumerates the legal reasons for a leave of absence.
type LeaveReason string

const (
	ReasonMarriage           LeaveReason = "marriage"
	ReasonBirth              LeaveReason = "birth"
	ReasonBereavementSpouse  LeaveReason = "bereavement_spouse_child_parent"
	ReasonBereavementSibling LeaveReason = "bereavement_sibling"
	ReasonExam               LeaveReason = "exam"
	ReasonWorkplaceAccident  LeaveReason = "workplace_accident"
	ReasonIllness            LeaveReason = "illness"
	ReasonMaternity          LeaveReason = "maternity"
	ReasonUnpaidLeave        LeaveReason = "unpaid_leave_of_absence"
	ReasonBloodDonation      LeaveReason = "blood_donation"
	ReasonJuryDuty           LeaveReason = "jury_duty"
	ReasonElectionDuty       LeaveReason = "election_duty"
	ReasonRelocation         LeaveReason = "relocation"
	ReasonBirthday           LeaveReason = "birthday"
	ReasonPersonalErrands    LeaveReason = "personal_errands"
	ReasonCompensatoryDayOff LeaveReason = "compensatory_day_off"
)

var leaveReasons = map[LeaveReason]bool{
	ReasonMarriage: true, ReasonBirth: true, ReasonBereavementSpouse: true, ReasonBereavementSibling: true,
	ReasonExam: true, ReasonWorkplaceAccident: true, ReasonIllness: true, ReasonMaternity: true,
	ReasonUnpaidLeave: true, ReasonBloodDonation: true, ReasonJuryDuty: true, ReasonElectionDuty: true,
	ReasonRelocation: true, ReasonBirthday: true, ReasonPersonalErrands: true, ReasonCompensatoryDayOff: true,
}

func (r LeaveReason) Valid() bool { return leaveReasons[r] }

// OvertimeTier is the surcharge percentage of an overtime entry.
type OvertimeTier int

const (
	Tier50  OvertimeTier = 50
	Tier100 OvertimeTier = 100
)

func (t OvertimeTier) Valid() bool { return t == Tier50 || t == Tier100 }

type Vacation struct {
	Period        int // entitlement year; window is May 1 Period .. Apr 30 Period+1
	EntitledDays  int
	TakenDays     int
	AvailableDays int
	RequestedDays int // business days in [StartDate, EndDate]
	StartDate     time.Time
	EndDate       time.Time
	ReturnDate    time.Time
	NotifiedOn    *time.Time
	State         State
}

type Leave struct {
	Reason         LeaveReason
	StartDate      time.Time
	EndDate        time.Time
	HealthRecordID *string
	State          State
}

// Days is the inclusive calendar span of the leave.
func (l Leave) Days() int {
	return calendar.DaysInclusive(l.StartDate, l.EndDate)
}

type Overtime struct {
	Date      time.Time
	StartTime string // HH:MM
	EndTime   string // HH:MM
	Hours     decimal.Decimal
	Tier      OvertimeTier
	State     State
}

type Resignation struct {
	NotifiedOn    time.Time
	EffectiveDate *time.Time
	State         State
}

// Request - umbrella record for one of the four request variants
type Request struct {
	ID         string
	ContractID string
	Variant    Variant
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Exactly one is set, matching Variant.
	Vacation    *Vacation
	Leave       *Leave
	Overtime    *Overtime
	Resignation *Resignation
}

// Validate checks the union invariant.
func (r Request) Validate() error {
	set := 0
	for _, ok := range []bool{r.Vacation != nil, r.Leave != nil, r.Overtime != nil, r.Resignation != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("request %s carries %d variant records, want 1", r.ID, set)
	}
	var ok bool
	switch r.Variant {
	case VariantVacation:
		ok = r.Vacation != nil
	case VariantLeave:
		ok = r.Leave != nil
	case VariantOvertime:
		ok = r.Overtime != nil
	case VariantResignation:
		ok = r.Resignation != nil
	}
	if !ok {
		return fmt.Errorf("request %s variant %q does not match its record", r.ID, r.Variant)
	}
	return nil
}

func (r Request) State() State {
	switch r.Variant {
	case VariantVacation:
		return r.Vacation.State
	case VariantLeave:
		return r.Leave.State
	case VariantOvertime:
		return r.Overtime.State
	case VariantResignation:
		return r.Resignation.State
	}
	return ""
}

func (r *Request) SetState(s State) {
	switch r.Variant {
	case VariantVacation:
		r.Vacation.State = s
	case VariantLeave:
		r.Leave.State = s
	case VariantOvertime:
		r.Overtime.State = s
	case VariantResignation:
		r.Resignation.State = s
	}
}

func (r Request) IsPending() bool { return r.State() == StatePending }

// Span is the date range the request occupies; resignations occupy none.
func (r Request) Span() (time.Time, time.Time, bool) {
	switch r.Variant {
	case VariantVacation:
		return r.Vacation.StartDate, r.Vacation.EndDate, true
	case VariantLeave:
		return r.Leave.StartDate, r.Leave.EndDate, true
	case VariantOvertime:
		return r.Overtime.Date, r.Overtime.Date, true
	}
	return time.Time{}, time.Time{}, false
}

// Blocking reports whether the request is in the state that makes it count
// against other requests: approved vacation or overtime, justified leave.
func (r Request) Blocking() bool {
	if !r.Active {
		return false
	}
	switch r.Variant {
	case VariantVacation, VariantOvertime:
		return r.State() == StateApproved
	case VariantLeave:
		return r.State() == StateJustified
	}
	return false
}

// TakenVacationDays sums the requested days of active approved vacations for period.
func TakenVacationDays(requests []Request, period int, excludeID string) int {
	taken := 0
	for _, r := range requests {
		if r.ID == excludeID || r.Variant != VariantVacation || !r.Active {
			continue
		}
		if r.Vacation.Period == period && r.Vacation.State == StateApproved {
			taken += r.Vacation.RequestedDays
		}
	}
	return taken
}
