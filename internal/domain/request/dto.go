package request

import (
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CREATE DTOs ==========

type CreateVacationRequest struct {
	ContractID string `json:"contract_id"`
	Period     int    `json:"period"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (r *CreateVacationRequest) Validate() error {
	var errs validator.ValidationErrors
	validateContractID(&errs, r.ContractID)
	if r.Period < 2000 || r.Period > 2999 {
		errs.Add("period", "period must be a four digit year")
	}
	validateRange(&errs, r.StartDate, r.EndDate)
	return errs.Err()
}

type CreateLeaveRequest struct {
	ContractID     string  `json:"contract_id"`
	Reason         string  `json:"reason"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	HealthRecordID *string `json:"health_record_id,omitempty"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors
	validateContractID(&errs, r.ContractID)
	if !LeaveReason(r.Reason).Valid() {
		errs.Add("reason", "reason is not a recognised leave reason")
	}
	validateRange(&errs, r.StartDate, r.EndDate)
	if r.HealthRecordID != nil && validator.IsEmpty(*r.HealthRecordID) {
		errs.Add("health_record_id", "health_record_id must not be empty")
	}
	return errs.Err()
}

type CreateOvertimeRequest struct {
	ContractID string `json:"contract_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Tier       int    `json:"tier"`
}

func (r *CreateOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors
	validateContractID(&errs, r.ContractID)
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be YYYY-MM-DD")
	}
	validateClockRange(&errs, r.StartTime, r.EndTime)
	if !OvertimeTier(r.Tier).Valid() {
		errs.Add("tier", "tier must be 50 or 100")
	}
	return errs.Err()
}

type CreateResignationRequest struct {
	ContractID string `json:"contract_id"`
	NotifiedOn string `json:"notified_on"`
}

func (r *CreateResignationRequest) Validate() error {
	var errs validator.ValidationErrors
	validateContractID(&errs, r.ContractID)
	if _, ok := validator.IsValidDate(r.NotifiedOn); !ok {
		errs.Add("notified_on", "notified_on must be YYYY-MM-DD")
	}
	return errs.Err()
}

// ========== UPDATE DTOs ==========

// UpdateRequest carries the editable fields of every variant; fields that do
// not belong to the request's variant are rejected by the service.
type UpdateRequest struct {
	ID             string  `json:"-"`
	State          *string `json:"state,omitempty"`
	Period         *int    `json:"period,omitempty"`
	StartDate      *string `json:"start_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
	Reason         *string `json:"reason,omitempty"`
	HealthRecordID *string `json:"health_record_id,omitempty"`
	Date           *string `json:"date,omitempty"`
	StartTime      *string `json:"start_time,omitempty"`
	EndTime        *string `json:"end_time,omitempty"`
	Tier           *int    `json:"tier,omitempty"`
	NotifiedOn     *string `json:"notified_on,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	var errs validator.ValidationErrors
	validateRequestID(&errs, r.ID)
	for field, v := range map[string]*string{"start_date": r.StartDate, "end_date": r.EndDate, "date": r.Date, "notified_on": r.NotifiedOn} {
		if v != nil {
			if _, ok := validator.IsValidDate(*v); !ok {
				errs.Add(field, field+" must be YYYY-MM-DD")
			}
		}
	}
	for field, v := range map[string]*string{"start_time": r.StartTime, "end_time": r.EndTime} {
		if v != nil && !validator.IsValidClock(*v) {
			errs.Add(field, field+" must be HH:MM")
		}
	}
	if r.Reason != nil && !LeaveReason(*r.Reason).Valid() {
		errs.Add("reason", "reason is not a recognised leave reason")
	}
	if r.Tier != nil && !OvertimeTier(*r.Tier).Valid() {
		errs.Add("tier", "tier must be 50 or 100")
	}
	return errs.Err()
}

// EditedFields lists the non-state fields present in the update.
func (r *UpdateRequest) EditedFields() []string {
	var fields []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"period", r.Period != nil},
		{"start_date", r.StartDate != nil},
		{"end_date", r.EndDate != nil},
		{"reason", r.Reason != nil},
		{"health_record_id", r.HealthRecordID != nil},
		{"date", r.Date != nil},
		{"start_time", r.StartTime != nil},
		{"end_time", r.EndTime != nil},
		{"tier", r.Tier != nil},
		{"notified_on", r.NotifiedOn != nil},
	} {
		if f.set {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// OnlyState reports whether the update touches nothing but the state.
func (r *UpdateRequest) OnlyState() bool {
	return len(r.EditedFields()) == 0
}

// EditableFields are the fields a pending request of each variant accepts.
var EditableFields = map[Variant][]string{
	VariantVacation:    {"period", "start_date", "end_date"},
	VariantLeave:       {"reason", "start_date", "end_date", "health_record_id"},
	VariantOvertime:    {"date", "start_time", "end_time", "tier"},
	VariantResignation: {"notified_on"},
}

type TransitionRequest struct {
	ID    string `json:"-"`
	State string `json:"state"`
}

func (r *TransitionRequest) Validate() error {
	var errs validator.ValidationErrors
	validateRequestID(&errs, r.ID)
	errs.Required("state", r.State)
	return errs.Err()
}

// ========== RESPONSE DTOs ==========

type VacationResponse struct {
	Period        int     `json:"period"`
	EntitledDays  int     `json:"entitled_days"`
	TakenDays     int     `json:"taken_days"`
	AvailableDays int     `json:"available_days"`
	RequestedDays int     `json:"requested_days"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	ReturnDate    string  `json:"return_date"`
	NotifiedOn    *string `json:"notified_on,omitempty"`
	State         string  `json:"state"`
}

type LeaveResponse struct {
	Reason         string  `json:"reason"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Days           int     `json:"days"`
	HealthRecordID *string `json:"health_record_id,omitempty"`
	State          string  `json:"state"`
}

type OvertimeResponse struct {
	Date      string          `json:"date"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Hours     decimal.Decimal `json:"hours"`
	Tier      int             `json:"tier"`
	State     string          `json:"state"`
}

type ResignationResponse struct {
	NotifiedOn    string  `json:"notified_on"`
	EffectiveDate *string `json:"effective_date,omitempty"`
	State         string  `json:"state"`
}

type RequestResponse struct {
	ID          string               `json:"id"`
	ContractID  string               `json:"contract_id"`
	Variant     string               `json:"variant"`
	Active      bool                 `json:"active"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
	Vacation    *VacationResponse    `json:"vacation,omitempty"`
	Leave       *LeaveResponse       `json:"leave,omitempty"`
	Overtime    *OvertimeResponse    `json:"overtime,omitempty"`
	Resignation *ResignationResponse `json:"resignation,omitempty"`
}

func ToResponse(r Request) RequestResponse {
	resp := RequestResponse{
		ID:         r.ID,
		ContractID: r.ContractID,
		Variant:    string(r.Variant),
		Active:     r.Active,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
	switch {
	case r.Vacation != nil:
		v := r.Vacation
		resp.Vacation = &VacationResponse{
			Period:        v.Period,
			EntitledDays:  v.EntitledDays,
			TakenDays:     v.TakenDays,
			AvailableDays: v.AvailableDays,
			RequestedDays: v.RequestedDays,
			StartDate:     v.StartDate.Format(calendar.DateLayout),
			EndDate:       v.EndDate.Format(calendar.DateLayout),
			ReturnDate:    v.ReturnDate.Format(calendar.DateLayout),
			NotifiedOn:    formatDatePtr(v.NotifiedOn),
			State:         string(v.State),
		}
	case r.Leave != nil:
		l := r.Leave
		resp.Leave = &LeaveResponse{
			Reason:         string(l.Reason),
			StartDate:      l.StartDate.Format(calendar.DateLayout),
			EndDate:        l.EndDate.Format(calendar.DateLayout),
			Days:           l.Days(),
			HealthRecordID: l.HealthRecordID,
			State:          string(l.State),
		}
	case r.Overtime != nil:
		o := r.Overtime
		resp.Overtime = &OvertimeResponse{
			Date:      o.Date.Format(calendar.DateLayout),
			StartTime: o.StartTime,
			EndTime:   o.EndTime,
			Hours:     o.Hours,
			Tier:      int(o.Tier),
			State:     string(o.State),
		}
	case r.Resignation != nil:
		s := r.Resignation
		resp.Resignation = &ResignationResponse{
			NotifiedOn:    s.NotifiedOn.Format(calendar.DateLayout),
			EffectiveDate: formatDatePtr(s.EffectiveDate),
			State:         string(s.State),
		}
	}
	return resp
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(calendar.DateLayout)
	return &s
}

func validateContractID(errs *validator.ValidationErrors, id string) {
	if validator.IsEmpty(id) {
		errs.Add("contract_id", "contract_id is required")
	} else if !validator.IsValidUUID(id) {
		errs.Add("contract_id", "contract_id must be a valid UUIDv7")
	}
}

func validateRequestID(errs *validator.ValidationErrors, id string) {
	if validator.IsEmpty(id) {
		errs.Add("id", "id is required")
	} else if !validator.IsValidUUID(id) {
		errs.Add("id", "id must be a valid UUIDv7")
	}
}

func validateRange(errs *validator.ValidationErrors, start, end string) {
	s, okStart := validator.IsValidDate(start)
	if !okStart {
		errs.Add("start_date", "start_date must be YYYY-MM-DD")
	}
	e, okEnd := validator.IsValidDate(end)
	if !okEnd {
		errs.Add("end_date", "end_date must be YYYY-MM-DD")
	}
	if okStart && okEnd && e.Before(s) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
}

func validateClockRange(errs *validator.ValidationErrors, start, end string) {
	s, okStart := validator.ClockMinutes(start)
	if !okStart {
		errs.Add("start_time", "start_time must be HH:MM")
	}
	e, okEnd := validator.ClockMinutes(end)
	if !okEnd {
		errs.Add("end_time", "end_time must be HH:MM")
	}
	if okStart && okEnd && e <= s {
		errs.Add("end_time", "end_time must be after start_time")
	}
}
