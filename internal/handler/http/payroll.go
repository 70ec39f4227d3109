package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
	"github.com/joaquinkuster/rrhh-sub000/internal/handler/http/response"
	payrollsvc "github.com/joaquinkuster/rrhh-sub000/internal/service/payroll"
)

// PayrollService is the part of the payroll service the handlers call.
type PayrollService interface {
	PreviewSingle(ctx context.Context, req payroll.PreviewSingleRequest) (payroll.Breakdown, error)
	PreviewBatch(ctx context.Context, req payroll.PreviewBatchRequest) ([]payroll.Breakdown, error)
	GenerateSingle(ctx context.Context, req payroll.PreviewSingleRequest) (payroll.Breakdown, error)
	GenerateBatch(ctx context.Context, req payroll.PreviewBatchRequest) (payrollsvc.CommitResult, error)
	List(ctx context.Context, filter payroll.BreakdownFilter) ([]payroll.Breakdown, error)
	Get(ctx context.Context, id string) (payroll.Breakdown, error)
	UpdateStatus(ctx context.Context, req payroll.UpdateStatusRequest) (payroll.Breakdown, error)
	Payslip(ctx context.Context, id string) ([]byte, error)

	CreateConcept(ctx context.Context, req payroll.CreateConceptRequest) (payroll.SalaryConcept, error)
	ListConcepts(ctx context.Context, activeOnly bool) ([]payroll.SalaryConcept, error)
	UpdateConcept(ctx context.Context, req payroll.UpdateConceptRequest) (payroll.SalaryConcept, error)
	AssignConcept(ctx context.Context, contractID, conceptID string) error
	RemoveConcept(ctx context.Context, contractID, conceptID string) error
}

type PayrollHandler interface {
	PreviewSingle(w http.ResponseWriter, r *http.Request)
	PreviewBatch(w http.ResponseWriter, r *http.Request)
	CommitSingle(w http.ResponseWriter, r *http.Request)
	CommitBatch(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	Payslip(w http.ResponseWriter, r *http.Request)

	CreateConcept(w http.ResponseWriter, r *http.Request)
	ListConcepts(w http.ResponseWriter, r *http.Request)
	UpdateConcept(w http.ResponseWriter, r *http.Request)
	AssignConcept(w http.ResponseWriter, r *http.Request)
	RemoveConcept(w http.ResponseWriter, r *http.Request)
}

type PayrollHandlerImpl struct {
	payrollService PayrollService
}

func NewPayrollHandler(payrollService PayrollService) PayrollHandler {
	return &PayrollHandlerImpl{payrollService: payrollService}
}

// decode reads a JSON body into dst and answers 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Debug("request body decode error", "path", r.URL.Path, "error", err)
		response.BadRequest(w, "Invalid request format")
		return false
	}
	return true
}

func breakdownResponses(bs []payroll.Breakdown) []payroll.BreakdownResponse {
	out := make([]payroll.BreakdownResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, payroll.ToBreakdownResponse(b))
	}
	return out
}

// ========== COMPUTATION ==========

func (h *PayrollHandlerImpl) PreviewSingle(w http.ResponseWriter, r *http.Request) {
	var req payroll.PreviewSingleRequest
	if !decode(w, r, &req) {
		return
	}

	b, err := h.payrollService.PreviewSingle(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, payroll.ToBreakdownResponse(b))
}

func (h *PayrollHandlerImpl) PreviewBatch(w http.ResponseWriter, r *http.Request) {
	var req payroll.PreviewBatchRequest
	if !decode(w, r, &req) {
		return
	}

	bs, err := h.payrollService.PreviewBatch(r.Context(), req)
	if err != nil && len(bs) == 0 {
		response.HandleError(w, err)
		return
	}

	resp := payroll.PreviewBatchResponse{Data: breakdownResponses(bs)}
	switch {
	case err != nil:
		slog.Error("payroll batch preview computed with failures", "period", req.Period, "error", err)
		resp.Message = "Some contracts could not be computed"
	case len(bs) == 0:
		resp.Message = fmt.Sprintf("No contracts pending liquidation for %s", req.Period)
	}
	response.Success(w, resp)
}

func (h *PayrollHandlerImpl) CommitSingle(w http.ResponseWriter, r *http.Request) {
	var req payroll.PreviewSingleRequest
	if !decode(w, r, &req) {
		return
	}

	b, err := h.payrollService.GenerateSingle(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Payroll generated successfully", payroll.ToBreakdownResponse(b))
}

func (h *PayrollHandlerImpl) CommitBatch(w http.ResponseWriter, r *http.Request) {
	var req payroll.PreviewBatchRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.payrollService.GenerateBatch(r.Context(), req)
	if err != nil && len(result.Created) == 0 {
		response.HandleError(w, err)
		return
	}

	resp := payroll.CommitBatchResponse{Created: breakdownResponses(result.Created), Skipped: result.Skipped}
	if err != nil {
		slog.Error("payroll batch committed with failures", "period", req.Period, "error", err)
		response.SuccessWithMessage(w, "Payroll batch partially generated", resp)
		return
	}
	response.Created(w, fmt.Sprintf("Generated %d payrolls", len(result.Created)), resp)
}

// ========== RECORDS ==========

func (h *PayrollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter payroll.BreakdownFilter
	if v := r.URL.Query().Get("period"); v != "" {
		filter.Period = &v
	}
	if v := r.URL.Query().Get("estado"); v != "" {
		filter.Status = &v
	}

	bs, err := h.payrollService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, breakdownResponses(bs))
}

func (h *PayrollHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.payrollService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, payroll.ToBreakdownResponse(b))
}

func (h *PayrollHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdateStatusRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	b, err := h.payrollService.UpdateStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Payroll status updated", payroll.ToBreakdownResponse(b))
}

func (h *PayrollHandlerImpl) Payslip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pdf, err := h.payrollService.Payslip(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.PDF(w, fmt.Sprintf("payslip-%s.pdf", id), pdf)
}

// ========== CONCEPTS ==========

func (h *PayrollHandlerImpl) CreateConcept(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateConceptRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.payrollService.CreateConcept(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Salary concept created", payroll.ToConceptResponse(c))
}

func (h *PayrollHandlerImpl) ListConcepts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	concepts, err := h.payrollService.ListConcepts(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	out := make([]payroll.ConceptResponse, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, payroll.ToConceptResponse(c))
	}
	response.Success(w, out)
}

func (h *PayrollHandlerImpl) UpdateConcept(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdateConceptRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	c, err := h.payrollService.UpdateConcept(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Salary concept updated", payroll.ToConceptResponse(c))
}

func (h *PayrollHandlerImpl) AssignConcept(w http.ResponseWriter, r *http.Request) {
	err := h.payrollService.AssignConcept(r.Context(), chi.URLParam(r, "contractId"), chi.URLParam(r, "conceptId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Salary concept assigned", nil)
}

func (h *PayrollHandlerImpl) RemoveConcept(w http.ResponseWriter, r *http.Request) {
	err := h.payrollService.RemoveConcept(r.Context(), chi.URLParam(r, "contractId"), chi.URLParam(r, "conceptId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Salary concept removed", nil)
}
