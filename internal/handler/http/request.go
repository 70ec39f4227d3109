package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/handler/http/response"
)

// RequestService is the part of the request workflow the handlers call.
type RequestService interface {
	CreateVacation(ctx context.Context, req request.CreateVacationRequest) (request.Request, error)
	CreateLeave(ctx context.Context, req request.CreateLeaveRequest) (request.Request, error)
	CreateOvertime(ctx context.Context, req request.CreateOvertimeRequest) (request.Request, error)
	CreateResignation(ctx context.Context, req request.CreateResignationRequest) (request.Request, error)
	Get(ctx context.Context, id string) (request.Request, error)
	ListByContract(ctx context.Context, contractID string, variant string) ([]request.Request, error)
	Update(ctx context.Context, req request.UpdateRequest) (request.Request, error)
	Transition(ctx context.Context, req request.TransitionRequest) (request.Request, error)
	Delete(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) (request.Request, error)
}

type RequestHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListByContract(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Reactivate(w http.ResponseWriter, r *http.Request)
}

type RequestHandlerImpl struct {
	requestService RequestService
}

func NewRequestHandler(requestService RequestService) RequestHandler {
	return &RequestHandlerImpl{requestService: requestService}
}

// Create dispatches on the {variant} URL parameter.
func (h *RequestHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	variant, err := request.ParseVariant(chi.URLParam(r, "variant"))
	if err != nil {
		response.NotFound(w, err.Error())
		return
	}

	var created request.Request
	switch variant {
	case request.VariantVacation:
		var req request.CreateVacationRequest
		if !decode(w, r, &req) {
			return
		}
		created, err = h.requestService.CreateVacation(r.Context(), req)
	case request.VariantLeave:
		var req request.CreateLeaveRequest
		if !decode(w, r, &req) {
			return
		}
		created, err = h.requestService.CreateLeave(r.Context(), req)
	case request.VariantOvertime:
		var req request.CreateOvertimeRequest
		if !decode(w, r, &req) {
			return
		}
		created, err = h.requestService.CreateOvertime(r.Context(), req)
	case request.VariantResignation:
		var req request.CreateResignationRequest
		if !decode(w, r, &req) {
			return
		}
		created, err = h.requestService.CreateResignation(r.Context(), req)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Request created", request.ToResponse(created))
}

func (h *RequestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	req, err := h.requestService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, request.ToResponse(req))
}

func (h *RequestHandlerImpl) ListByContract(w http.ResponseWriter, r *http.Request) {
	list, err := h.requestService.ListByContract(r.Context(), chi.URLParam(r, "contractId"), r.URL.Query().Get("variant"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	out := make([]request.RequestResponse, 0, len(list))
	for _, req := range list {
		out = append(out, request.ToResponse(req))
	}
	response.Success(w, out)
}

func (h *RequestHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := h.requestService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Request updated", request.ToResponse(updated))
}

func (h *RequestHandlerImpl) Transition(w http.ResponseWriter, r *http.Request) {
	var req request.TransitionRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := h.requestService.Transition(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Request state changed", request.ToResponse(updated))
}

func (h *RequestHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.requestService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Request deactivated", nil)
}

func (h *RequestHandlerImpl) Reactivate(w http.ResponseWriter, r *http.Request) {
	restored, err := h.requestService.Reactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Request reactivated", request.ToResponse(restored))
}
