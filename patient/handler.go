package patient

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/curasys/fhir-gateway/fhirstore"
	"github.com/curasys/fhir-gateway/lib/auth"
	"github.com/curasys/fhir-gateway/lib/httpserv"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service *Service
	auth    auth.Middleware
}

func NewHandler(service *Service, authMiddleware auth.Middleware) *Handler {
	return &Handler{service: service, auth: authMiddleware}
}

func (h *Handler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /patient/onboard", h.auth.Secure(h.handleOnboard, auth.RoleDataScientist))
	mux.HandleFunc("GET /patient", h.auth.Secure(h.handleSearch))
	mux.HandleFunc("GET /patient/{id}", h.auth.Secure(h.handleGet))
	mux.HandleFunc("GET /patient/{id}/history", h.auth.Secure(h.handleHistory))
	mux.HandleFunc("POST /patient/{id}/medication", h.auth.Secure(h.handleAddMedication, auth.RoleDataScientist))
}

func (h *Handler) handleOnboard(writer http.ResponseWriter, request *http.Request) {
	var req OnboardingRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		httpserv.Error(writer, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.service.Onboard(request.Context(), req)
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpserv.JSON(writer, http.StatusCreated, created)
}

func (h *Handler) handleSearch(writer http.ResponseWriter, request *http.Request) {
	patients, err := h.service.Search(request.Context(), request.URL.Query())
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpserv.JSON(writer, http.StatusOK, patients)
}

func (h *Handler) handleGet(writer http.ResponseWriter, request *http.Request) {
	patient, err := h.service.GetByID(request.Context(), request.PathValue("id"))
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpserv.JSON(writer, http.StatusOK, patient)
}

func (h *Handler) handleHistory(writer http.ResponseWriter, request *http.Request) {
	view, err := h.service.GetWithHistory(request.Context(), request.PathValue("id"))
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpserv.JSON(writer, http.StatusOK, view)
}

func (h *Handler) handleAddMedication(writer http.ResponseWriter, request *http.Request) {
	var req MedicationRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		httpserv.Error(writer, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.service.AddMedication(request.Context(), request.PathValue("id"), req)
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpserv.JSON(writer, http.StatusCreated, created)
}

// writeError maps domain error kinds onto HTTP status codes. Validation
// failures return the structured issue list so the caller can see exactly
// which elements were rejected.
func writeError(writer http.ResponseWriter, request *http.Request, err error) {
	var validationErr *fhirstore.ValidationError
	var notFoundErr *fhirstore.NotFoundError
	var upstreamErr *fhirstore.UpstreamError
	var unreachableErr *fhirstore.UnreachableError
	switch {
	case errors.Is(err, ErrMissingPatientReference), errors.Is(err, ErrInvalidStatus):
		httpserv.Error(writer, http.StatusBadRequest, err.Error())
	case errors.As(err, &validationErr):
		details := make([]any, 0, len(validationErr.Messages))
		for _, issue := range validationErr.Messages {
			details = append(details, issue)
		}
		httpserv.Error(writer, http.StatusBadRequest, validationErr.Error(), details...)
	case errors.As(err, &notFoundErr):
		httpserv.Error(writer, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &upstreamErr):
		httpserv.Error(writer, http.StatusBadGateway, upstreamErr.Error())
	case errors.As(err, &unreachableErr):
		httpserv.Error(writer, http.StatusServiceUnavailable, "upstream FHIR store unreachable")
	default:
		log.Ctx(request.Context()).Error().Err(err).Msg("Unhandled error in patient handler")
		httpserv.Error(writer, http.StatusInternalServerError, "internal server error")
	}
}
