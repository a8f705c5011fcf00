package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/curasys/fhir-gateway/lib/auth"
	"github.com/curasys/fhir-gateway/lib/httpserv"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/refresh", h.handleRefresh)
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegister(writer http.ResponseWriter, request *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		httpserv.Error(writer, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpserv.Error(writer, http.StatusBadRequest, "email and password are required")
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		httpserv.Error(writer, http.StatusBadRequest, err.Error())
		return
	}
	account, err := h.service.Register(request.Context(), req.Email, req.Name, req.Password, role)
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpserv.JSON(writer, http.StatusCreated, account)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(writer http.ResponseWriter, request *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		httpserv.Error(writer, http.StatusBadRequest, "invalid request body")
		return
	}
	tokens, err := h.service.Authenticate(request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpserv.JSON(writer, http.StatusOK, tokens)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) handleRefresh(writer http.ResponseWriter, request *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		httpserv.Error(writer, http.StatusBadRequest, "invalid request body")
		return
	}
	tokens, err := h.service.Refresh(request.Context(), req.RefreshToken)
	if err != nil {
		writeError(writer, request, err)
		return
	}
	httpserv.JSON(writer, http.StatusOK, tokens)
}

func writeError(writer http.ResponseWriter, request *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		httpserv.Error(writer, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrInvalidToken):
		httpserv.Error(writer, http.StatusUnauthorized, err.Error())
	default:
		log.Ctx(request.Context()).Error().Err(err).Msg("Unhandled error in auth handler")
		httpserv.Error(writer, http.StatusInternalServerError, "internal server error")
	}
}
