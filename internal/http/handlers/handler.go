package handlers

import (
	"errors"
	"net/http"

	"table-order-kiosk/internal/api"
	"table-order-kiosk/internal/config"
	"table-order-kiosk/internal/realtime"
	"table-order-kiosk/internal/services"
	"table-order-kiosk/internal/validation"
	"table-order-kiosk/pkg/response"

	"go.uber.org/zap"
)

type Handler struct {
	Diner  *services.Diner
	Logger *zap.Logger
	Config config.Config
}

var apiStatus = map[api.ErrorKind]int{
	api.KindNetwork:      http.StatusBadGateway,
	api.KindDNS:          http.StatusBadGateway,
	api.KindTimeout:      http.StatusGatewayTimeout,
	api.KindUnauthorized: http.StatusUnauthorized,
	api.KindForbidden:    http.StatusForbidden,
	api.KindNotFound:     http.StatusNotFound,
	api.KindServer:       http.StatusBadGateway,
	api.KindClient:       http.StatusBadRequest,
}

// writeError maps service, transport and backend failures onto the local
// error envelope in the display language. Backend messages pass through
// unchanged.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *validation.Error
		apiErr *api.Error
		ackErr *realtime.AckError
	)
	t := h.Diner.T
	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
	case errors.Is(err, services.ErrSessionExpired):
		response.Error(w, http.StatusUnauthorized, "SESSION_EXPIRED", t("error.session_expired"))
	case errors.Is(err, services.ErrNoSession):
		response.Error(w, http.StatusUnauthorized, "NO_SESSION", t("error.no_session"))
	case errors.Is(err, services.ErrSessionClosed):
		response.Error(w, http.StatusGone, "SESSION_CLOSED", t("error.session_closed"))
	case errors.Is(err, services.ErrEmptyCart):
		response.Error(w, http.StatusBadRequest, "EMPTY_CART", t("error.empty_cart"))
	case errors.Is(err, services.ErrNotInCart):
		response.Error(w, http.StatusNotFound, "NOT_IN_CART", t("error.not_in_cart"))
	case errors.Is(err, services.ErrSubmitInProgress):
		response.Error(w, http.StatusConflict, "SUBMIT_IN_PROGRESS", t("error.submit_in_progress"))
	case errors.Is(err, services.ErrRealtimeUnavailable), errors.Is(err, realtime.ErrNotConnected), errors.Is(err, realtime.ErrClosed):
		response.Error(w, http.StatusServiceUnavailable, "REALTIME_UNAVAILABLE", t("error.realtime_unavailable"))
	case errors.Is(err, realtime.ErrTimeout):
		response.Error(w, http.StatusGatewayTimeout, "TIMEOUT", t("error.timeout"))
	case errors.As(err, &ackErr):
		response.Error(w, http.StatusUnprocessableEntity, "REJECTED", ackErr.Message)
	case errors.As(err, &apiErr):
		status, ok := apiStatus[apiErr.Kind]
		if !ok {
			status = http.StatusBadGateway
		}
		response.Error(w, status, "BACKEND_"+string(apiErr.Kind), apiErr.Localized(h.Diner.Language()))
	default:
		h.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", t("error.internal"))
	}
}
