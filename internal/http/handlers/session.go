package handlers

import (
	"errors"
	"net/http"

	"table-order-kiosk/internal/services"
	"table-order-kiosk/pkg/response"
)

type sessionStatus struct {
	Active  bool                  `json:"active"`
	Expired bool                  `json:"expired,omitempty"`
	Closed  bool                  `json:"closed,omitempty"`
	Session *services.SessionInfo `json:"session,omitempty"`
}

// SessionGet backs the landing screen: it tells the UI whether to open the
// menu or the QR scanner.
func (h *Handler) SessionGet(w http.ResponseWriter, r *http.Request) {
	info, err := h.Diner.Home(r.Context())
	switch {
	case err == nil:
		response.Success(w, sessionStatus{Active: true, Session: &info})
	case errors.Is(err, services.ErrNoSession):
		response.Success(w, sessionStatus{})
	case errors.Is(err, services.ErrSessionExpired):
		response.Success(w, sessionStatus{Expired: true})
	case errors.Is(err, services.ErrSessionClosed):
		response.Success(w, sessionStatus{Closed: true})
	default:
		h.writeError(w, r, err)
	}
}

type scanRequest struct {
	Payload string `json:"payload"`
}

func (h *Handler) SessionScan(w http.ResponseWriter, r *http.Request) {
	var body scanRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	code, err := h.Diner.ScanQR(body.Payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, map[string]any{"qrCode": code})
}

type startSessionRequest struct {
	QRCode         string `json:"qrCode"`
	NumberOfGuests int    `json:"numberOfGuests"`
}

func (h *Handler) SessionStart(w http.ResponseWriter, r *http.Request) {
	var body startSessionRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	session, err := h.Diner.StartSession(r.Context(), body.QRCode, body.NumberOfGuests)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.SuccessStatus(w, http.StatusCreated, session)
}

func (h *Handler) SessionEnd(w http.ResponseWriter, r *http.Request) {
	h.Diner.EndSession(r.Context())
	response.Success(w, nil)
}
