package handlers

import (
	"net/http"

	"table-order-kiosk/internal/model"
	"table-order-kiosk/pkg/response"
)

func (h *Handler) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var body model.LoginRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	user, err := h.Diner.Login(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, map[string]any{"user": user})
}

// AuthLogout always clears the kiosk's credentials; a backend failure is
// only reported.
func (h *Handler) AuthLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Diner.Logout(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, nil)
}

func (h *Handler) AuthMe(w http.ResponseWriter, r *http.Request) {
	if !h.Diner.State().Auth.SignedIn() {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", h.Diner.T("error.not_signed_in"))
		return
	}
	user, err := h.Diner.Profile(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, map[string]any{"user": user})
}
