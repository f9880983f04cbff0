package handlers

import (
	"fmt"
	"net/http"

	"table-order-kiosk/pkg/response"
)

func (h *Handler) OrdersList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Diner.Orders(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, orders)
}

func (h *Handler) OrdersSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Diner.Summary(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, summary)
}

// OrdersReceipt downloads the session receipt as PDF, or with ?format=json
// returns the uploaded copy's URL.
func (h *Handler) OrdersReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.Diner.Receipt(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		response.Success(w, receipt)
		return
	}
	response.Attachment(w, "application/pdf", fmt.Sprintf("receipt-session-%d.pdf", receipt.SessionID), receipt.PDF)
}
