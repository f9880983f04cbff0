package handlers

import (
	"net/http"

	"table-order-kiosk/internal/services"
	"table-order-kiosk/pkg/response"
)

func (h *Handler) NotesList(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.Diner.Notes())
}

func (h *Handler) NotesCreate(w http.ResponseWriter, r *http.Request) {
	var body services.NoteInput
	if !decodeJSON(w, r, &body) {
		return
	}
	note, err := h.Diner.AddNote(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.SuccessStatus(w, http.StatusCreated, note)
}

func (h *Handler) NotesExport(w http.ResponseWriter, r *http.Request) {
	response.Attachment(w, "text/plain; charset=utf-8", "backend-fixes.txt", []byte(h.Diner.NotesExport()))
}
