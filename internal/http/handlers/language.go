package handlers

import (
	"net/http"

	"table-order-kiosk/internal/i18n"
	"table-order-kiosk/pkg/response"
)

type languageView struct {
	Language i18n.Language `json:"language"`
	Dir      string        `json:"dir"`
}

type languageRequest struct {
	Language string `json:"language"`
}

func (h *Handler) LanguageGet(w http.ResponseWriter, r *http.Request) {
	lang := h.Diner.Language()
	response.Success(w, languageView{Language: lang, Dir: lang.Dir()})
}

func (h *Handler) LanguageSet(w http.ResponseWriter, r *http.Request) {
	var body languageRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	lang, err := h.Diner.SetLanguage(body.Language)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, languageView{Language: lang, Dir: lang.Dir()})
}
