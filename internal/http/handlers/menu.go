package handlers

import (
	"net/http"

	"table-order-kiosk/pkg/response"
)

func (h *Handler) MenuCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Diner.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, categories)
}

func (h *Handler) MenuCategoryItems(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.Diner.CategoryItems(r.Context(), categoryID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, items)
}

func (h *Handler) MenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Diner.Items(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, items)
}

func (h *Handler) MenuItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.Diner.Item(r.Context(), itemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, item)
}
