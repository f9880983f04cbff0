package handlers

import (
	"net/http"

	"table-order-kiosk/internal/i18n"
	"table-order-kiosk/internal/services"
	"table-order-kiosk/internal/state"
	"table-order-kiosk/pkg/response"

	"github.com/shopspring/decimal"
)

type cartLine struct {
	state.CartItem
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type cartView struct {
	Items      []cartLine      `json:"items"`
	OrderNotes string          `json:"orderNotes,omitempty"`
	Count      int             `json:"count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

func newCartView(c state.Cart, lang i18n.Language) cartView {
	lines := make([]cartLine, 0, len(c.Items))
	for _, item := range c.Items {
		item.Item.DisplayName = i18n.Name(lang, item.Item.Name, item.Item.NameAr)
		lines = append(lines, cartLine{CartItem: item, LineTotal: item.LineTotal()})
	}
	return cartView{Items: lines, OrderNotes: c.OrderNotes, Count: c.Count(), Subtotal: c.Subtotal()}
}

func (h *Handler) viewCart(c state.Cart) cartView {
	return newCartView(c, h.Diner.Language())
}

func (h *Handler) CartGet(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.viewCart(h.Diner.Cart()))
}

func (h *Handler) CartAddItem(w http.ResponseWriter, r *http.Request) {
	var body services.AddToCartInput
	if !decodeJSON(w, r, &body) {
		return
	}
	cart, err := h.Diner.AddToCart(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, h.viewCart(cart))
}

type cartItemPatch struct {
	Quantity *int    `json:"quantity"`
	Notes    *string `json:"notes"`
}

func (h *Handler) CartUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	var body cartItemPatch
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Quantity == nil && body.Notes == nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "quantity or notes is required")
		return
	}

	cart := h.Diner.Cart()
	var err error
	if body.Quantity != nil {
		if cart, err = h.Diner.UpdateQuantity(itemID, *body.Quantity); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if body.Notes != nil {
		if cart, err = h.Diner.UpdateItemNotes(itemID, *body.Notes); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	response.Success(w, h.viewCart(cart))
}

func (h *Handler) CartRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	cart, err := h.Diner.RemoveFromCart(itemID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, h.viewCart(cart))
}

type orderNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) CartSetNotes(w http.ResponseWriter, r *http.Request) {
	var body orderNotesRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	cart, err := h.Diner.SetOrderNotes(body.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, h.viewCart(cart))
}

func (h *Handler) CartClear(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.viewCart(h.Diner.ClearCart()))
}

// CartSubmit places the order. On failure the cart is left intact so the
// diner can retry deliberately.
func (h *Handler) CartSubmit(w http.ResponseWriter, r *http.Request) {
	order, err := h.Diner.SubmitOrder(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.SuccessStatus(w, http.StatusCreated, map[string]any{"order": order})
}
