package state

import (
	"table-order-kiosk/internal/model"

	"github.com/shopspring/decimal"
)

// State is an immutable snapshot. Reducers never modify a State they are
// given; they build the next one.
type State struct {
	Session SessionState `json:"session"`
	Cart    Cart         `json:"cart"`
	Auth    AuthState    `json:"auth"`
}

type SessionState struct {
	Session   *model.Session `json:"session,omitempty"`
	SessionID int64          `json:"sessionId,omitempty"`
}

func (s SessionState) Active() bool {
	return s.SessionID > 0
}

type AuthState struct {
	Token string      `json:"-"`
	User  *model.User `json:"user,omitempty"`
}

func (a AuthState) SignedIn() bool {
	return a.Token != ""
}

type CartItem struct {
	Item     model.MenuItem `json:"item"`
	Quantity int            `json:"quantity"`
	Notes    string         `json:"notes,omitempty"`
}

func (c CartItem) LineTotal() decimal.Decimal {
	return c.Item.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Cart holds at most one line per menu item, each with quantity >= 1.
type Cart struct {
	Items      []CartItem `json:"items"`
	OrderNotes string     `json:"orderNotes,omitempty"`
}

func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// Count is the total quantity across lines.
func (c Cart) Count() int {
	n := 0
	for _, line := range c.Items {
		n += line.Quantity
	}
	return n
}

// Subtotal is for display only; the server total is authoritative.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Payload builds the order submission in cart order.
func (c Cart) Payload(sessionID int64) model.CreateOrderRequest {
	lines := make([]model.OrderLine, 0, len(c.Items))
	for _, line := range c.Items {
		lines = append(lines, model.OrderLine{
			ItemID:   line.Item.ID,
			Quantity: line.Quantity,
			Notes:    line.Notes,
		})
	}
	return model.CreateOrderRequest{
		SessionID: sessionID,
		Items:     lines,
		Notes:     c.OrderNotes,
	}
}

func (c Cart) find(itemID int64) int {
	for i, line := range c.Items {
		if line.Item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	out := c
	out.Items = append([]CartItem(nil), c.Items...)
	return out
}
