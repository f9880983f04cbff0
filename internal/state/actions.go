package state

import "table-order-kiosk/internal/model"

type ActionType string

const (
	SessionSet     ActionType = "session/set"
	SessionCleared ActionType = "session/cleared"
	SessionLoaded  ActionType = "session/loaded"

	CartAdd            ActionType = "cart/add"
	CartRemove         ActionType = "cart/remove"
	CartUpdateQuantity ActionType = "cart/updateQuantity"
	CartUpdateNotes    ActionType = "cart/updateNotes"
	CartSetOrderNotes  ActionType = "cart/setOrderNotes"
	CartClear          ActionType = "cart/clear"
	CartSubmitted      ActionType = "cart/submitted"

	AuthSet     ActionType = "auth/set"
	AuthCleared ActionType = "auth/cleared"
)

// Action carries only the fields its type reads.
type Action struct {
	Type      ActionType
	Session   *model.Session
	SessionID int64
	Item      *model.MenuItem
	ItemID    int64
	Quantity  int
	Notes     string
	Cart      *Cart
	Token     string
	User      *model.User
}

func SetSession(s model.Session) Action {
	return Action{Type: SessionSet, Session: &s}
}

func ClearSession() Action {
	return Action{Type: SessionCleared}
}

// LoadSession restores a session id read from local storage.
func LoadSession(sessionID int64) Action {
	return Action{Type: SessionLoaded, SessionID: sessionID}
}

// AddToCart adds quantity (1 when not positive) of item with optional notes.
func AddToCart(item model.MenuItem, quantity int, notes string) Action {
	return Action{Type: CartAdd, Item: &item, Quantity: quantity, Notes: notes}
}

func RemoveFromCart(itemID int64) Action {
	return Action{Type: CartRemove, ItemID: itemID}
}

func UpdateQuantity(itemID int64, quantity int) Action {
	return Action{Type: CartUpdateQuantity, ItemID: itemID, Quantity: quantity}
}

func UpdateItemNotes(itemID int64, notes string) Action {
	return Action{Type: CartUpdateNotes, ItemID: itemID, Notes: notes}
}

func SetOrderNotes(notes string) Action {
	return Action{Type: CartSetOrderNotes, Notes: notes}
}

func ClearCart() Action {
	return Action{Type: CartClear}
}

// SubmittedCart removes what was sent to the kitchen: each submitted line's
// quantity, and the order notes if unchanged since. Anything added after
// sent was taken stays in the cart.
func SubmittedCart(sent Cart) Action {
	return Action{Type: CartSubmitted, Cart: &sent}
}

func SetAuth(token string, user model.User) Action {
	return Action{Type: AuthSet, Token: token, User: &user}
}

func ClearAuth() Action {
	return Action{Type: AuthCleared}
}
