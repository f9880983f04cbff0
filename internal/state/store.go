package state

import "sync"

// transition computes the next state. ok=false means the action was
// rejected and the current state stands.
type transition func(s State, a Action) (next State, ok bool)

var transitions = map[ActionType]transition{
	SessionSet:     setSession,
	SessionCleared: clearSession,
	SessionLoaded:  loadSession,

	CartAdd:            addToCart,
	CartRemove:         removeFromCart,
	CartUpdateQuantity: updateQuantity,
	CartUpdateNotes:    updateItemNotes,
	CartSetOrderNotes:  setOrderNotes,
	CartClear:          clearCart,
	CartSubmitted:      submittedCart,

	AuthSet:     setAuth,
	AuthCleared: clearAuth,
}

// Reduce applies a to s. Unknown or rejected actions return s unchanged.
func Reduce(s State, a Action) (State, bool) {
	fn, ok := transitions[a.Type]
	if !ok {
		return s, false
	}
	return fn(s, a)
}

func setSession(s State, a Action) (State, bool) {
	if a.Session == nil || a.Session.ID <= 0 {
		return s, false
	}
	session := *a.Session
	s.Session = SessionState{Session: &session, SessionID: session.ID}
	return s, true
}

func clearSession(s State, _ Action) (State, bool) {
	s.Session = SessionState{}
	return s, true
}

func loadSession(s State, a Action) (State, bool) {
	if a.SessionID <= 0 {
		return s, false
	}
	s.Session = SessionState{SessionID: a.SessionID}
	return s, true
}

func addToCart(s State, a Action) (State, bool) {
	if a.Item == nil || a.Item.ID <= 0 {
		return s, false
	}
	quantity := a.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	cart := s.Cart.clone()
	if i := cart.find(a.Item.ID); i >= 0 {
		cart.Items[i].Quantity += quantity
		if a.Notes != "" {
			cart.Items[i].Notes = a.Notes
		}
	} else {
		cart.Items = append(cart.Items, CartItem{Item: *a.Item, Quantity: quantity, Notes: a.Notes})
	}
	s.Cart = cart
	return s, true
}

func removeFromCart(s State, a Action) (State, bool) {
	i := s.Cart.find(a.ItemID)
	if i < 0 {
		return s, false
	}
	cart := s.Cart.clone()
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	s.Cart = cart
	return s, true
}

func updateQuantity(s State, a Action) (State, bool) {
	i := s.Cart.find(a.ItemID)
	if i < 0 || a.Quantity < 1 {
		return s, false
	}
	cart := s.Cart.clone()
	cart.Items[i].Quantity = a.Quantity
	s.Cart = cart
	return s, true
}

func updateItemNotes(s State, a Action) (State, bool) {
	i := s.Cart.find(a.ItemID)
	if i < 0 {
		return s, false
	}
	cart := s.Cart.clone()
	cart.Items[i].Notes = a.Notes
	s.Cart = cart
	return s, true
}

func setOrderNotes(s State, a Action) (State, bool) {
	cart := s.Cart.clone()
	cart.OrderNotes = a.Notes
	s.Cart = cart
	return s, true
}

func clearCart(s State, _ Action) (State, bool) {
	s.Cart = Cart{}
	return s, true
}

func submittedCart(s State, a Action) (State, bool) {
	if a.Cart == nil {
		return s, false
	}
	cart := s.Cart.clone()
	for _, sent := range a.Cart.Items {
		i := cart.find(sent.Item.ID)
		if i < 0 {
			continue
		}
		if cart.Items[i].Quantity <= sent.Quantity {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			continue
		}
		cart.Items[i].Quantity -= sent.Quantity
	}
	if cart.OrderNotes == a.Cart.OrderNotes {
		cart.OrderNotes = ""
	}
	s.Cart = cart
	return s, true
}

func setAuth(s State, a Action) (State, bool) {
	if a.Token == "" {
		return s, false
	}
	auth := AuthState{Token: a.Token}
	if a.User != nil {
		user := *a.User
		auth.User = &user
	}
	s.Auth = auth
	return s, true
}

func clearAuth(s State, _ Action) (State, bool) {
	s.Auth = AuthState{}
	return s, true
}

// Store holds the current snapshot and notifies subscribers on change.
type Store struct {
	mu    sync.Mutex
	state State
	seq   int
	subs  map[int]func(State)
}

func NewStore(initial State) *Store {
	return &Store{state: initial, subs: make(map[int]func(State))}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and reports whether the state changed.
func (s *Store) Dispatch(a Action) (State, bool) {
	s.mu.Lock()
	next, ok := Reduce(s.state, a)
	if ok {
		s.state = next
	}
	subs := make([]func(State), 0, len(s.subs))
	if ok {
		for _, fn := range s.subs {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next, ok
}

func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
