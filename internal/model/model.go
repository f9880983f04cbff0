package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionClosed SessionStatus = "closed"
)

type Session struct {
	ID             int64         `json:"id"`
	TableID        int64         `json:"tableId"`
	QRCode         string        `json:"qrCode"`
	NumberOfGuests int           `json:"numberOfGuests"`
	Status         SessionStatus `json:"status"`
	StartTime      *time.Time    `json:"startTime,omitempty"`
	EndTime        *time.Time    `json:"endTime,omitempty"`
	RestaurantID   int64         `json:"restaurantId"`
	CreatedAt      *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time    `json:"updatedAt,omitempty"`
}

// SessionRecord is the locally persisted view of a session. CreatedAt is an
// ISO8601 string so the stored value reads the same as the browser client's.
type SessionRecord struct {
	SessionID int64  `json:"sessionId"`
	CreatedAt string `json:"createdAt"`
}

type Category struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	NameAr       string     `json:"nameAr"`
	DisplayName  string     `json:"displayName,omitempty"`
	Description  *string    `json:"description,omitempty"`
	DisplayOrder int        `json:"displayOrder"`
	RestaurantID int64      `json:"restaurantId"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

type CategoryRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	NameAr      string `json:"nameAr"`
	DisplayName string `json:"displayName,omitempty"`
}

type MenuItem struct {
	ID              int64           `json:"id"`
	CategoryID      int64           `json:"categoryId"`
	Name            string          `json:"name"`
	NameAr          string          `json:"nameAr"`
	// DisplayName is Name or NameAr for the kiosk language; never sent by the backend.
	DisplayName     string          `json:"displayName,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Image           string          `json:"image,omitempty"`
	Images          ImageList       `json:"images,omitempty"`
	PreparationTime int             `json:"preparationTime,omitempty"`
	IsAvailable     bool            `json:"isAvailable"`
	DisplayOrder    int             `json:"displayOrder"`
	RestaurantID    int64           `json:"restaurantId,omitempty"`
	Category        *CategoryRef    `json:"category,omitempty"`
	CreatedAt       *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
}

// ImageList decodes the backend's images field, which arrives as a JSON
// array, a JSON-encoded array inside a string, or a single path string.
type ImageList []string

func (l *ImageList) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*l = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = compactStrings(list)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		*l = nil
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &list); err == nil {
			*l = compactStrings(list)
			return nil
		}
		*l = nil
		return nil
	}
	*l = ImageList{text}
	return nil
}

// ImageList returns every image path, falling back to the single image field.
func (m MenuItem) ImageList() []string {
	if len(m.Images) > 0 {
		return append([]string(nil), m.Images...)
	}
	if m.Image != "" {
		return []string{m.Image}
	}
	return nil
}

// ImageURL resolves a stored image path against the API base URL.
func ImageURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + path
}

type OrderStatus string

const (
	OrderNew       OrderStatus = "new"
	OrderPreparing OrderStatus = "preparing"
	OrderDelivered OrderStatus = "delivered"
)

// Active reports whether the kitchen still owes this order.
func (s OrderStatus) Active() bool {
	return s == OrderNew || s == OrderPreparing
}

type Order struct {
	ID           int64             `json:"id"`
	SessionID    int64             `json:"sessionId"`
	Status       OrderStatus       `json:"status"`
	TotalAmount  decimal.Decimal   `json:"totalAmount"`
	Notes        *string           `json:"notes,omitempty"`
	RestaurantID int64             `json:"restaurantId,omitempty"`
	CreatedAt    *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time        `json:"updatedAt,omitempty"`
	Items        []OrderItemDetail `json:"items,omitempty"`

	// PreparationTime is in seconds; StartTime marks when the kitchen clock started.
	PreparationTime int        `json:"preparationTime,omitempty"`
	StartTime       *time.Time `json:"startTime,omitempty"`
}

func (o *Order) UnmarshalJSON(data []byte) error {
	type orderAlias Order
	aux := struct {
		*orderAlias
		OrderItems []OrderItemDetail `json:"orderItems"`
	}{orderAlias: (*orderAlias)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(o.Items) == 0 && len(aux.OrderItems) > 0 {
		o.Items = aux.OrderItems
	}
	return nil
}

type OrderItemDetail struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ItemID    int64           `json:"itemId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Notes     *string         `json:"notes,omitempty"`
	Item      *MenuItem       `json:"item,omitempty"`
}

// LineTotal prefers the server subtotal over a local price × quantity.
func (d OrderItemDetail) LineTotal() decimal.Decimal {
	if !d.Subtotal.IsZero() {
		return d.Subtotal
	}
	price := d.UnitPrice
	if price.IsZero() {
		price = d.Price
	}
	return price.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

type OrderLine struct {
	ItemID   int64  `json:"itemId" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Notes    string `json:"notes,omitempty" validate:"max=500"`
}

type CreateOrderRequest struct {
	SessionID int64       `json:"sessionId" validate:"required,gt=0"`
	Items     []OrderLine `json:"items" validate:"required,min=1,dive"`
	Notes     string      `json:"notes,omitempty" validate:"max=1000"`
}

type OrderSummary struct {
	SessionID   int64           `json:"sessionId"`
	OrderCount  int             `json:"orderCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Orders      []Order         `json:"orders,omitempty"`
}

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RestaurantID int64  `json:"restaurantId"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type NoteType string

const (
	NoteBug         NoteType = "Bug"
	NoteMissing     NoteType = "Missing"
	NoteEnhancement NoteType = "Enhancement"
)

// BackendNote is a diner-side record of a backend defect, kept in local storage.
type BackendNote struct {
	ID          string   `json:"id"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required"`
	Endpoint    string   `json:"endpoint" validate:"required"`
	Type        NoteType `json:"type" validate:"required,oneof=Bug Missing Enhancement"`
	CreatedAt   string   `json:"createdAt"`
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
