package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"table-order-kiosk/internal/envelope"
	"table-order-kiosk/internal/model"
)

type startSessionRequest struct {
	NumberOfGuests int `json:"numberOfGuests"`
}

// StartSession opens a new dining session for the table behind qrCode.
// Calling it twice opens two sessions; the backend does not deduplicate.
func (c *Client) StartSession(ctx context.Context, qrCode string, guests int) (model.Session, error) {
	path := "/api/sessions/start/" + url.PathEscape(qrCode)
	raw, err := c.do(ctx, http.MethodPost, path, startSessionRequest{NumberOfGuests: guests}, "session")
	if err != nil {
		return model.Session{}, err
	}
	session, ok := envelope.DecodeObject[model.Session](raw)
	c.logShape(path, ok)
	return session, nil
}

func (c *Client) Session(ctx context.Context, sessionID int64) (model.Session, error) {
	path := fmt.Sprintf("/api/sessions/%d", sessionID)
	raw, err := c.do(ctx, http.MethodGet, path, nil, "session")
	if err != nil {
		return model.Session{}, err
	}
	session, ok := envelope.DecodeObject[model.Session](raw)
	c.logShape(path, ok)
	return session, nil
}
