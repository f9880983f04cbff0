package api

import (
	"context"
	"fmt"
	"net/http"

	"table-order-kiosk/internal/envelope"
	"table-order-kiosk/internal/model"
)

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/menu/categories", nil, "categories")
	if err != nil {
		return nil, err
	}
	return envelope.DecodeList[model.Category](raw), nil
}

func (c *Client) ItemsByCategory(ctx context.Context, categoryID int64) ([]model.MenuItem, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/menu/categories/%d/items", categoryID), nil, "items")
	if err != nil {
		return nil, err
	}
	return envelope.DecodeList[model.MenuItem](raw), nil
}

func (c *Client) Items(ctx context.Context) ([]model.MenuItem, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/menu/items", nil, "items")
	if err != nil {
		return nil, err
	}
	return envelope.DecodeList[model.MenuItem](raw), nil
}

func (c *Client) Item(ctx context.Context, itemID int64) (model.MenuItem, error) {
	path := fmt.Sprintf("/api/menu/items/%d", itemID)
	raw, err := c.do(ctx, http.MethodGet, path, nil, "item")
	if err != nil {
		return model.MenuItem{}, err
	}
	item, ok := envelope.DecodeObject[model.MenuItem](raw)
	c.logShape(path, ok)
	return item, nil
}
