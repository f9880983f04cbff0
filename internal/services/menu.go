package services

import (
	"context"

	"table-order-kiosk/internal/i18n"
	"table-order-kiosk/internal/model"
)

// MenuItemView is a menu item with its image paths resolved to URLs and its
// name picked for the display language.
type MenuItemView struct {
	model.MenuItem
	ImageURLs []string `json:"imageUrls"`
}

func (d *Diner) itemView(item model.MenuItem) MenuItemView {
	paths := item.ImageList()
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		if u := model.ImageURL(d.imageBase, p); u != "" {
			urls = append(urls, u)
		}
	}
	lang := d.Language()
	item.DisplayName = i18n.Name(lang, item.Name, item.NameAr)
	if item.Category != nil {
		ref := *item.Category
		ref.DisplayName = i18n.Name(lang, ref.Name, ref.NameAr)
		item.Category = &ref
	}
	return MenuItemView{MenuItem: item, ImageURLs: urls}
}

func (d *Diner) itemViews(items []model.MenuItem) []MenuItemView {
	out := make([]MenuItemView, 0, len(items))
	for _, item := range items {
		out = append(out, d.itemView(item))
	}
	return out
}

func (d *Diner) Categories(ctx context.Context) ([]model.Category, error) {
	categories, err := d.api.Categories(ctx)
	if err != nil {
		return nil, err
	}
	lang := d.Language()
	for i := range categories {
		categories[i].DisplayName = i18n.Name(lang, categories[i].Name, categories[i].NameAr)
	}
	return categories, nil
}

func (d *Diner) CategoryItems(ctx context.Context, categoryID int64) ([]MenuItemView, error) {
	items, err := d.api.ItemsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return d.itemViews(items), nil
}

func (d *Diner) Items(ctx context.Context) ([]MenuItemView, error) {
	items, err := d.api.Items(ctx)
	if err != nil {
		return nil, err
	}
	return d.itemViews(items), nil
}

func (d *Diner) Item(ctx context.Context, itemID int64) (MenuItemView, error) {
	item, err := d.api.Item(ctx, itemID)
	if err != nil {
		return MenuItemView{}, err
	}
	return d.itemView(item), nil
}
