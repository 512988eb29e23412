package api

import (
	"context"
	"net/url"

	"tableside/internal/domain"
)

// MenuItems lists the public menu (active items only).
func (c *Client) MenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	if err := c.get(ctx, "/api/menu-items", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MenuItemsByCategory(ctx context.Context, category string) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	path := "/api/menu-items/category/" + url.PathEscape(category)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
