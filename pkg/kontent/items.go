package kontent

import (
	"context"
	"fmt"
	"net/http"
)

// ViewContentItemByCodename fetches a content item shell by codename.
func (c *Client) ViewContentItemByCodename(ctx context.Context, codename string) (ContentItem, error) {
	var item ContentItem
	if err := c.do(ctx, http.MethodGet, "/items/codename/"+codename, nil, nil, &item); err != nil {
		return ContentItem{}, fmt.Errorf("failed to view content item %q: %w", codename, err)
	}
	return item, nil
}

// ViewContentItemByID fetches a content item shell by id.
func (c *Client) ViewContentItemByID(ctx context.Context, id string) (ContentItem, error) {
	var item ContentItem
	if err := c.do(ctx, http.MethodGet, "/items/"+id, nil, nil, &item); err != nil {
		return ContentItem{}, fmt.Errorf("failed to view content item %s: %w", id, err)
	}
	return item, nil
}

// AddContentItem creates a content item shell.
func (c *Client) AddContentItem(ctx context.Context, data AddContentItemData) (ContentItem, error) {
	var item ContentItem
	if err := c.do(ctx, http.MethodPost, "/items", nil, data, &item); err != nil {
		return ContentItem{}, fmt.Errorf("failed to add content item %q: %w", data.Codename, err)
	}
	return item, nil
}

// UpsertContentItem updates the mutable fields of a content item shell.
func (c *Client) UpsertContentItem(ctx context.Context, codename string, data UpsertContentItemData) (ContentItem, error) {
	var item ContentItem
	if err := c.do(ctx, http.MethodPut, "/items/codename/"+codename, nil, data, &item); err != nil {
		return ContentItem{}, fmt.Errorf("failed to upsert content item %q: %w", codename, err)
	}
	return item, nil
}
