package kontent

import (
	"context"
	"fmt"
	"net/http"
)

// ViewAssetByID fetches an asset's metadata by id.
func (c *Client) ViewAssetByID(ctx context.Context, id string) (Asset, error) {
	var asset Asset
	if err := c.do(ctx, http.MethodGet, "/assets/"+id, nil, nil, &asset); err != nil {
		return Asset{}, fmt.Errorf("failed to view asset %s: %w", id, err)
	}
	return asset, nil
}

// ViewAssetByCodename fetches an asset's metadata by codename.
func (c *Client) ViewAssetByCodename(ctx context.Context, codename string) (Asset, error) {
	var asset Asset
	if err := c.do(ctx, http.MethodGet, "/assets/codename/"+codename, nil, nil, &asset); err != nil {
		return Asset{}, fmt.Errorf("failed to view asset %q: %w", codename, err)
	}
	return asset, nil
}

// AddAsset creates an asset from a previously uploaded binary.
func (c *Client) AddAsset(ctx context.Context, data AddAssetData) (Asset, error) {
	var asset Asset
	if err := c.do(ctx, http.MethodPost, "/assets", nil, data, &asset); err != nil {
		return Asset{}, fmt.Errorf("failed to add asset %q: %w", data.Codename, err)
	}
	return asset, nil
}

// UpsertAsset updates an existing asset's metadata, optionally swapping
// the binary via a new file reference.
func (c *Client) UpsertAsset(ctx context.Context, codename string, data UpsertAssetData) (Asset, error) {
	var asset Asset
	if err := c.do(ctx, http.MethodPut, "/assets/codename/"+codename, nil, data, &asset); err != nil {
		return Asset{}, fmt.Errorf("failed to upsert asset %q: %w", codename, err)
	}
	return asset, nil
}
