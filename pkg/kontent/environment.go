package kontent

import (
	"context"
	"fmt"
	"net/http"
)

// pagination is the trailing block of every listing response. A
// non-empty continuation token is echoed back in the x-continuation
// header to fetch the next page.
type pagination struct {
	ContinuationToken string `json:"continuation_token"`
}

// collectPages drains a paginated listing endpoint.
func collectPages[Page, T any](ctx context.Context, c *Client, path string, extract func(Page) ([]T, string)) ([]T, error) {
	var out []T
	var headers map[string]string
	for {
		var page Page
		if err := c.do(ctx, http.MethodGet, path, headers, nil, &page); err != nil {
			return nil, err
		}
		items, token := extract(page)
		out = append(out, items...)
		if token == "" {
			return out, nil
		}
		headers = map[string]string{"x-continuation": token}
	}
}

// ListCollections lists all collections of the environment.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	type page struct {
		Collections []Collection `json:"collections"`
		Pagination  pagination   `json:"pagination"`
	}
	out, err := collectPages(ctx, c, "/collections", func(p page) ([]Collection, string) {
		return p.Collections, p.Pagination.ContinuationToken
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return out, nil
}

// ListLanguages lists all languages of the environment.
func (c *Client) ListLanguages(ctx context.Context) ([]Language, error) {
	type page struct {
		Languages  []Language `json:"languages"`
		Pagination pagination `json:"pagination"`
	}
	out, err := collectPages(ctx, c, "/languages", func(p page) ([]Language, string) {
		return p.Languages, p.Pagination.ContinuationToken
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	return out, nil
}

// ListWorkflows lists all workflows of the environment.
func (c *Client) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	type page struct {
		Workflows  []Workflow `json:"workflows"`
		Pagination pagination `json:"pagination"`
	}
	out, err := collectPages(ctx, c, "/workflows", func(p page) ([]Workflow, string) {
		return p.Workflows, p.Pagination.ContinuationToken
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return out, nil
}

// ListTaxonomies lists all taxonomy groups with their term trees.
func (c *Client) ListTaxonomies(ctx context.Context) ([]Taxonomy, error) {
	type page struct {
		Taxonomies []Taxonomy `json:"taxonomies"`
		Pagination pagination `json:"pagination"`
	}
	out, err := collectPages(ctx, c, "/taxonomies", func(p page) ([]Taxonomy, string) {
		return p.Taxonomies, p.Pagination.ContinuationToken
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list taxonomies: %w", err)
	}
	return out, nil
}

// ListAssetFolders fetches the asset folder tree. The endpoint is not
// paginated; the whole tree comes in one response.
func (c *Client) ListAssetFolders(ctx context.Context) ([]AssetFolder, error) {
	var resp struct {
		Folders []AssetFolder `json:"folders"`
	}
	if err := c.do(ctx, http.MethodGet, "/folders", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list asset folders: %w", err)
	}
	return resp.Folders, nil
}

// rawTypeElement is an element descriptor as the type endpoints serve
// it. Snippet elements carry a snippet reference instead of content.
type rawTypeElement struct {
	Id            string                 `json:"id"`
	Codename      string                 `json:"codename"`
	Type          string                 `json:"type"`
	TaxonomyGroup *Reference             `json:"taxonomy_group,omitempty"`
	Options       []MultipleChoiceOption `json:"options,omitempty"`
	Snippet       *Reference             `json:"snippet,omitempty"`
}

type rawContentType struct {
	Id       string           `json:"id"`
	Name     string           `json:"name"`
	Codename string           `json:"codename"`
	Elements []rawTypeElement `json:"elements"`
}

// ListContentTypesFlattened lists content types with snippet elements
// expanded in place, so each type carries the full element set a
// language variant of that type can hold.
func (c *Client) ListContentTypesFlattened(ctx context.Context) ([]FlattenedContentType, error) {
	type typePage struct {
		Types      []rawContentType `json:"types"`
		Pagination pagination       `json:"pagination"`
	}
	rawTypes, err := collectPages(ctx, c, "/types", func(p typePage) ([]rawContentType, string) {
		return p.Types, p.Pagination.ContinuationToken
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list content types: %w", err)
	}

	type snippetPage struct {
		Snippets   []rawContentType `json:"snippets"`
		Pagination pagination       `json:"pagination"`
	}
	snippets, err := collectPages(ctx, c, "/snippets", func(p snippetPage) ([]rawContentType, string) {
		return p.Snippets, p.Pagination.ContinuationToken
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list content type snippets: %w", err)
	}

	snippetElements := make(map[string][]rawTypeElement, len(snippets))
	for _, s := range snippets {
		snippetElements[s.Id] = s.Elements
	}

	flattened := make([]FlattenedContentType, 0, len(rawTypes))
	for _, raw := range rawTypes {
		ct := FlattenedContentType{Id: raw.Id, Name: raw.Name, Codename: raw.Codename}
		for _, el := range raw.Elements {
			if el.Type == "snippet" {
				if el.Snippet == nil {
					continue
				}
				for _, se := range snippetElements[el.Snippet.Id] {
					ct.Elements = append(ct.Elements, flattenElement(se))
				}
				continue
			}
			ct.Elements = append(ct.Elements, flattenElement(el))
		}
		flattened = append(flattened, ct)
	}
	return flattened, nil
}

func flattenElement(el rawTypeElement) TypeElement {
	return TypeElement{
		Id:            el.Id,
		Codename:      el.Codename,
		Type:          ElementType(el.Type),
		TaxonomyGroup: el.TaxonomyGroup,
		Options:       el.Options,
	}
}
