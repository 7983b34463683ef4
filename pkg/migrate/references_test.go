package migrate

import (
	"testing"

	"github.com/kontent-tools/kontent-migrate/pkg/kontent"
	"github.com/stretchr/testify/assert"
)

func TestExtractReferences(t *testing.T) {
	env := fixtureEnvironmentData()

	entries := []ElementEntry{{
		ContentTypeID: "type-article",
		Elements: []kontent.ElementValue{
			{Element: kontent.ByID("el-related"), Value: []any{
				map[string]any{"id": "item-1"},
				map[string]any{"id": "item-2"},
			}},
			{Element: kontent.ByID("el-hero"), Value: []any{map[string]any{"id": "asset-1"}}},
			{Element: kontent.ByID("el-title"), Value: "no references here"},
		},
	}}

	itemIDs, assetIDs := ExtractReferences(env, entries)
	assert.Equal(t, map[string]bool{"item-1": true, "item-2": true}, itemIDs)
	assert.Equal(t, map[string]bool{"asset-1": true}, assetIDs)
}

func TestExtractReferencesFromRichText(t *testing.T) {
	env := fixtureEnvironmentData()

	html := `<p><a data-item-id="link-1">x</a></p>` +
		`<object type="application/kenticocloud" data-type="item" data-id="embed-1"></object>` +
		`<object type="application/kenticocloud" data-type="item" data-rel="component" data-id="comp-1"></object>` +
		`<figure data-asset-id="asset-9"></figure>`

	entries := []ElementEntry{{
		ContentTypeID: "type-article",
		Elements: []kontent.ElementValue{{
			Element: kontent.ByID("el-body"),
			Value:   html,
			Components: []kontent.ComponentValue{{
				Id:   "comp-1",
				Type: kontent.ByID("type-article"),
				Elements: []kontent.ElementValue{
					{Element: kontent.ByID("el-related"), Value: []any{map[string]any{"id": "nested-item"}}},
				},
			}},
		}},
	}}

	itemIDs, assetIDs := ExtractReferences(env, entries)

	// Links and embedded items count; component objects do not (their id
	// is not a content item), but their element sets are scanned.
	assert.True(t, itemIDs["link-1"])
	assert.True(t, itemIDs["embed-1"])
	assert.False(t, itemIDs["comp-1"])
	assert.True(t, itemIDs["nested-item"])
	assert.True(t, assetIDs["asset-9"])
}

func TestExtractReferencesSkipsUnknownTypesAndMalformedValues(t *testing.T) {
	env := fixtureEnvironmentData()

	itemIDs, assetIDs := ExtractReferences(env, []ElementEntry{
		{ContentTypeID: "type-unknown", Elements: []kontent.ElementValue{
			{Element: kontent.ByID("el-related"), Value: []any{map[string]any{"id": "x"}}},
		}},
		{ContentTypeID: "type-article", Elements: []kontent.ElementValue{
			{Element: kontent.ByID("el-related"), Value: "malformed"},
		}},
	})
	assert.Empty(t, itemIDs)
	assert.Empty(t, assetIDs)
}
